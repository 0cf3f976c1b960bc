package scheduler

import (
	"time"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/config"
)

// Config controls scheduler intervals and batch sizes.
type Config struct {
	Enabled         bool
	RunInterval     time.Duration
	BatchSize       int
	JobTimeout      time.Duration
	InvoiceStaleFor time.Duration
}

func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		RunInterval:     time.Minute,
		BatchSize:       100,
		JobTimeout:      30 * time.Second,
		InvoiceStaleFor: 10 * time.Minute,
	}
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		Enabled:         cfg.Scheduler.Enabled,
		RunInterval:     cfg.Scheduler.RunInterval,
		BatchSize:       cfg.Scheduler.BatchSize,
		InvoiceStaleFor: cfg.Invoice.StaleAfter,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.InvoiceStaleFor <= 0 {
		c.InvoiceStaleFor = defaults.InvoiceStaleFor
	}
	return c
}
