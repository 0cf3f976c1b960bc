package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ModeRule maps event-type keywords onto a pricing mode.
type ModeRule struct {
	Mode     string   `mapstructure:"mode"`
	Keywords []string `mapstructure:"keywords"`
}

// PricingRules drives event-type classification. Rules are evaluated in order
// and the first keyword hit wins; anything unmatched is DefaultMode.
type PricingRules struct {
	DefaultMode string     `mapstructure:"defaultMode"`
	Modes       []ModeRule `mapstructure:"modes"`
}

func DefaultPricingRules() PricingRules {
	return PricingRules{
		DefaultMode: "general",
		Modes: []ModeRule{
			{
				Mode: "special",
				Keywords: []string{
					"wedding", "event", "concert", "conference", "festival",
					"gala", "party", "ceremony", "reception", "quinceanera",
				},
			},
		},
	}
}

type PricingRulesHolder struct {
	current atomic.Value // holds PricingRules
}

// NewStaticPricingRulesHolder wraps fixed rules without a file watcher.
func NewStaticPricingRulesHolder(rules PricingRules) *PricingRulesHolder {
	holder := &PricingRulesHolder{}
	holder.current.Store(normalizePricingRules(rules))
	return holder
}

func NewPricingRulesHolder(log *zap.Logger) (*PricingRulesHolder, error) {
	return loadPricingRules(log, "/etc/bookingcore", ".")
}

func loadPricingRules(log *zap.Logger, paths ...string) (*PricingRulesHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.pricing")

	v := viper.New()
	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix("BOOKINGCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	rules := DefaultPricingRules()
	found := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		found = false
	}
	if found {
		if err := v.UnmarshalKey("pricing", &rules); err != nil {
			return nil, err
		}
	}
	if err := validatePricingRules(rules); err != nil {
		return nil, err
	}

	holder := &PricingRulesHolder{}
	holder.current.Store(normalizePricingRules(rules))

	if !found {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PricingRules
		if err := v.UnmarshalKey("pricing", &updated); err != nil {
			log.Warn("pricing rules reload failed", zap.Error(err))
			return
		}
		if err := validatePricingRules(updated); err != nil {
			log.Warn("invalid pricing rules ignored", zap.Error(err))
			return
		}
		holder.current.Store(normalizePricingRules(updated))
		log.Info("pricing rules reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *PricingRulesHolder) Get() PricingRules {
	return h.current.Load().(PricingRules)
}

func validatePricingRules(rules PricingRules) error {
	if strings.TrimSpace(rules.DefaultMode) == "" {
		return errors.New("pricing.defaultMode cannot be empty")
	}
	for _, rule := range rules.Modes {
		if strings.TrimSpace(rule.Mode) == "" {
			return errors.New("pricing.modes[].mode cannot be empty")
		}
		if len(rule.Keywords) == 0 {
			return errors.New("pricing.modes[].keywords cannot be empty")
		}
	}
	return nil
}

func normalizePricingRules(rules PricingRules) PricingRules {
	out := PricingRules{
		DefaultMode: strings.ToLower(strings.TrimSpace(rules.DefaultMode)),
		Modes:       make([]ModeRule, 0, len(rules.Modes)),
	}
	for _, rule := range rules.Modes {
		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		out.Modes = append(out.Modes, ModeRule{
			Mode:     strings.ToLower(strings.TrimSpace(rule.Mode)),
			Keywords: keywords,
		})
	}
	return out
}
