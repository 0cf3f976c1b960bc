package main

import (
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/audit"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/booking"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/catalog"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/clock"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/config"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/discountcode"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/invoice"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/lead"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/logger"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/migration"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/observability"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/paymentlink"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/providers/pdf"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/ratelimit"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/scheduler"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/server"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		ratelimit.Module,
		audit.Module,

		// Domains
		catalog.Module,
		quote.Module,
		lead.Module,
		discountcode.Module,
		booking.Module,
		paymentlink.Module,
		invoice.Module,
		pdf.Module,

		migration.Module,
		scheduler.Module,
		server.Module,

		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
