package migration

import (
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/seed"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, node *snowflake.Node, log *zap.Logger) error {
		if err := Apply(conn); err != nil {
			return err
		}
		return seed.EnsureDefaults(conn, node, log)
	}),
)
