package db

import (
	"context"
	"fmt"

	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/config"
	obslogger "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/observability/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormprometheus "gorm.io/plugin/prometheus"
)

var Module = fx.Module("db",
	fx.Provide(NewConfig),
	fx.Provide(Open),
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Cfg       config.Config
	Pool      Config
	Log       *zap.Logger
}

// Open connects gorm with tracing, pool metrics and the zap query logger.
func Open(p Params) (*gorm.DB, error) {
	dialector, err := Dialect(p.Cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:         obslogger.NewGormLogger(obslogger.DefaultGormLoggerConfig()),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := conn.Use(otelgorm.NewPlugin(otelgorm.WithDBName(p.Pool.Name))); err != nil {
		return nil, fmt.Errorf("register tracing plugin: %w", err)
	}
	if err := conn.Use(gormprometheus.New(gormprometheus.Config{
		DBName:          p.Pool.Name,
		RefreshInterval: 15,
	})); err != nil {
		return nil, fmt.Errorf("register metrics plugin: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if p.Pool.MaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(p.Pool.MaxIdleConn)
	}
	if p.Pool.MaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(p.Pool.MaxOpenConn)
	}
	if p.Pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(p.Pool.ConnMaxLifetime)
	}
	if p.Pool.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(p.Pool.ConnMaxIdleTime)
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return sqlDB.PingContext(ctx)
		},
		OnStop: func(ctx context.Context) error {
			p.Log.Info("closing database connection")
			return sqlDB.Close()
		},
	})

	p.Log.Info("database connected", zap.String("dialect", conn.Dialector.Name()))
	return conn, nil
}
