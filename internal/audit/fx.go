package audit

import (
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/audit/repository"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewRedisNotifier),
	fx.Provide(service.NewService),
)
