package lead

import (
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/lead/repository"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/lead/service"
	"go.uber.org/fx"
)

var Module = fx.Module("lead.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
