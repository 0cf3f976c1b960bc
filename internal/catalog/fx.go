package catalog

import (
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/catalog/repository"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
