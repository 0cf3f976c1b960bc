package discountcode

import (
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/discountcode/repository"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/discountcode/service"
	"go.uber.org/fx"
)

var Module = fx.Module("discountcode.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
