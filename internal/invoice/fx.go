package invoice

import (
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/invoice/repository"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.gateway",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewStripeProcessor),
	fx.Provide(service.New),
)
