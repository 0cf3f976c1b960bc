package paymentlink

import (
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/paymentlink/repository"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/paymentlink/service"
	"go.uber.org/fx"
)

var Module = fx.Module("paymentlink.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
