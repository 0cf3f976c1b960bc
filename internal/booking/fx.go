package booking

import (
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/booking/repository"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/booking/service"
	"go.uber.org/fx"
)

var Module = fx.Module("booking.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
