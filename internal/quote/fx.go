package quote

import (
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/repository"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quote.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewEngine),
	fx.Provide(service.New),
)
