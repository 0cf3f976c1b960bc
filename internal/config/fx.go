package config

import "go.uber.org/fx"

var Module = fx.Module("config",
	fx.Provide(
		Load,
		NewPricingRulesHolder,
		func(c Config) RedisConfig { return c.Redis },
		func(c Config) PricingConfig { return c.Pricing },
		func(c Config) DiscountCodeConfig { return c.DiscountCode },
		func(c Config) PaymentLinkConfig { return c.PaymentLink },
		func(c Config) LeadConfig { return c.Lead },
		func(c Config) InvoiceConfig { return c.Invoice },
		func(c Config) RateLimitConfig { return c.RateLimit },
	),
)
