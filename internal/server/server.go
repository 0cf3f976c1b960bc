package server

import (
	"context"
	"net/http"
	"time"

	auditdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/audit/domain"
	bookingdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/booking/domain"
	catalogdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/catalog/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/config"
	discountdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/discountcode/domain"
	invoicedomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/invoice/domain"
	leaddomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/lead/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/observability"
	obsmiddleware "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/observability/logger"
	obsmetrics "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/observability/metrics"
	obstracing "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/observability/tracing"
	paymentlinkdomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/paymentlink/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/providers/pdf"
	quotedomain "github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/quote/domain"
	"github.com/BeigeTechLA/beige-tech-mobile-web-api-sub001/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	addr := cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine   *gin.Engine
	log      *zap.Logger
	validate *validator.Validate

	catalogSvc     catalogdomain.Service
	quoteEngine    quotedomain.Engine
	quoteSvc       quotedomain.Service
	discountSvc    discountdomain.Service
	paymentLinkSvc paymentlinkdomain.Service
	invoiceSvc     invoicedomain.Service
	bookingSvc     bookingdomain.Service
	leadSvc        leaddomain.Service
	auditSvc       auditdomain.Service
	pdfProvider    pdf.Provider
	publicLimiter  *ratelimit.PublicLimiter
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Log            *zap.Logger
	CatalogSvc     catalogdomain.Service
	QuoteEngine    quotedomain.Engine
	QuoteSvc       quotedomain.Service
	DiscountSvc    discountdomain.Service
	PaymentLinkSvc paymentlinkdomain.Service
	InvoiceSvc     invoicedomain.Service
	BookingSvc     bookingdomain.Service
	LeadSvc        leaddomain.Service
	AuditSvc       auditdomain.Service      `optional:"true"`
	PDF            pdf.Provider             `optional:"true"`
	PublicLimiter  *ratelimit.PublicLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		log:            p.Log.Named("http.server"),
		validate:       newValidator(),
		catalogSvc:     p.CatalogSvc,
		quoteEngine:    p.QuoteEngine,
		quoteSvc:       p.QuoteSvc,
		discountSvc:    p.DiscountSvc,
		paymentLinkSvc: p.PaymentLinkSvc,
		invoiceSvc:     p.InvoiceSvc,
		bookingSvc:     p.BookingSvc,
		leadSvc:        p.LeadSvc,
		auditSvc:       p.AuditSvc,
		pdfProvider:    p.PDF,
		publicLimiter:  p.PublicLimiter,
	}
	if svc.pdfProvider == nil {
		svc.pdfProvider = pdf.New()
	}

	svc.registerAPIRoutes()
	svc.registerPublicRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(ActorContext())

	catalog := api.Group("/catalog")
	catalog.GET("/items", s.ListCatalogItems)
	catalog.POST("/items", s.CreateCatalogItem)
	catalog.POST("/categories", s.CreateCategory)
	catalog.GET("/tiers/:mode", s.ListTiers)
	catalog.PUT("/tiers/:mode", s.ReplaceTiers)

	quotes := api.Group("/quotes")
	quotes.POST("/calculate", s.CalculateQuote)
	quotes.POST("", s.CreateGuestQuote)
	quotes.GET("/:id", s.GetQuote)
	quotes.GET("/:id/pdf", s.GetQuotePDF)

	codes := api.Group("/discount-codes")
	codes.POST("", s.CreateDiscountCode)
	codes.GET("/:ref/availability", s.CheckDiscountCode)
	codes.POST("/apply", s.ApplyDiscountCode)
	codes.POST("/:ref/deactivate", s.DeactivateDiscountCode)
	codes.GET("/:ref/usage", s.ListDiscountCodeUsage)

	api.POST("/payment-links", s.CreatePaymentLink)

	bookings := api.Group("/bookings")
	bookings.POST("", s.CreateBooking)
	bookings.GET("/:id", s.GetBooking)
	bookings.POST("/:id/finalize", s.FinalizeBooking)
	bookings.POST("/:id/paid", s.MarkBookingPaid)
	bookings.POST("/:id/invoice", s.GenerateInvoice)
	bookings.POST("/:id/paid-invoice", s.RecordPaidInvoice)
	bookings.GET("/:id/invoice", s.GetInvoiceStatus)
	bookings.GET("/:id/quotes", s.ListBookingQuotes)
	bookings.GET("/:id/audit", s.ListBookingAudit)

	api.POST("/crew", s.CreateCrewMember)

	leads := api.Group("/leads")
	leads.POST("", s.CreateLead)
	leads.GET("/:id", s.GetLead)
	leads.POST("/:id/auto-assign", s.AutoAssignLead)
	leads.POST("/:id/assign", s.AssignLead)
	leads.POST("/:id/status", s.UpdateLeadStatus)
	leads.GET("/:id/activities", s.ListLeadActivities)

	api.POST("/sales-reps", s.CreateSalesRep)
}

func (s *Server) registerPublicRoutes() {
	public := s.engine.Group("/public")
	public.Use(s.PublicRateLimit())

	public.GET("/payment-links/:token", s.ValidatePaymentLink)
}
