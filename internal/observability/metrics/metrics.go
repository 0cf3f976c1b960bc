package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	quotesCalculated   metric.Int64Counter
	catalogItemSkipped metric.Int64Counter
	discountApplied    metric.Int64Counter
	invoiceGeneration  metric.Int64Counter
	leadAssignments    metric.Int64Counter
	paymentLinkChecks  metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "bookingcore"
	}
	meter := provider.Meter(name)

	quotesCalculated, err := meter.Int64Counter("bookingcore_quotes_calculated_total")
	if err != nil {
		return nil, err
	}
	catalogItemSkipped, err := meter.Int64Counter("bookingcore_catalog_items_skipped_total")
	if err != nil {
		return nil, err
	}
	discountApplied, err := meter.Int64Counter("bookingcore_discount_code_applications_total")
	if err != nil {
		return nil, err
	}
	invoiceGeneration, err := meter.Int64Counter("bookingcore_invoice_generations_total")
	if err != nil {
		return nil, err
	}
	leadAssignments, err := meter.Int64Counter("bookingcore_lead_assignments_total")
	if err != nil {
		return nil, err
	}
	paymentLinkChecks, err := meter.Int64Counter("bookingcore_payment_link_validations_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		quotesCalculated:   quotesCalculated,
		catalogItemSkipped: catalogItemSkipped,
		discountApplied:    discountApplied,
		invoiceGeneration:  invoiceGeneration,
		leadAssignments:    leadAssignments,
		paymentLinkChecks:  paymentLinkChecks,
	}, nil
}

// RecordQuoteCalculated counts quote calculations per pricing mode.
func (m *Metrics) RecordQuoteCalculated(ctx context.Context, pricingMode string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("pricing_mode", strings.TrimSpace(pricingMode)))
	m.quotesCalculated.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCatalogItemSkipped counts missing or inactive catalog items hit while quoting.
func (m *Metrics) RecordCatalogItemSkipped(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("reason", strings.TrimSpace(reason)))
	m.catalogItemSkipped.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordDiscountApplied counts discount code applications by outcome.
func (m *Metrics) RecordDiscountApplied(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("outcome", strings.TrimSpace(outcome)))
	m.discountApplied.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordInvoiceGeneration counts invoice generation attempts by path and outcome.
func (m *Metrics) RecordInvoiceGeneration(ctx context.Context, path, outcome string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("path", strings.TrimSpace(path)),
		attribute.String("outcome", strings.TrimSpace(outcome)),
	)
	m.invoiceGeneration.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordLeadAssignment counts lead assignments by mode (auto, manual).
func (m *Metrics) RecordLeadAssignment(ctx context.Context, mode string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("mode", strings.TrimSpace(mode)))
	m.leadAssignments.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPaymentLinkValidation counts payment link reads by result reason.
func (m *Metrics) RecordPaymentLinkValidation(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "valid"
	}
	attrs := FilterAttributes(attribute.String("reason", reason))
	m.paymentLinkChecks.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"pricing_mode": {},
	"reason":       {},
	"outcome":      {},
	"path":         {},
	"mode":         {},
	"status_code":  {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
