package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

const (
	ReasonDeadlineExceeded     = "deadline_exceeded"
	ReasonDBLockTimeout        = "db_lock_timeout"
	ReasonSerializationFailure = "serialization_failure"
	ReasonUniqueViolation      = "unique_violation"
	ReasonNotFound             = "not_found"
	ReasonBusinessRule         = "business_rule"
	ReasonDB                   = "db"
)

const (
	OperationFinalizeBooking  = "booking.finalize"
	OperationApplyDiscount    = "discount.apply"
	OperationGenerateInvoice  = "invoice.generate"
	OperationRecordPaid       = "invoice.record_paid"
	OperationAutoAssignLead   = "lead.auto_assign"
	OperationManualAssignLead = "lead.manual_assign"
)

const (
	LockResourceBooking      = "booking"
	LockResourceDiscountCode = "discount_code"
	LockResourceQuote        = "quote"
	LockResourceLead         = "lead"
)

// TransactionMetrics tracks latency and failures of the atomic booking operations.
type TransactionMetrics struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
	lockWait *prometheus.HistogramVec
}

var (
	transactionMetricsOnce sync.Once
	transactionMetrics     *TransactionMetrics
)

// Transactions returns the singleton transaction metrics registry.
func Transactions() *TransactionMetrics {
	return TransactionsWithConfig(Config{})
}

// TransactionsWithConfig returns the singleton registry using config labels.
func TransactionsWithConfig(cfg Config) *TransactionMetrics {
	transactionMetricsOnce.Do(func() {
		transactionMetrics = newTransactionMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return transactionMetrics
}

// ResetTransactionMetricsForTest resets the singleton for tests.
func ResetTransactionMetricsForTest() {
	transactionMetricsOnce = sync.Once{}
	transactionMetrics = nil
}

func newTransactionMetrics(registerer prometheus.Registerer, cfg Config) *TransactionMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "bookingcore"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "bookingcore_operation_duration_seconds",
		Help:        "Latency of atomic booking, discount, invoice and lead operations.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		ConstLabels: constLabels,
	}, []string{"operation"})
	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "bookingcore_operation_errors_total",
		Help:        "Failed atomic operations by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"operation", "reason"})
	lockWait := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "bookingcore_db_lock_wait_seconds",
		Help:        "Time spent acquiring SELECT FOR UPDATE row locks.",
		Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		ConstLabels: constLabels,
	}, []string{"resource"})

	duration = registerHistogramVec(registerer, duration)
	errs = registerCounterVec(registerer, errs)
	lockWait = registerHistogramVec(registerer, lockWait)

	return &TransactionMetrics{
		duration: duration,
		errors:   errs,
		lockWait: lockWait,
	}
}

// ObserveOperation records latency and, when err is set, its failure reason.
func (m *TransactionMetrics) ObserveOperation(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		m.errors.WithLabelValues(operation, ClassifyReason(err)).Inc()
	}
}

// ObserveLockWait records row-lock acquisition time.
func (m *TransactionMetrics) ObserveLockWait(resource string, d time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.WithLabelValues(resource).Observe(d.Seconds())
}

// ClassifyReason maps an error onto a bounded reason label.
func ClassifyReason(err error) string {
	if err == nil {
		return ReasonBusinessRule
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ReasonDeadlineExceeded
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ReasonNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03":
			return ReasonDBLockTimeout
		case "40001", "40P01":
			return ReasonSerializationFailure
		case "23505":
			return ReasonUniqueViolation
		default:
			return ReasonDB
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ReasonUniqueViolation
	}
	return ReasonBusinessRule
}

func registerCounterVec(registerer prometheus.Registerer, vec *prometheus.CounterVec) *prometheus.CounterVec {
	if err := registerer.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return vec
}

func registerHistogramVec(registerer prometheus.Registerer, vec *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := registerer.Register(vec); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing
			}
		}
	}
	return vec
}
