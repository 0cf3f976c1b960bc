package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"
)

func TestClassifyReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: ReasonDeadlineExceeded},
		{name: "lock_timeout", err: &pgconn.PgError{Code: "55P03"}, want: ReasonDBLockTimeout},
		{name: "serialization", err: &pgconn.PgError{Code: "40001"}, want: ReasonSerializationFailure},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, want: ReasonSerializationFailure},
		{name: "unique", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), want: ReasonUniqueViolation},
		{name: "other_pg", err: &pgconn.PgError{Code: "42P01"}, want: ReasonDB},
		{name: "not_found", err: gorm.ErrRecordNotFound, want: ReasonNotFound},
		{name: "domain", err: errors.New("invalid_crew_member"), want: ReasonBusinessRule},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyReason(tc.err); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestObserveOperationCountsErrors(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newTransactionMetrics(registry, Config{ServiceName: "test", Environment: "test"})

	m.ObserveOperation(OperationFinalizeBooking, time.Now(), nil)
	m.ObserveOperation(OperationFinalizeBooking, time.Now(), errors.New("invalid_crew_member"))
	m.ObserveOperation(OperationFinalizeBooking, time.Now(), errors.New("invalid_crew_member"))

	got := testutil.ToFloat64(m.errors.WithLabelValues(OperationFinalizeBooking, ReasonBusinessRule))
	if got != 2 {
		t.Fatalf("expected 2 errors, got %v", got)
	}
	if count := testutil.CollectAndCount(m.duration); count != 1 {
		t.Fatalf("expected 1 duration series, got %d", count)
	}
}

func TestRegisterTwiceReusesCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := newTransactionMetrics(registry, Config{ServiceName: "test", Environment: "test"})
	second := newTransactionMetrics(registry, Config{ServiceName: "test", Environment: "test"})

	first.ObserveLockWait(LockResourceBooking, time.Millisecond)
	second.ObserveOperation(OperationApplyDiscount, time.Now(), errors.New("usage_exhausted"))

	if got := testutil.ToFloat64(first.errors.WithLabelValues(OperationApplyDiscount, ReasonBusinessRule)); got != 1 {
		t.Fatalf("expected shared collector, got %v", got)
	}
}
