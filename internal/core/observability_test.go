package core

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"orgdirectory/pkg/domain"
)

func TestClassifyOutcome(t *testing.T) {
	cases := []struct {
		err  error
		want Outcome
	}{
		{nil, OutcomeSuccess},
		{domain.ErrNotFound{Entity: domain.EntityOrganisation, ID: 1}, OutcomeNotFound},
		{fmt.Errorf("wrapped: %w", domain.ErrNotFound{Entity: domain.EntityActivity, ID: 2}), OutcomeNotFound},
		{domain.ValidationError{Message: "bad"}, OutcomeInvalid},
		{context.Canceled, OutcomeCancelled},
		{fmt.Errorf("select: %w", context.DeadlineExceeded), OutcomeCancelled},
		{errors.New("boom"), OutcomeError},
	}
	for _, tc := range cases {
		if got := ClassifyOutcome(tc.err); got != tc.want {
			t.Fatalf("ClassifyOutcome(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestNoopLoggerAndMetrics(_ *testing.T) {
	logger := noopLogger{}
	logger.Debug("debug", "key", "value")
	logger.Info("info", "key", "value")
	logger.Warn("warn", "key", "value")
	logger.Error("error", "key", "value")
	noopMetrics{}.Observe(context.Background(), "op", OutcomeSuccess, time.Second)
}

func TestExpvarMetricsRecorder(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	rec.Observe(context.Background(), "search_organisations", OutcomeSuccess, 2*time.Millisecond)
	rec.Observe(context.Background(), "search_organisations", OutcomeInvalid, 3*time.Millisecond)
	rec.Observe(context.Background(), "", OutcomeSuccess, time.Second)

	snap := rec.Snapshot()
	if snap.DurationsMS["search_organisations"] != 5 {
		t.Fatalf("unexpected durations %v", snap.DurationsMS)
	}
	if snap.Results["search_organisations"][OutcomeSuccess] != 1 || snap.Results["search_organisations"][OutcomeInvalid] != 1 {
		t.Fatalf("unexpected results %v", snap.Results)
	}
	if len(snap.Results) != 1 {
		t.Fatalf("empty operation names must be ignored: %v", snap.Results)
	}
	if expvar.Get(rec.Name()) == nil {
		t.Fatalf("recorder not published under %s", rec.Name())
	}
	snap.Results["search_organisations"][OutcomeSuccess] = 99
	if rec.Snapshot().Results["search_organisations"][OutcomeSuccess] != 1 {
		t.Fatalf("snapshot must be a copy")
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	rec.Observe(context.Background(), "organisation_detail", OutcomeNotFound, 10*time.Millisecond)
	rec.Observe(context.Background(), "organisation_detail", OutcomeNotFound, 10*time.Millisecond)
	rec.Observe(context.Background(), "", OutcomeSuccess, time.Second)

	if got := promtest.ToFloat64(rec.total.WithLabelValues("organisation_detail", "not_found")); got != 2 {
		t.Fatalf("expected 2 not_found observations, got %v", got)
	}
	if got := promtest.CollectAndCount(rec.duration); got != 1 {
		t.Fatalf("expected one histogram series, got %d", got)
	}

	again, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}
	again.Observe(context.Background(), "organisation_detail", OutcomeNotFound, time.Millisecond)
	if got := promtest.ToFloat64(rec.total.WithLabelValues("organisation_detail", "not_found")); got != 3 {
		t.Fatalf("expected collectors to be shared, got %v", got)
	}
}
