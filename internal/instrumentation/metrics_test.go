package instrumentation

import (
	"context"
	"testing"
	"time"
)

func newTestProvider(t *testing.T, ctx context.Context) *Provider {
	t.Helper()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	return provider
}

func TestMetrics_RecordAPIOperation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	metrics.RecordAPIOperation(ctx, "list_projects", StatusSuccess, 200*time.Millisecond)
	metrics.RecordAPIOperation(ctx, "create_task", StatusError, 500*time.Millisecond)
}

func TestMetrics_RecordOAuthTokenRefresh(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordOAuthTokenRefresh(ctx, RefreshResultSuccess)
	metrics.RecordOAuthTokenRefresh(ctx, RefreshResultFailure)
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := newTestProvider(t, ctx).Metrics()

	// Should not panic
	metrics.RecordToolInvocation(ctx, "ticktick_list_projects", StatusSuccess, 50*time.Millisecond)
	metrics.RecordToolInvocation(ctx, "ticktick_create_task", StatusError, 10*time.Millisecond)
}

func TestMetrics_NoOpWhenUninitialized(t *testing.T) {
	ctx := context.Background()
	metrics := &Metrics{}

	// Zero value must be safe to call
	metrics.RecordAPIOperation(ctx, "list_projects", StatusSuccess, time.Millisecond)
	metrics.RecordOAuthTokenRefresh(ctx, RefreshResultSuccess)
	metrics.RecordToolInvocation(ctx, "ticktick_get_task", StatusSuccess, time.Millisecond)
}
