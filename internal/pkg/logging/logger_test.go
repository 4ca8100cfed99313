package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestScopeCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	ctx := WithRequest(context.Background(), zap.New(core), "rid-1")
	ctx = WithTrace(ctx, "", "span-1")
	ctx = WithUser(ctx, 7, "kasir")
	FromContext(ctx).Info("sold")

	if logs.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", logs.Len())
	}
	fields := logs.All()[0].ContextMap()
	want := map[string]interface{}{
		"request_id": "rid-1",
		"trace_id":   "unknown",
		"span_id":    "span-1",
		"user_id":    int64(7),
		"role":       "kasir",
	}
	for k, v := range want {
		if fields[k] != v {
			t.Fatalf("expected %s=%v, got %v", k, v, fields[k])
		}
	}

	if RequestID(ctx) != "rid-1" {
		t.Fatalf("expected request id rid-1, got %q", RequestID(ctx))
	}
	if id, role, ok := User(ctx); !ok || id != 7 || role != "kasir" {
		t.Fatalf("unexpected user %d %q %v", id, role, ok)
	}
}

func TestFromContextOutsideRequest(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != zap.L() {
		t.Fatalf("expected global logger fallback")
	}
	if _, ok := Scoped(ctx); ok {
		t.Fatalf("expected no scoped logger")
	}
	if WithTrace(ctx, "t", "s") != ctx {
		t.Fatalf("expected context without scope to be returned untouched")
	}
	if RequestID(ctx) != "" {
		t.Fatalf("expected empty request id")
	}
	if _, _, ok := User(ctx); ok {
		t.Fatalf("expected no user")
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	if _, err := NewLogger("cafe", "test"); err == nil {
		t.Fatalf("expected error for invalid LOG_LEVEL")
	}
	t.Setenv("LOG_LEVEL", "warn")
	logger, err := NewLogger("cafe", "test")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if logger.Core().Enabled(zap.InfoLevel) {
		t.Fatalf("expected info to be disabled at warn")
	}
}
