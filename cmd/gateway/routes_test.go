package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kasir-system/config"
	"kasir-system/internal/gateway/clients"
	"kasir-system/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type upChecker struct{}

func (upChecker) Services() []string      { return []string{"cafe", "farma"} }
func (upChecker) IsAvailable(string) bool { return true }
func (upChecker) Check(context.Context, string) clients.ServiceStatus {
	return clients.ServiceStatus{Status: "healthy"}
}

func TestSetupRouterProxiesByPrefix(t *testing.T) {
	hits := map[string]string{}
	cafe := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits["cafe"] = r.URL.Path
	}))
	defer cafe.Close()
	farma := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits["farma"] = r.URL.Path
	}))
	defer farma.Close()

	cfg := config.Config{
		Service:   "gateway",
		Env:       "test",
		RateLimit: config.RateLimitConfig{Gateway: "100-M"},
		Gateway:   config.GatewayConfig{CafeURL: cafe.URL, FarmaURL: farma.URL},
	}
	r, err := setupRouter(cfg, zap.NewNop(), metrics.New("gateway_test", prometheus.NewRegistry()), upChecker{})
	if err != nil {
		t.Fatalf("setup router: %v", err)
	}

	for _, path := range []string{"/api/v1/cafe/orders/3", "/api/v1/farma/obat"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
	}
	if hits["cafe"] != "/api/v1/orders/3" || hits["farma"] != "/api/v1/obat" {
		t.Fatalf("unexpected upstream paths %v", hits)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", w.Code)
	}
}

func TestRunReturnsSetupErrors(t *testing.T) {
	cfg := config.Config{
		Service:   "gateway",
		Env:       "test",
		RateLimit: config.RateLimitConfig{Gateway: "lots"},
		Gateway:   config.GatewayConfig{CafeGRPCAddr: "127.0.0.1:1", FarmaGRPCAddr: "127.0.0.1:2"},
	}
	err := run(cfg, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "set up routes") {
		t.Fatalf("expected route setup error, got %v", err)
	}
}
