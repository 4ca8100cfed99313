package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"kasir-system/config"
	"kasir-system/internal/healthcheck"
	"kasir-system/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) PingContext(context.Context) error { return f.err }

func TestEngineHealthz(t *testing.T) {
	pinger := &fakePinger{}
	cfg := config.Config{Service: "farma", Env: "test"}
	r := NewEngine(cfg, zap.NewNop(), metrics.New("farma_test", prometheus.NewRegistry()), pinger)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	pinger.err = errors.New("db down")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "farma_test_http_requests_total") {
		t.Fatalf("expected http metrics to be exposed, got %d", w.Code)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := NewHTTPServer(config.HTTPConfig{Port: "0"}, http.NotFoundHandler())
	cancel()

	if err := Run(ctx, zap.NewNop(), srv, nil, ""); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
}

type countingPinger struct {
	calls atomic.Int32
}

func (p *countingPinger) PingContext(context.Context) error {
	p.calls.Add(1)
	return nil
}

func TestRunStopsHealthLoopOnServerError(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer taken.Close()

	pinger := &countingPinger{}
	health := healthcheck.NewServer("farma", pinger, zap.NewNop()).WithInterval(5 * time.Millisecond)
	srv := &http.Server{Addr: taken.Addr().String(), Handler: http.NotFoundHandler()}

	if err := Run(context.Background(), zap.NewNop(), srv, health, "127.0.0.1:0"); err == nil {
		t.Fatalf("expected listen error on a taken address")
	}

	after := pinger.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if got := pinger.calls.Load(); got != after {
		t.Fatalf("health loop kept running after Run returned: %d -> %d pings", after, got)
	}
}
