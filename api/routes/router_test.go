package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stripe/stripe-go/v84"

	"github.com/beezio/settlement-backend/pkg/config"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

type stubSettlementService struct{}

func (stubSettlementService) HandleEvent(context.Context, *stripe.Event) error {
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	return cfg
}

func TestRouterHealthLive(t *testing.T) {
	r := NewRouter(testConfig(), nil, stubPinger{}, stubPinger{}, nil, stubSettlementService{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Beezio-Env"); got != "test" {
		t.Fatalf("expected env header, got %q", got)
	}
}

func TestRouterHealthReadyPingsDependencies(t *testing.T) {
	r := NewRouter(testConfig(), nil, stubPinger{}, stubPinger{}, nil, stubSettlementService{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestRouterHealthReadyReportsBrokenDatabase(t *testing.T) {
	r := NewRouter(testConfig(), nil, stubPinger{err: fmt.Errorf("connection refused")}, stubPinger{}, nil, stubSettlementService{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestRouterWebhookRouteMounted(t *testing.T) {
	r := NewRouter(testConfig(), nil, stubPinger{}, stubPinger{}, nil, stubSettlementService{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	// No stripe client wired in the test, so the controller reports an
	// internal error rather than a chi 404.
	if rec.Code == http.StatusNotFound {
		t.Fatalf("webhook route not mounted: %d", rec.Code)
	}
}

func TestRouterMetricsHandlerOptional(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r := NewRouter(testConfig(), nil, stubPinger{}, stubPinger{}, nil, stubSettlementService{}, nil, metrics)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected metrics handler to serve, got %d", rec.Code)
	}
}
