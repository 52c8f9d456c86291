package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/metrics"
	"github.com/mamadbah2/herdbook/internal/repository/memory"
	"github.com/mamadbah2/herdbook/internal/server/handlers"
	"github.com/mamadbah2/herdbook/internal/service/ledger"
	"github.com/mamadbah2/herdbook/internal/service/reporting"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine() (*gin.Engine, *metrics.Metrics) {
	store := memory.NewStore()
	m := metrics.New()
	api := handlers.NewAPIHandler(ledger.NewService(store, nil, ledger.WithMetrics(m)), reporting.NewService(store, nil), nil)
	return New(Dependencies{API: api, Metrics: m}), m
}

func get(engine *gin.Engine, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealthzAndRequestID(t *testing.T) {
	engine, _ := newEngine()

	rec := get(engine, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}

	rec = get(engine, "/healthz", map[string]string{RequestIDHeader: "abc-123"})
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
}

func TestMetricsUseRouteTemplates(t *testing.T) {
	engine, _ := newEngine()

	get(engine, "/api/animals/41", map[string]string{handlers.UserHeader: "7"})
	get(engine, "/api/animals/42", map[string]string{handlers.UserHeader: "7"})

	rec := get(engine, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `route="/api/animals/:id"`) {
		t.Fatalf("expected templated route label in metrics output:\n%s", body)
	}
	if strings.Contains(body, `route="/api/animals/41"`) {
		t.Fatal("raw paths must not be used as labels")
	}
}

func TestWebhookRoutesOnlyWhenConfigured(t *testing.T) {
	engine, _ := newEngine()
	rec := get(engine, "/webhook?hub.mode=subscribe", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without a webhook handler, got %d", rec.Code)
	}
}

type echoMessaging struct{}

func (echoMessaging) VerifyWebhookToken(mode, token, challenge string) (string, error) {
	if token != "secret" {
		return "", errors.New("bad token")
	}
	return challenge, nil
}

func (echoMessaging) HandleWebhook(context.Context, models.WebhookPayload) error { return nil }

func (echoMessaging) SendOutbound(context.Context, models.OutboundMessageRequest) error { return nil }

func TestWebhookRoutesMountedWithHandler(t *testing.T) {
	engine := New(Dependencies{Webhook: handlers.NewWebhookHandler(echoMessaging{}, nil), Metrics: metrics.New()})

	rec := get(engine, "/webhook?hub.mode=subscribe&hub.verify_token=secret&hub.challenge=777", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "777" {
		t.Fatalf("unexpected challenge response %d %q", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/send-message", strings.NewReader(`{"to":"224600000001","message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	out := httptest.NewRecorder()
	engine.ServeHTTP(out, req)
	if out.Code != http.StatusAccepted {
		t.Fatalf("expected 202 from /send-message, got %d", out.Code)
	}
}
