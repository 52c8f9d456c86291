package whatsapp

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/herdbook/internal/config"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository/memory"
	"github.com/mamadbah2/herdbook/internal/service/commands"
	"github.com/mamadbah2/herdbook/internal/service/ledger"
	"github.com/mamadbah2/herdbook/internal/service/reporting"
	client "github.com/mamadbah2/herdbook/pkg/clients/whatsapp"
)

type recordingClient struct {
	mu   sync.Mutex
	sent []client.SendTextMessageRequest
	err  error
}

func (c *recordingClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, req)
	return &client.SendTextMessageResponse{}, c.err
}

func (c *recordingClient) last(t *testing.T) client.SendTextMessageRequest {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		t.Fatal("nothing was sent")
	}
	return c.sent[len(c.sent)-1]
}

type staticTranslator struct {
	out string
	err error
}

func (s staticTranslator) TranslateToCommand(context.Context, string) (string, error) {
	return s.out, s.err
}

func newTestService(t *testing.T, tr Translator) (*MetaWhatsAppService, *recordingClient) {
	t.Helper()
	store := memory.NewStore()
	dispatcher := commands.NewService(
		ledger.NewService(store, nil),
		reporting.NewService(store, nil),
		NewSessionManager(time.Minute),
		nil,
	)
	rc := &recordingClient{}
	return NewMetaWhatsAppService(config.WhatsAppConfig{VerifyToken: "verify-me"}, rc, tr, dispatcher, nil), rc
}

func textPayload(from, body string) models.WebhookPayload {
	return models.WebhookPayload{
		Object: "whatsapp_business_account",
		Entry: []models.WebhookEntry{{
			Changes: []models.WebhookChange{{
				Field: "messages",
				Value: models.WebhookValue{
					Messages: []models.InboundMessage{{
						From: from,
						ID:   "wamid.1",
						Type: "text",
						Text: &models.TextContent{Body: body},
					}},
				},
			}},
		}},
	}
}

func TestVerifyWebhookToken(t *testing.T) {
	svc, _ := newTestService(t, nil)

	got, err := svc.VerifyWebhookToken("subscribe", "verify-me", "1158201444")
	if err != nil || got != "1158201444" {
		t.Fatalf("expected challenge echo, got %q, %v", got, err)
	}
	if _, err := svc.VerifyWebhookToken("subscribe", "wrong", "x"); err == nil {
		t.Fatal("expected invalid token error")
	}
	if _, err := svc.VerifyWebhookToken("unsubscribe", "verify-me", "x"); err == nil {
		t.Fatal("expected unsupported mode error")
	}
}

func TestHandleWebhookRepliesToSender(t *testing.T) {
	svc, rc := newTestService(t, nil)
	ctx := context.Background()

	if err := svc.HandleWebhook(ctx, textPayload("224622350064", "/buy cow 5000000")); err != nil {
		t.Fatalf("handle webhook: %v", err)
	}
	sent := rc.last(t)
	if sent.To != "224622350064" || !strings.Contains(sent.Body, "bought for 5,000,000") {
		t.Fatalf("unexpected reply %+v", sent)
	}

	if err := svc.HandleWebhook(ctx, textPayload("224622350064", "/sell 42 100")); err != nil {
		t.Fatalf("handle webhook: %v", err)
	}
	if body := rc.last(t).Body; body != "No animal with id 42." {
		t.Fatalf("unexpected error reply %q", body)
	}
}

func TestHandleWebhookUsesTranslator(t *testing.T) {
	svc, rc := newTestService(t, staticTranslator{out: "/help"})

	if err := svc.HandleWebhook(context.Background(), textPayload("224600000001", "what can you do?")); err != nil {
		t.Fatalf("handle webhook: %v", err)
	}
	if body := rc.last(t).Body; body != commands.HelpText {
		t.Fatalf("expected help text, got %q", body)
	}
}

func TestHandleWebhookTranslatorFailureFallsBack(t *testing.T) {
	svc, rc := newTestService(t, staticTranslator{err: errors.New("timeout")})

	if err := svc.HandleWebhook(context.Background(), textPayload("224600000001", "bonjour")); err != nil {
		t.Fatalf("handle webhook: %v", err)
	}
	if body := rc.last(t).Body; !strings.HasPrefix(body, "Unknown command.") {
		t.Fatalf("expected unknown command reply, got %q", body)
	}
}

func TestHandleWebhookRejectsNonNumericSender(t *testing.T) {
	svc, rc := newTestService(t, nil)

	if err := svc.HandleWebhook(context.Background(), textPayload("not-a-number", "/help")); err == nil {
		t.Fatal("expected an error for a non-numeric sender")
	}
	if len(rc.sent) != 0 {
		t.Fatalf("nothing should be sent, got %d messages", len(rc.sent))
	}
}

func TestHandleWebhookReportsDeliveryFailure(t *testing.T) {
	svc, rc := newTestService(t, nil)
	rc.err = errors.New("whatsapp api error: code=131047")

	if err := svc.HandleWebhook(context.Background(), textPayload("224600000001", "/help")); err == nil {
		t.Fatal("expected delivery failure to surface")
	}
}

func TestSessionManagerExpiry(t *testing.T) {
	sm := NewSessionManager(time.Minute)
	now := time.Date(2024, time.June, 12, 9, 0, 0, 0, time.UTC)
	sm.now = func() time.Time { return now }

	sm.SetPending(7, models.PendingAction{Entity: "sale", ID: 3})
	if got, ok := sm.Pending(7); !ok || got.ID != 3 {
		t.Fatalf("expected pending sale 3, got %+v %v", got, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := sm.Pending(7); ok {
		t.Fatal("expected the pending action to expire")
	}

	sm.SetPending(7, models.PendingAction{Entity: "animal", ID: 1})
	sm.ClearPending(7)
	if _, ok := sm.Pending(7); ok {
		t.Fatal("expected no pending action after clear")
	}
}

func TestDeliveryFailuresAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	rc := &recordingClient{}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, rc, nil, nil, zap.New(core))

	payload := models.WebhookPayload{Entry: []models.WebhookEntry{{
		Changes: []models.WebhookChange{{Value: models.WebhookValue{
			Statuses: []models.MessageStatus{
				{ID: "wamid.ok", Status: "delivered", RecipientID: "224600000001"},
				{ID: "wamid.report", Status: "failed", RecipientID: "224600000001", Errors: []models.WebhookError{{Code: 131047, Title: "Re-engagement message"}}},
			},
		}}},
	}}}
	if err := svc.HandleWebhook(context.Background(), payload); err != nil {
		t.Fatalf("handle: %v", err)
	}

	entries := logs.FilterMessage("outbound message not delivered").All()
	if len(entries) != 1 {
		t.Fatalf("expected one delivery warning, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["code"]; got != int64(131047) {
		t.Fatalf("expected error code in log, got %v", got)
	}
	if len(rc.sent) != 0 {
		t.Fatal("status callbacks must not trigger replies")
	}
}
