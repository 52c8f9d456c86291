package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/config"
	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/service/commands"
	client "github.com/mamadbah2/herdbook/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// MessagingService describes the operations the HTTP layer and the scheduler use.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Translator turns free text into a slash command. An empty result means the text
// could not be mapped.
type Translator interface {
	TranslateToCommand(ctx context.Context, input string) (string, error)
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
// The sender's wa_id is the herdbook user id.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	translator Translator
	dispatcher commands.Dispatcher
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance. translator may be nil.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, translator Translator, dispatcher commands.Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		translator: translator,
		dispatcher: dispatcher,
		logger:     logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook processes inbound webhook payloads. Every message is answered; the
// first delivery or infrastructure failure is returned after all are processed.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	if len(payload.Entry) == 0 {
		return nil
	}

	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			s.logDeliveryEvents(change.Value)
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

// logDeliveryEvents surfaces failed deliveries, e.g. a weekly report sent outside
// the 24h customer service window, and webhook-level errors.
func (s *MetaWhatsAppService) logDeliveryEvents(value models.WebhookValue) {
	for _, st := range value.Statuses {
		if !st.Failed() {
			continue
		}
		fields := []zap.Field{zap.String("message_id", st.ID), zap.String("recipient", st.RecipientID)}
		if len(st.Errors) > 0 {
			fields = append(fields, zap.Int("code", st.Errors[0].Code), zap.String("reason", st.Errors[0].Title))
		}
		s.logger.Warn("outbound message not delivered", fields...)
	}
	for _, e := range value.Errors {
		s.logger.Error("webhook reported an error", zap.Int("code", e.Code), zap.String("title", e.Title), zap.String("message", e.Message))
	}
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := strings.TrimSpace(extractMessageText(msg))
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("message_id", msg.ID), zap.String("type", msg.Type))
		return nil
	}

	userID, err := strconv.ParseInt(msg.From, 10, 64)
	if err != nil || userID <= 0 {
		return fmt.Errorf("sender %q is not a numeric wa_id", msg.From)
	}

	cmd := models.ParseCommand(s.translate(ctx, text))

	s.logger.Info("parsed inbound command",
		zap.Int64("user_id", userID),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, userID, cmd)
	if err != nil {
		var clientErr bool
		reply, clientErr = commands.ErrorReply(cmd.Type, err)
		if clientErr {
			s.logger.Warn("command rejected", zap.Int64("user_id", userID), zap.String("command", string(cmd.Type)), zap.Error(err))
		} else {
			s.logger.Error("command failed", zap.Int64("user_id", userID), zap.String("command", string(cmd.Type)), zap.Error(err))
		}
	}

	return s.SendOutbound(ctx, models.OutboundMessageRequest{To: msg.From, Message: reply})
}

// translate maps free text to a command when a translator is configured. Slash
// commands and translation failures pass through unchanged.
func (s *MetaWhatsAppService) translate(ctx context.Context, text string) string {
	if s.translator == nil || strings.HasPrefix(text, "/") {
		return text
	}
	if cmd := models.ParseCommand(text); cmd.Type != models.CommandUnknown {
		return text
	}

	translated, err := s.translator.TranslateToCommand(ctx, text)
	if err != nil {
		s.logger.Warn("command translation failed", zap.Error(err))
		return text
	}
	if translated == "" {
		return text
	}
	s.logger.Debug("translated free text", zap.String("input", text), zap.String("command", translated))
	return translated
}

// SendOutbound pushes a text message, e.g. a reply or a scheduled report.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         req.To,
		Body:       req.Message,
		PreviewURL: req.PreviewURL,
	})
	return err
}

func extractMessageText(msg models.InboundMessage) string {
	if msg.Text != nil {
		return msg.Text.Body
	}

	if msg.Interactive != nil {
		if msg.Interactive.ButtonReply != nil {
			return msg.Interactive.ButtonReply.ID
		}
		if msg.Interactive.ListReply != nil {
			return msg.Interactive.ListReply.ID
		}
	}

	return ""
}
