package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/service/whatsapp"
)

// hubChallenge is the query Meta sends when a webhook subscription is created.
type hubChallenge struct {
	Mode      string `form:"hub.mode"`
	Token     string `form:"hub.verify_token"`
	Challenge string `form:"hub.challenge"`
}

// WebhookHandler is the chat bot's HTTP edge: the Meta callback and the manual
// send endpoint.
type WebhookHandler struct {
	messaging whatsapp.MessagingService
	logger    *zap.Logger
}

func NewWebhookHandler(messaging whatsapp.MessagingService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{messaging: messaging, logger: logger}
}

// Register mounts the callback on /webhook and the manual sender on /send-message.
func (h *WebhookHandler) Register(r gin.IRoutes) {
	r.GET("/webhook", h.Challenge)
	r.POST("/webhook", h.Notify)
	r.POST("/send-message", h.Send)
}

// Challenge echoes hub.challenge once the verify token matches.
func (h *WebhookHandler) Challenge(c *gin.Context) {
	var q hubChallenge
	if err := c.ShouldBindQuery(&q); err != nil {
		h.rejectBody(c, "challenge query", err)
		return
	}
	echo, err := h.messaging.VerifyWebhookToken(q.Mode, q.Token, q.Challenge)
	if err != nil {
		h.logger.Warn("webhook subscription refused", zap.String("mode", q.Mode), zap.Error(err))
		c.String(http.StatusForbidden, "verification failed")
		return
	}
	c.String(http.StatusOK, echo)
}

// Notify hands a callback to the messaging service. Anything that decodes is
// answered 200, even when handling fails: a redelivered command would be applied
// twice.
func (h *WebhookHandler) Notify(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.rejectBody(c, "webhook payload", err)
		return
	}
	if err := h.messaging.HandleWebhook(c.Request.Context(), payload); err != nil {
		h.logger.Error("webhook handling failed", zap.String("object", payload.Object), zap.Error(err))
	}
	c.Status(http.StatusOK)
}

// Send delivers an operator-written message through the WhatsApp client.
func (h *WebhookHandler) Send(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectBody(c, "outbound message", err)
		return
	}
	if err := h.messaging.SendOutbound(c.Request.Context(), req); err != nil {
		h.logger.Error("outbound delivery failed", zap.String("to", req.To), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
		return
	}
	c.Status(http.StatusAccepted)
}

func (h *WebhookHandler) rejectBody(c *gin.Context, what string, err error) {
	h.logger.Warn("malformed "+what, zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "malformed " + what})
}
