package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbrou/chatorder-backend/internal/http/response"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
	"github.com/kbrou/chatorder-backend/internal/services"
)

const emptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

type WebhookHandler struct {
	log           *logger.Logger
	conversations services.ConversationService
}

func NewWebhookHandler(log *logger.Logger, conversations services.ConversationService) *WebhookHandler {
	return &WebhookHandler{log: log, conversations: conversations}
}

// Inbound handles one Twilio message webhook. The reply goes out through the
// REST API inside the turn pipeline, so the TwiML body stays empty.
func (h *WebhookHandler) Inbound(c *gin.Context) {
	from := c.PostForm("From")
	if from == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_from", fmt.Errorf("From is required"))
		return
	}

	in := services.InboundMessage{
		From:       from,
		To:         c.PostForm("To"),
		Body:       c.PostForm("Body"),
		MessageSID: c.PostForm("MessageSid"),
	}
	if c.PostForm("NumMedia") != "" && c.PostForm("NumMedia") != "0" {
		in.MediaURL = c.PostForm("MediaUrl0")
		in.MediaContentType = c.PostForm("MediaContentType0")
	}

	if _, err := h.conversations.HandleInbound(c.Request.Context(), in); err != nil {
		// Twilio retries on 5xx; the turn pipeline is idempotent enough for
		// that (snapshot creation is once-only, state writes are whole-row).
		h.log.Error("Inbound turn failed", "from", from, "error", err.Error())
		c.Data(http.StatusInternalServerError, "text/xml", []byte(emptyTwiML))
		return
	}

	c.Data(http.StatusOK, "text/xml", []byte(emptyTwiML))
}
