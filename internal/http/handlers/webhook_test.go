package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/kbrou/chatorder-backend/internal/domain/order"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
	"github.com/kbrou/chatorder-backend/internal/services"
)

type fakeConversationService struct {
	lastInbound services.InboundMessage
	reply       string
	err         error
}

func (f *fakeConversationService) HandleInbound(ctx context.Context, in services.InboundMessage) (string, error) {
	f.lastInbound = in
	return f.reply, f.err
}

func (f *fakeConversationService) ListConversations(ctx context.Context, limit int) ([]*types.Conversation, error) {
	return nil, nil
}

func (f *fakeConversationService) GetConversation(ctx context.Context, id uuid.UUID) (*services.ConversationDetail, error) {
	return nil, nil
}

func (f *fakeConversationService) ListOrders(ctx context.Context, limit int) ([]*types.OrderSnapshot, error) {
	return nil, nil
}

func webhookRouter(t *testing.T, svc services.ConversationService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	r := gin.New()
	r.POST("/webhooks/twilio", NewWebhookHandler(log, svc).Inbound)
	return r
}

func postForm(r *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookInbound(t *testing.T) {
	svc := &fakeConversationService{reply: "ok"}
	r := webhookRouter(t, svc)

	w := postForm(r, url.Values{
		"From":              {"whatsapp:+2250787360757"},
		"To":                {"whatsapp:+14155238886"},
		"Body":              {"je suis à Cocody"},
		"MessageSid":        {"SM123"},
		"NumMedia":          {"1"},
		"MediaUrl0":         {"https://api.twilio.com/media/ME123"},
		"MediaContentType0": {"image/jpeg"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<Response>") {
		t.Fatalf("expected TwiML body, got %q", w.Body.String())
	}
	if svc.lastInbound.From != "whatsapp:+2250787360757" || svc.lastInbound.Body != "je suis à Cocody" {
		t.Fatalf("inbound not forwarded: %+v", svc.lastInbound)
	}
	if svc.lastInbound.MediaURL != "https://api.twilio.com/media/ME123" || svc.lastInbound.MediaContentType != "image/jpeg" {
		t.Fatalf("media not forwarded: %+v", svc.lastInbound)
	}
}

func TestWebhookInboundNoMedia(t *testing.T) {
	svc := &fakeConversationService{reply: "ok"}
	r := webhookRouter(t, svc)

	w := postForm(r, url.Values{
		"From":     {"whatsapp:+2250787360757"},
		"Body":     {"bonjour"},
		"NumMedia": {"0"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}
	if svc.lastInbound.MediaURL != "" {
		t.Fatalf("unexpected media: %+v", svc.lastInbound)
	}
}

func TestWebhookInboundMissingFrom(t *testing.T) {
	r := webhookRouter(t, &fakeConversationService{})
	w := postForm(r, url.Values{"Body": {"hello"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestWebhookInboundServiceError(t *testing.T) {
	r := webhookRouter(t, &fakeConversationService{err: errors.New("db down")})
	w := postForm(r, url.Values{"From": {"whatsapp:+2250787360757"}})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 so Twilio retries, got %d", w.Code)
	}
}
