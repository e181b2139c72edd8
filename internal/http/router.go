package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/kbrou/chatorder-backend/internal/http/handlers"
	httpMW "github.com/kbrou/chatorder-backend/internal/http/middleware"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	// TwilioAuthToken signs inbound webhooks; empty disables the route guard
	// configuration check, not the route.
	TwilioAuthToken string

	WebhookHandler      *httpH.WebhookHandler
	ConversationHandler *httpH.ConversationHandler
	HealthHandler       *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	if cfg.WebhookHandler != nil {
		webhooks := r.Group("/webhooks")
		webhooks.Use(httpMW.VerifyTwilioSignature(cfg.Log, cfg.TwilioAuthToken))
		webhooks.POST("/twilio", cfg.WebhookHandler.Inbound)
	}

	api := r.Group("/api")
	{
		if cfg.ConversationHandler != nil {
			api.GET("/conversations", cfg.ConversationHandler.ListConversations)
			api.GET("/conversations/:id", cfg.ConversationHandler.GetConversation)
			api.GET("/orders", cfg.ConversationHandler.ListOrders)
		}
	}

	return r
}
