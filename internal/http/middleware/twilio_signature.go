package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbrou/chatorder-backend/internal/clients/twilio"
	"github.com/kbrou/chatorder-backend/internal/http/response"
	"github.com/kbrou/chatorder-backend/internal/platform/envutil"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
)

// VerifyTwilioSignature rejects webhook posts whose X-Twilio-Signature does
// not match the account auth token. WEBHOOK_PUBLIC_URL must be the exact URL
// Twilio calls (the proxy-rewritten internal URL would not verify).
// Verification is skipped when TWILIO_VALIDATE_SIGNATURE=false (local dev).
func VerifyTwilioSignature(log *logger.Logger, authToken string) gin.HandlerFunc {
	publicURL := envutil.Str("WEBHOOK_PUBLIC_URL", "")
	enabled := envutil.Bool("TWILIO_VALIDATE_SIGNATURE", true)

	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}
		if authToken == "" || publicURL == "" {
			log.Warn("Webhook signature verification misconfigured; rejecting",
				"has_token", authToken != "",
				"has_public_url", publicURL != "",
			)
			response.RespondError(c, http.StatusForbidden, "signature_unverifiable", fmt.Errorf("webhook verification not configured"))
			c.Abort()
			return
		}

		if err := c.Request.ParseForm(); err != nil {
			response.RespondError(c, http.StatusBadRequest, "bad_form", err)
			c.Abort()
			return
		}
		signature := c.GetHeader("X-Twilio-Signature")
		if !twilio.ValidateSignature(authToken, publicURL, c.Request.PostForm, signature) {
			log.Warn("Rejected webhook with invalid signature", "remote", c.ClientIP())
			response.RespondError(c, http.StatusForbidden, "invalid_signature", fmt.Errorf("signature mismatch"))
			c.Abort()
			return
		}
		c.Next()
	}
}
