package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbrou/chatorder-backend/internal/http/response"
	"github.com/kbrou/chatorder-backend/internal/platform/apperr"
	"github.com/kbrou/chatorder-backend/internal/services"
)

// ConversationHandler exposes the admin read API: recent conversations,
// one conversation's transcript and state, and completed orders.
type ConversationHandler struct {
	conversations services.ConversationService
}

func NewConversationHandler(conversations services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

func (h *ConversationHandler) ListConversations(c *gin.Context) {
	rows, err := h.conversations.ListConversations(c.Request.Context(), queryLimit(c))
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"conversations": rows})
}

func (h *ConversationHandler) GetConversation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_id", fmt.Errorf("invalid conversation id"))
		return
	}
	detail, err := h.conversations.GetConversation(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			response.RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("conversation not found"))
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "get_failed", err)
		return
	}
	response.RespondOK(c, detail)
}

func (h *ConversationHandler) ListOrders(c *gin.Context) {
	rows, err := h.conversations.ListOrders(c.Request.Context(), queryLimit(c))
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"orders": rows})
}

func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		return 50
	}
	return n
}
