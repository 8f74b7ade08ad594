// Chat HTTP handler.
//
//   - POST /chat  (free-text message, optional conversation_id)
//
// The reply mirrors services.Reply. Failures keep the chat shape
// {status: "error", message} and add the usual request_id and code.
package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-travel-backend/internal/services"
)

// ChatRequest is the JSON payload for POST /chat.
type ChatRequest struct {
	// Message is the user's free text.
	Message string `json:"message" binding:"required" example:"5 days in Baku"`
	// ConversationID continues an existing conversation; empty starts one.
	ConversationID string `json:"conversation_id,omitempty" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
}

var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizeMessage normalizes line endings, collapses blank-line runs to one
// paragraph break and trims the result.
func sanitizeMessage(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Chat godoc
// @ID          chat
// @Summary     Send a chat message
// @Description Classifies the message, plans trips, records ratings or answers questions, and appends the exchange to the conversation.
// @Tags        Chat
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Param       body       body    handlers.ChatRequest  true  "Chat message"
//
// @Success     200  {object}  services.Reply
// @Failure     400  {object}  handlers.ErrorResponse  "Empty or oversized message"
// @Failure     404  {object}  handlers.ErrorResponse  "Conversation not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chat [post]
func (h *Handlers) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failStatus(c, http.StatusBadRequest, ErrCodeInvalidMessage, "message required")
		return
	}

	reply, err := h.chat.ProcessMessage(c.Request.Context(), userID(c), sanitizeMessage(req.Message), strings.TrimSpace(req.ConversationID))
	switch {
	case errors.Is(err, services.ErrEmptyMessage):
		failStatus(c, http.StatusBadRequest, ErrCodeInvalidMessage, "message required")
	case errors.Is(err, services.ErrMessageTooLong):
		failStatus(c, http.StatusBadRequest, ErrCodeInvalidMessage, "message too long")
	case errors.Is(err, services.ErrConversationNotFound):
		failStatus(c, http.StatusNotFound, ErrCodeNotFound, "conversation not found")
	case err != nil:
		failStatus(c, http.StatusInternalServerError, ErrCodeChatFailed, "Sorry, something went wrong while processing your message. Please try again.")
	default:
		ok(c, http.StatusOK, reply)
	}
}
