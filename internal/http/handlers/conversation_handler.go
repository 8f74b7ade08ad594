// Conversation HTTP handlers.
//
//   - GET /conversations                 (list, paginated, ETag support)
//   - GET /conversations/{id}/messages   (history, paginated, ETag support)
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-travel-backend/internal/domain"
	"github.com/tbourn/go-travel-backend/internal/services"
)

// maxHistoryPage matches the service's default history cap.
const maxHistoryPage = 50

// ConversationSummary is a conversation without its plan document.
type ConversationSummary struct {
	ID          string    `json:"id"`
	Destination string    `json:"destination"`
	Days        int       `json:"days"`
	TotalScore  int       `json:"total_score"`
	BonusRights int       `json:"bonus_rights"`
	State       string    `json:"state"`
	HasPlan     bool      `json:"has_plan"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func summarize(c domain.Conversation) ConversationSummary {
	return ConversationSummary{
		ID:          c.ID,
		Destination: c.Destination,
		Days:        c.Days,
		TotalScore:  c.TotalScore,
		BonusRights: c.BonusRights,
		State:       c.State,
		HasPlan:     c.HasPlan(),
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ListConversationsResponse wraps a page of conversations.
type ListConversationsResponse struct {
	Conversations []ConversationSummary `json:"conversations"`
	Pagination    Pagination            `json:"pagination"`
}

// HistoryResponse wraps a page of a conversation's history.
type HistoryResponse struct {
	ConversationID string                  `json:"conversation_id"`
	History        []services.HistoryEntry `json:"history"`
	Pagination     Pagination              `json:"pagination"`
}

// ListConversations godoc
// @ID          listConversations
// @Summary     List conversations (paginated)
// @Description Returns a page of the user's conversations, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Conversations
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID"                     example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListConversationsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /conversations [get]
func (h *Handlers) ListConversations(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	page, pageSize := clampPagination(c, 20, 100)

	if count, latest, err := h.convs.ListStats(ctx, uid); err == nil {
		if notModified(c, "conversations:"+uid, count, latest, page, pageSize) {
			return
		}
	}

	items, total, err := h.convs.ListPage(ctx, uid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list conversations")
		return
	}
	out := make([]ConversationSummary, 0, len(items))
	for _, it := range items {
		out = append(out, summarize(it))
	}
	ok(c, http.StatusOK, ListConversationsResponse{
		Conversations: out,
		Pagination:    newPagination(page, pageSize, total),
	})
}

// ListMessages godoc
// @ID          listMessages
// @Summary     Conversation history (paginated)
// @Description Returns user and bot entries in timestamp order. page_size counts exchanges and is capped at the configured history limit.
// @Tags        Conversations
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID"          example(user123)
// @Param       id             path    string  true  "Conversation ID"  format(uuid)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"      minimum(1) default(1)
// @Param       page_size      query   int     false "Exchanges per page"  minimum(1) maximum(50) default(50)
//
// @Success     200  {object} handlers.HistoryResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     404  {object} handlers.ErrorResponse "Conversation not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /conversations/{id}/messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	id := c.Param("id")
	page, pageSize := clampPagination(c, maxHistoryPage, maxHistoryPage)

	count, latest, err := h.convs.HistoryStats(ctx, uid, id)
	switch {
	case errors.Is(err, services.ErrConversationNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "conversation not found")
		return
	case err == nil:
		if notModified(c, "messages:"+id, count, latest, page, pageSize) {
			return
		}
	}

	entries, total, err := h.convs.History(ctx, uid, id, page, pageSize)
	switch {
	case errors.Is(err, services.ErrConversationNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "conversation not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not load history")
		return
	}
	ok(c, http.StatusOK, HistoryResponse{
		ConversationID: id,
		History:        entries,
		Pagination:     newPagination(page, pageSize, total),
	})
}
