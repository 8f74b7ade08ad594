// Feedback HTTP handler.
//
//   - POST /conversations/{id}/feedback  (rate the plan or one recommendation)
//
// Idempotency: with an Idempotency-Key header, a retried submission returns
// the original result with `Idempotency-Replayed: true` and awards no points.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-travel-backend/internal/http/middleware"
	"github.com/tbourn/go-travel-backend/internal/services"
)

// FeedbackRequest is the JSON payload for rating a plan. Without a
// recommendation id the rating applies to the whole plan.
type FeedbackRequest struct {
	Rating             int    `json:"rating" binding:"required,min=1,max=5" example:"5"`
	RecommendationID   string `json:"recommendation_id,omitempty" example:"ChIJ0wL9k4l9MEARvD3VqGZ0Cw4"`
	RecommendationName string `json:"recommendation_name,omitempty" example:"Old City"`
	RecommendationType string `json:"recommendation_type,omitempty" example:"tourist_attraction"`
	Comment            string `json:"comment,omitempty" binding:"max=1000" example:"Loved the walk"`
	DayNumber          int    `json:"day_number,omitempty" binding:"min=0" example:"1"`
	TimeSlot           string `json:"time_slot,omitempty" example:"morning"`
}

// FeedbackResponse reports the points earned and the new totals.
type FeedbackResponse struct {
	Status string `json:"status" example:"success"`
	services.FeedbackResult
	Message string `json:"message"`
}

func feedbackMessage(r *services.FeedbackResult) string {
	msg := fmt.Sprintf("Thank you for your feedback! You earned %d points.", r.PointsEarned)
	if r.BonusGranted {
		msg += " You unlocked a bonus right!"
	}
	return msg
}

// SubmitFeedback godoc
// @ID          submitFeedback
// @Summary     Rate a plan or recommendation
// @Description Awards rating×2 points, grants a bonus right on each 50 point threshold crossed and learns preferences in the background. Supports Idempotency-Key replay.
// @Tags        Feedback
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID"          example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       id               path    string  true  "Conversation ID"  format(uuid)
// @Param       body             body    handlers.FeedbackRequest true "Rating"
//
// @Success     201  {object} handlers.FeedbackResponse
// @Success     200  {object} handlers.FeedbackResponse "Idempotent replay"
// @Header      200  {string} Idempotency-Replayed "true on replay"
// @Failure     400  {object} handlers.ErrorResponse "Rating outside 1..5"
// @Failure     404  {object} handlers.ErrorResponse "Conversation not found"
// @Failure     409  {object} handlers.ErrorResponse "No plan to rate"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /conversations/{id}/feedback [post]
func (h *Handlers) SubmitFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidRating, "rating must be between 1 and 5")
		return
	}

	ctx := c.Request.Context()
	uid := userID(c)
	convID := c.Param("id")
	key, hasKey := middleware.GetIdempotencyKey(c)

	// Known keys skip scoring entirely; Record still claims the key
	// atomically for requests that race past this check.
	if hasKey && middleware.IsReplay(c) {
		if prev, found := h.fb.Replay(ctx, uid, convID, key); found {
			replayFeedback(c, prev)
			return
		}
	}

	res, err := h.fb.Record(ctx, uid, services.FeedbackInput{
		ConversationID:     convID,
		RecommendationID:   strings.TrimSpace(req.RecommendationID),
		RecommendationName: strings.TrimSpace(req.RecommendationName),
		RecommendationType: strings.TrimSpace(req.RecommendationType),
		Rating:             req.Rating,
		Comment:            strings.TrimSpace(req.Comment),
		DayNumber:          req.DayNumber,
		TimeSlot:           strings.TrimSpace(req.TimeSlot),
		IdempotencyKey:     key,
	})
	switch {
	case errors.Is(err, services.ErrInvalidRating):
		fail(c, http.StatusBadRequest, ErrCodeInvalidRating, "rating must be between 1 and 5")
		return
	case errors.Is(err, services.ErrConversationNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "conversation not found")
		return
	case errors.Is(err, services.ErrNoPlan):
		fail(c, http.StatusConflict, ErrCodeNoPlan, "create a travel plan before leaving feedback")
		return
	case errors.Is(err, services.ErrScoreContention), errors.Is(err, services.ErrIdempotencyConflict):
		fail(c, http.StatusConflict, ErrCodeConflict, "score is being updated, please retry")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeFeedbackFailed, "could not record feedback")
		return
	}

	if res.Replayed {
		replayFeedback(c, res)
		return
	}
	ok(c, http.StatusCreated, FeedbackResponse{Status: services.StatusSuccess, FeedbackResult: *res, Message: feedbackMessage(res)})
}

func replayFeedback(c *gin.Context, prev *services.FeedbackResult) {
	c.Header("Idempotency-Replayed", "true")
	ok(c, http.StatusOK, FeedbackResponse{Status: services.StatusSuccess, FeedbackResult: *prev, Message: feedbackMessage(prev)})
}
