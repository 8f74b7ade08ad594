// Plan HTTP handlers.
//
//   - POST /plans                      (generate a plan in a new conversation)
//   - GET  /conversations/{id}/plan    (stored plan)
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-travel-backend/internal/domain"
	"github.com/tbourn/go-travel-backend/internal/services"
)

const dateLayout = "2006-01-02"

// CreatePlanRequest is the JSON payload for POST /plans.
type CreatePlanRequest struct {
	Destination string `json:"destination" binding:"required" example:"Baku"`
	// Days defaults to the configured trip length when zero.
	Days int `json:"days" example:"5"`
	// StartDate is YYYY-MM-DD; empty starts one week from today.
	StartDate string `json:"start_date,omitempty" example:"2026-05-01"`
	// Preferences override stored budget, cuisine and activity_level.
	Preferences map[string]string `json:"preferences,omitempty"`
}

// PlanResponse is the successful plan generation result.
type PlanResponse struct {
	Status         string            `json:"status" example:"success"`
	ConversationID string            `json:"conversation_id"`
	TravelPlan     *domain.Itinerary `json:"travel_plan"`
}

// CreatePlan godoc
// @ID          createPlan
// @Summary     Generate a travel plan
// @Description Assembles a day-by-day itinerary with weather and scored recommendations and stores it in a new conversation.
// @Tags        Plans
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Param       body       body    handlers.CreatePlanRequest  true  "Trip"
//
// @Success     201  {object}  handlers.PlanResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid trip or preference"
// @Failure     500  {object}  handlers.ErrorResponse  "Plan generation failed"
// @Router      /plans [post]
func (h *Handlers) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failStatus(c, http.StatusBadRequest, ErrCodeBadRequest, "destination required")
		return
	}

	in := services.PlanRequest{
		Destination: req.Destination,
		Days:        req.Days,
		Preferences: req.Preferences,
	}
	if req.StartDate != "" {
		start, err := time.Parse(dateLayout, req.StartDate)
		if err != nil {
			failStatus(c, http.StatusBadRequest, ErrCodeBadRequest, "start_date must be YYYY-MM-DD")
			return
		}
		in.StartDate = start
	}

	res, err := h.plans.GeneratePlan(c.Request.Context(), userID(c), in)
	switch {
	case errors.Is(err, services.ErrInvalidTrip):
		failStatus(c, http.StatusBadRequest, ErrCodeInvalidTrip, "destination required and days out of range")
	case errors.Is(err, services.ErrInvalidPreference):
		failStatus(c, http.StatusBadRequest, ErrCodeInvalidPreference, "unsupported preference")
	case err != nil:
		failStatus(c, http.StatusInternalServerError, ErrCodePlanFailed, "Sorry, the travel plan could not be created. Please try again.")
	default:
		ok(c, http.StatusCreated, PlanResponse{Status: services.StatusSuccess, ConversationID: res.ConversationID, TravelPlan: res.Plan})
	}
}

// GetPlan godoc
// @ID          getPlan
// @Summary     Get a conversation's plan
// @Tags        Plans
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID"          example(user123)
// @Param       id         path    string  true  "Conversation ID"  format(uuid)
//
// @Success     200  {object}  handlers.PlanResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Conversation or plan not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /conversations/{id}/plan [get]
func (h *Handlers) GetPlan(c *gin.Context) {
	id := c.Param("id")
	plan, err := h.plans.GetPlan(c.Request.Context(), userID(c), id)
	switch {
	case errors.Is(err, services.ErrConversationNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "conversation not found")
	case errors.Is(err, services.ErrPlanNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no plan has been created in this conversation yet")
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load plan")
	default:
		ok(c, http.StatusOK, PlanResponse{Status: services.StatusSuccess, ConversationID: id, TravelPlan: plan})
	}
}
