// User HTTP handlers.
//
//   - GET /users/me/stats        (score, bonus rights, level)
//   - GET /users/me/preferences  (explicit and learned preferences)
//   - PUT /users/me/preferences  (set budget, cuisine, activity_level)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-travel-backend/internal/planner"
	"github.com/tbourn/go-travel-backend/internal/services"
)

// PreferencesResponse lists preference values and their learned weights.
type PreferencesResponse struct {
	UserID      string            `json:"user_id"`
	Preferences map[string]string `json:"preferences"`
	Weights     map[string]int    `json:"weights"`
}

// UpdatePreferencesRequest sets explicit preferences. Unknown categories or
// values are rejected and nothing is stored.
type UpdatePreferencesRequest struct {
	Preferences map[string]string `json:"preferences" binding:"required"`
}

func preferencesResponse(uid string, p planner.Preferences) PreferencesResponse {
	return PreferencesResponse{UserID: uid, Preferences: p.Values, Weights: p.Weights}
}

// GetUserStats godoc
// @ID          getUserStats
// @Summary     Traveler stats
// @Description Sums score and bonus rights across the user's conversations and reports the traveler level.
// @Tags        Users
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Success     200  {object} services.UserStats
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/me/stats [get]
func (h *Handlers) GetUserStats(c *gin.Context) {
	st, err := h.convs.UserStats(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load stats")
		return
	}
	ok(c, http.StatusOK, st)
}

// GetPreferences godoc
// @ID          getPreferences
// @Summary     Read preferences
// @Tags        Users
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Success     200  {object} handlers.PreferencesResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/me/preferences [get]
func (h *Handlers) GetPreferences(c *gin.Context) {
	uid := userID(c)
	p, err := h.convs.Preferences(c.Request.Context(), uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load preferences")
		return
	}
	ok(c, http.StatusOK, preferencesResponse(uid, p))
}

// UpdatePreferences godoc
// @ID          updatePreferences
// @Summary     Set preferences
// @Description Accepts budget (budget, mid-range, luxury), activity_level (low, moderate, high) and any non-empty cuisine.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID"  example(user123)
// @Param       body       body    handlers.UpdatePreferencesRequest true "Preferences"
// @Success     200  {object} handlers.PreferencesResponse
// @Failure     400  {object} handlers.ErrorResponse "Unsupported preference"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /users/me/preferences [put]
func (h *Handlers) UpdatePreferences(c *gin.Context) {
	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "preferences object required")
		return
	}
	ctx := c.Request.Context()
	uid := userID(c)

	if err := h.convs.SetPreferences(ctx, uid, req.Preferences); err != nil {
		if errors.Is(err, services.ErrInvalidPreference) {
			fail(c, http.StatusBadRequest, ErrCodeInvalidPreference, "unsupported preference")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not store preferences")
		return
	}
	p, err := h.convs.Preferences(ctx, uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load preferences")
		return
	}
	ok(c, http.StatusOK, preferencesResponse(uid, p))
}
