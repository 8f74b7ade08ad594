// Package handlers implements the travel API endpoints.
//
// Handlers are transport-thin: they bind and validate input, call a service
// and translate the result or error into a response. Every failure uses the
// ErrorResponse envelope; chat and plan endpoints also set status "error" so
// chat clients can treat replies and failures uniformly.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-travel-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by all endpoints.
type ErrorResponse struct {
	// Set to "error" by conversational endpoints.
	Status string `json:"status,omitempty" example:"error"`
	// Echo of X-Request-ID for log correlation.
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go).
	Code string `json:"code" example:"not_found"`
	// Human-readable message, safe to show to users.
	Message string `json:"message" example:"conversation not found"`
}

// fail aborts with the error envelope. 5xx responses are logged with the
// request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	write(c, status, ErrorResponse{Code: code, Message: msg})
}

// failStatus is fail with status "error" in the body.
func failStatus(c *gin.Context, status int, code, msg string) {
	write(c, status, ErrorResponse{Status: "error", Code: code, Message: msg})
}

func write(c *gin.Context, status int, resp ErrorResponse) {
	resp.RequestID = middleware.RequestIDFrom(c)
	if resp.RequestID == "" {
		resp.RequestID = c.Writer.Header().Get("X-Request-ID")
	}
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", resp.Code).
			Str("message", resp.Message).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail, used by the router for 404/405.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
