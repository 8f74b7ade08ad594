// Package handlers defines the HTTP error codes returned in the error
// envelope. Clients branch on these codes; the message is for humans.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "no_plan",
//	  "message": "create a travel plan before leaving feedback"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeInvalidMessage    = "invalid_message"
	ErrCodeInvalidTrip       = "invalid_trip"
	ErrCodeInvalidRating     = "invalid_rating"
	ErrCodeInvalidPreference = "invalid_preference"
	ErrCodeNoPlan            = "no_plan"
	ErrCodeChatFailed        = "chat_failed"
	ErrCodePlanFailed        = "plan_failed"
	ErrCodeFeedbackFailed    = "feedback_failed"
	ErrCodeListFailed        = "list_failed"
	ErrCodeWeatherFailed     = "weather_failed"
)
