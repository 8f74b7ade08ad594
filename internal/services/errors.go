// Package services defines the business logic for travel conversations,
// itinerary plans, feedback scoring and user statistics.
// This file centralizes service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"

	"github.com/tbourn/go-travel-backend/internal/planner"
)

var (
	// ErrConversationNotFound indicates that the conversation does not exist
	// or does not belong to the current user.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrNoPlan is returned when feedback is left on a conversation that has
	// no stored itinerary yet.
	ErrNoPlan = errors.New("conversation has no travel plan")

	// ErrPlanNotFound is returned by plan lookups for conversations without a
	// stored itinerary.
	ErrPlanNotFound = errors.New("travel plan not found")

	// ErrInvalidTrip is returned for an empty destination or an out-of-range
	// day count.
	ErrInvalidTrip = planner.ErrInvalidTrip

	// ErrInvalidRating is returned for ratings outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrEmptyMessage is returned for blank chat messages.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrMessageTooLong is returned when a chat message exceeds the
	// configured rune limit.
	ErrMessageTooLong = errors.New("message too long")

	// ErrInvalidPreference is returned for unknown preference categories or
	// values.
	ErrInvalidPreference = errors.New("invalid preference")

	// ErrScoreContention is returned when the score compare-and-swap keeps
	// losing to concurrent writers.
	ErrScoreContention = errors.New("score update contention")

	// ErrIdempotencyConflict is returned when an Idempotency-Key is already
	// claimed but its outcome cannot be read back.
	ErrIdempotencyConflict = errors.New("idempotency key in use")
)
