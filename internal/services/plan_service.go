// Package services – PlanService
//
// This file implements PlanService, which produces itineraries for a user.
// It merges stored preferences with per-request overrides, runs the planner,
// and persists the result on a conversation together with audit copies of
// every recommendation. Both the direct plan endpoint and the chat flow go
// through it.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-travel-backend/internal/config"
	"github.com/tbourn/go-travel-backend/internal/domain"
	"github.com/tbourn/go-travel-backend/internal/planner"
	"github.com/tbourn/go-travel-backend/internal/repo"
)

var plansGenerated = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "travel_plans_generated_total",
		Help: "Itineraries generated, by outcome.",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(plansGenerated)
}

// Planner builds an itinerary. *planner.Assembler satisfies it.
type Planner interface {
	Assemble(ctx context.Context, req planner.Request) (*domain.Itinerary, error)
}

// PlanRequest is a direct plan generation request. A zero StartDate means
// now plus the configured start offset.
type PlanRequest struct {
	Destination string
	Days        int
	StartDate   time.Time
	Preferences map[string]string
}

// PlanResult is a generated plan and the conversation holding it.
type PlanResult struct {
	ConversationID string            `json:"conversation_id"`
	Plan           *domain.Itinerary `json:"travel_plan"`
}

// PlanService generates and stores itineraries.
type PlanService struct {
	DB      *gorm.DB
	Planner Planner

	DefaultDays int
	MaxDays     int
	StartOffset time.Duration

	now func() time.Time
}

// NewPlanService builds a PlanService from config.
func NewPlanService(db *gorm.DB, p Planner, cfg config.Config) *PlanService {
	return &PlanService{
		DB:          db,
		Planner:     p,
		DefaultDays: cfg.Planner.DefaultTripDays,
		MaxDays:     cfg.Planner.MaxTripDays,
		StartOffset: cfg.Planner.StartOffset,
		now:         time.Now,
	}
}

// GeneratePlan validates req, assembles an itinerary and stores it on a new
// conversation owned by userID.
func (s *PlanService) GeneratePlan(ctx context.Context, userID string, req PlanRequest) (*PlanResult, error) {
	ctx, span := otel.Tracer("services/PlanService").Start(ctx, "GeneratePlan",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("destination", req.Destination),
			attribute.Int("days", req.Days),
		),
	)
	defer span.End()

	dest := strings.TrimSpace(req.Destination)
	if req.Days == 0 {
		req.Days = s.DefaultDays
	}
	if err := s.validTrip(dest, req.Days); err != nil {
		return nil, err
	}
	for k, v := range req.Preferences {
		if err := ValidatePreference(k, v); err != nil {
			return nil, err
		}
	}

	plan, err := s.assemble(ctx, userID, dest, req.Days, req.StartDate, req.Preferences)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var convID string
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv, err := repo.CreateConversation(ctx, tx, userID, dest, req.Days)
		if err != nil {
			return err
		}
		convID = conv.ID
		return s.store(ctx, tx, conv.ID, userID, plan)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &PlanResult{ConversationID: convID, Plan: plan}, nil
}

// Replan assembles a plan for an existing conversation and replaces its
// stored itinerary. The conversation's destination and days change only
// together with the new plan.
func (s *PlanService) Replan(ctx context.Context, userID, conversationID, destination string, days int) (*domain.Itinerary, error) {
	ctx, span := otel.Tracer("services/PlanService").Start(ctx, "Replan",
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
			attribute.String("destination", destination),
			attribute.Int("days", days),
		),
	)
	defer span.End()

	dest := strings.TrimSpace(destination)
	if err := s.validTrip(dest, days); err != nil {
		return nil, err
	}
	if _, err := repo.GetConversation(ctx, s.DB, conversationID, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	plan, err := s.assemble(ctx, userID, dest, days, time.Time{}, nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.store(ctx, tx, conversationID, userID, plan)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return plan, nil
}

// GetPlan returns the itinerary stored on a conversation.
func (s *PlanService) GetPlan(ctx context.Context, userID, conversationID string) (*domain.Itinerary, error) {
	conv, err := repo.GetConversation(ctx, s.DB, conversationID, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if !conv.HasPlan() {
		return nil, ErrPlanNotFound
	}
	return conv.Plan, nil
}

func (s *PlanService) validTrip(dest string, days int) error {
	if dest == "" || days < 1 || (s.MaxDays > 0 && days > s.MaxDays) {
		return ErrInvalidTrip
	}
	return nil
}

// assemble loads the user's preferences, applies overrides and runs the
// planner.
func (s *PlanService) assemble(ctx context.Context, userID, dest string, days int, start time.Time, overrides map[string]string) (*domain.Itinerary, error) {
	rows, err := repo.GetPreferences(ctx, s.DB, userID)
	if err != nil {
		// Planning continues on defaults.
		zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("load preferences failed")
		rows = nil
	}
	prefs := planner.PreferencesFrom(rows).With(overrides)

	if start.IsZero() {
		start = s.currentTime().Add(s.StartOffset)
	}
	plan, err := s.Planner.Assemble(ctx, planner.Request{
		Destination: dest,
		Days:        days,
		StartDate:   start,
		Preferences: prefs,
	})
	if err != nil {
		plansGenerated.WithLabelValues("error").Inc()
		return nil, err
	}
	plansGenerated.WithLabelValues("ok").Inc()
	zerolog.Ctx(ctx).Info().
		Str("destination", dest).
		Int("days", days).
		Int("recommendations", plan.Summary.TotalRecommendations).
		Msg("plan generated")
	return plan, nil
}

func (s *PlanService) store(ctx context.Context, tx *gorm.DB, convID, userID string, plan *domain.Itinerary) error {
	if err := repo.SavePlan(ctx, tx, convID, userID, plan); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrConversationNotFound
		}
		return err
	}
	_, err := repo.SaveRecommendations(ctx, tx, convID, plan)
	return err
}

func (s *PlanService) currentTime() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
