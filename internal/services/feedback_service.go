// Package services – FeedbackService
//
// This file implements the FeedbackService, which turns user ratings into
// points, bonus rights and learned preferences. A rating is recorded in a
// single transaction: the feedback row is inserted and the conversation score
// is advanced with a compare-and-swap so concurrent raters never lose points.
// With an idempotency key the key is claimed in the same transaction, so a
// retried request either scores once or replays the stored outcome.
// Preference learning runs after commit on a detached goroutine and never
// affects the caller's result.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
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

// Preference values written by feedback learning.
const (
	PrefLiked    = "liked"
	PrefDisliked = "disliked"
)

// Target used when feedback is about the plan as a whole.
const (
	GeneralPlanID   = "general_plan"
	GeneralPlanType = "general"
	GeneralPlanName = "Travel Plan"
)

var (
	feedbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_feedback_total",
			Help: "Recorded feedback by rating.",
		},
		[]string{"rating"},
	)
	pointsAwarded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "travel_points_awarded_total",
		Help: "Points awarded for feedback.",
	})
	bonusGranted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "travel_bonus_rights_granted_total",
		Help: "Bonus rights granted on score threshold crossings.",
	})
	casRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "travel_score_cas_retries_total",
		Help: "Score compare-and-swap attempts that lost a race.",
	})
)

func init() {
	prometheus.MustRegister(feedbackTotal, pointsAwarded, bonusGranted, casRetries)
}

// FeedbackInput describes one rating. Empty recommendation fields target the
// plan as a whole.
type FeedbackInput struct {
	ConversationID     string
	RecommendationID   string
	RecommendationName string
	RecommendationType string
	Rating             int
	Comment            string
	DayNumber          int
	TimeSlot           string

	// IdempotencyKey, when set, makes retries of this rating replay the
	// first outcome instead of scoring again.
	IdempotencyKey string
}

// FeedbackResult is the scoring outcome of a recorded rating.
type FeedbackResult struct {
	FeedbackID   string `json:"feedback_id"`
	PointsEarned int    `json:"points_earned"`
	TotalScore   int    `json:"total_score"`
	BonusGranted bool   `json:"bonus_granted"`
	BonusRights  int    `json:"bonus_rights"`

	// Replayed is set when the result was read back for a claimed key.
	Replayed bool `json:"-"`
}

// errKeyClaimed aborts a Record transaction whose idempotency key is taken.
var errKeyClaimed = errors.New("idempotency key claimed")

// FeedbackService records ratings and maintains scores and preferences.
type FeedbackService struct {
	DB *gorm.DB

	PointsPerStar     int
	BonusThreshold    int
	MaxRetries        int
	PreferenceTimeout time.Duration
	IdempotencyTTL    time.Duration

	// async runs post-commit work. Defaults to a bare goroutine.
	async func(func())
}

// NewFeedbackService builds a FeedbackService from config.
func NewFeedbackService(db *gorm.DB, cfg config.Config) *FeedbackService {
	return &FeedbackService{
		DB:                db,
		PointsPerStar:     cfg.Feedback.PointsPerStar,
		BonusThreshold:    cfg.Feedback.BonusThreshold,
		MaxRetries:        cfg.Feedback.ScoreUpdateRetries,
		PreferenceTimeout: cfg.Feedback.PreferenceTimeout,
		IdempotencyTTL:    cfg.IdempotencyTTL,
	}
}

// BonusCrossed reports whether moving a score from before to after crosses
// the next multiple of threshold above before.
func BonusCrossed(before, after, threshold int) bool {
	if threshold <= 0 {
		return false
	}
	boundary := (before/threshold + 1) * threshold
	return before < boundary && after >= boundary
}

// Record stores a rating for a conversation owned by userID and awards
// rating*PointsPerStar points.
//
// Errors:
//   - ErrInvalidRating for ratings outside 1..5
//   - ErrConversationNotFound when the conversation is missing or not owned
//   - ErrNoPlan when the conversation has no itinerary yet
//   - ErrScoreContention when the score CAS loses MaxRetries races
//   - ErrIdempotencyConflict when the key is taken but its outcome is gone
//
// A request whose IdempotencyKey is already claimed returns the stored
// result with Replayed set and awards no points.
func (s *FeedbackService) Record(ctx context.Context, userID string, in FeedbackInput) (*FeedbackResult, error) {
	ctx, span := otel.Tracer("services/FeedbackService").Start(ctx, "Record",
		trace.WithAttributes(
			attribute.String("conversation.id", in.ConversationID),
			attribute.String("user.id", userID),
			attribute.Int("rating", in.Rating),
		),
	)
	defer span.End()

	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if in.RecommendationID == "" {
		in.RecommendationID, in.RecommendationType, in.RecommendationName = GeneralPlanID, GeneralPlanType, GeneralPlanName
	}
	points := in.Rating * s.pointsPerStar()

	var res FeedbackResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		conv, err := repo.GetConversation(ctx, tx, in.ConversationID, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrConversationNotFound
			}
			return err
		}
		if !conv.HasPlan() {
			return ErrNoPlan
		}

		fb := &domain.Feedback{
			ID:                 uuid.NewString(),
			ConversationID:     conv.ID,
			UserID:             userID,
			RecommendationID:   in.RecommendationID,
			RecommendationName: in.RecommendationName,
			RecommendationType: in.RecommendationType,
			Rating:             in.Rating,
			Comment:            in.Comment,
			DayNumber:          in.DayNumber,
			TimeSlot:           in.TimeSlot,
		}
		if in.IdempotencyKey != "" {
			_, err := repo.ClaimIdempotency(ctx, tx, userID, conv.ID, in.IdempotencyKey, fb.ID, 201, s.idempotencyTTL())
			if errors.Is(err, repo.ErrDuplicate) {
				return errKeyClaimed
			}
			if err != nil {
				return err
			}
		}
		if err := repo.CreateFeedback(ctx, tx, fb); err != nil {
			return err
		}

		for attempt := 0; ; attempt++ {
			if attempt >= s.maxRetries() {
				return ErrScoreContention
			}
			before := conv.TotalScore
			after := before + points
			bonus := BonusCrossed(before, after, s.BonusThreshold)
			swapped, err := repo.CompareAndSwapScore(ctx, tx, conv.ID, before, after, boolToInt(bonus))
			if err != nil {
				return err
			}
			if swapped {
				res = FeedbackResult{
					FeedbackID:   fb.ID,
					PointsEarned: points,
					TotalScore:   after,
					BonusGranted: bonus,
					BonusRights:  conv.BonusRights + boolToInt(bonus),
				}
				break
			}
			casRetries.Inc()
			if conv, err = repo.GetConversation(ctx, tx, conv.ID, userID); err != nil {
				return err
			}
		}
		return repo.FinalizeFeedback(ctx, tx, fb.ID, res.PointsEarned, res.TotalScore, res.BonusGranted)
	})
	if errors.Is(err, errKeyClaimed) {
		prev, found := s.Replay(ctx, userID, in.ConversationID, in.IdempotencyKey)
		if !found {
			span.RecordError(ErrIdempotencyConflict)
			return nil, ErrIdempotencyConflict
		}
		span.SetAttributes(attribute.Bool("idempotency.replayed", true))
		return prev, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	feedbackTotal.WithLabelValues(ratingLabel(in.Rating)).Inc()
	pointsAwarded.Add(float64(points))
	if res.BonusGranted {
		bonusGranted.Inc()
	}
	span.SetAttributes(attribute.Int("score.after", res.TotalScore), attribute.Bool("bonus", res.BonusGranted))

	s.learn(zerolog.Ctx(ctx), userID, in)
	return &res, nil
}

// learn adjusts the preference for the rated category after the rating has
// been committed. Strong ratings (>=4 or <=2) move the weight; 3 is ignored.
// Categories the user sets explicitly are never overwritten.
func (s *FeedbackService) learn(lg *zerolog.Logger, userID string, in FeedbackInput) {
	var value string
	var delta int
	switch {
	case in.Rating >= 4:
		value, delta = PrefLiked, 1
	case in.Rating <= 2:
		value, delta = PrefDisliked, -1
	default:
		return
	}
	category := in.RecommendationType
	if category == "" {
		category = GeneralPlanType
	}
	switch category {
	case planner.PrefBudget, planner.PrefCuisine, planner.PrefActivityLevel:
		return
	}

	run := s.async
	if run == nil {
		run = func(f func()) { go f() }
	}
	timeout := s.PreferenceTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	run(func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := repo.UpsertPreference(ctx, s.DB, userID, category, value, delta); err != nil {
			lg.Warn().Err(err).
				Str("user_id", userID).
				Str("category", category).
				Msg("preference update failed")
		}
	})
}

// Replay returns the stored outcome of a feedback request previously made
// with the same idempotency key, if it is still within its TTL.
func (s *FeedbackService) Replay(ctx context.Context, userID, conversationID, key string) (*FeedbackResult, bool) {
	if key == "" {
		return nil, false
	}
	rec, err := repo.GetIdempotency(ctx, s.DB, userID, conversationID, key, time.Now().UTC())
	if err != nil || rec == nil {
		return nil, false
	}
	fb, err := repo.GetFeedback(ctx, s.DB, rec.FeedbackID)
	if err != nil {
		return nil, false
	}
	conv, err := repo.GetConversation(ctx, s.DB, conversationID, userID)
	if err != nil {
		return nil, false
	}
	return &FeedbackResult{
		FeedbackID:   fb.ID,
		PointsEarned: fb.PointsEarned,
		TotalScore:   fb.ScoreAfter,
		BonusGranted: fb.BonusGranted,
		BonusRights:  conv.BonusRights,
		Replayed:     true,
	}, true
}

func (s *FeedbackService) pointsPerStar() int {
	if s.PointsPerStar <= 0 {
		return 2
	}
	return s.PointsPerStar
}

func (s *FeedbackService) idempotencyTTL() time.Duration {
	if s.IdempotencyTTL <= 0 {
		return 24 * time.Hour
	}
	return s.IdempotencyTTL
}

func (s *FeedbackService) maxRetries() int {
	if s.MaxRetries <= 0 {
		return 5
	}
	return s.MaxRetries
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func ratingLabel(r int) string {
	return string(rune('0' + r))
}
