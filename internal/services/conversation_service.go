// Package services – ConversationService
//
// This file implements ConversationService, the read side of a user's
// planning sessions: paginated conversation listing, message history,
// aggregated stats with traveler levels, and explicit preferences.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// user and conversation identifiers plus pagination parameters.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-travel-backend/internal/config"
	"github.com/tbourn/go-travel-backend/internal/domain"
	"github.com/tbourn/go-travel-backend/internal/planner"
	"github.com/tbourn/go-travel-backend/internal/repo"
	"github.com/tbourn/go-travel-backend/internal/utils"
)

// History entry speakers.
const (
	SpeakerUser = "user"
	SpeakerBot  = "bot"
)

// allowedPreferences lists the explicit preference categories and, where
// the set is closed, their accepted values. A nil slice accepts any
// non-empty value.
var allowedPreferences = map[string][]string{
	planner.PrefBudget:        {"budget", "mid-range", "luxury"},
	planner.PrefActivityLevel: {"low", "moderate", "high"},
	planner.PrefCuisine:       nil,
}

// Level is a traveler tier unlocked by cumulative score.
type Level struct {
	Number   int    `json:"level"`
	Name     string `json:"name"`
	MinScore int    `json:"min_score"`
}

// Levels are ordered by MinScore.
var Levels = []Level{
	{1, "New Traveler", 0},
	{2, "Explorer", 100},
	{3, "Adventurer", 300},
	{4, "Globetrotter", 600},
	{5, "Travel Master", 1000},
}

// LevelFor returns the level reached with score and the next one, if any.
func LevelFor(score int) (Level, *Level) {
	cur := Levels[0]
	for i, l := range Levels {
		if score < l.MinScore {
			next := Levels[i]
			return cur, &next
		}
		cur = l
	}
	return cur, nil
}

// HistoryEntry is one side of a stored exchange.
type HistoryEntry struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Intent    string    `json:"intent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// UserStats aggregates a user's progress across conversations.
type UserStats struct {
	UserID             string `json:"user_id"`
	TotalScore         int64  `json:"total_score"`
	BonusRights        int64  `json:"bonus_rights"`
	ConversationsCount int64  `json:"conversations_count"`
	FeedbackCount      int64  `json:"feedback_count"`
	Level              Level  `json:"level"`
	NextLevel          *Level `json:"next_level,omitempty"`
	PointsToNextLevel  int    `json:"points_to_next_level"`
}

// ConversationService serves conversation listings, history, stats and
// preferences.
type ConversationService struct {
	DB         *gorm.DB
	MaxHistory int
}

// NewConversationService builds a ConversationService from config.
func NewConversationService(db *gorm.DB, cfg config.Config) *ConversationService {
	return &ConversationService{DB: db, MaxHistory: cfg.Feedback.MaxHistory}
}

// ListPage returns a page of the user's conversations, newest first, and
// the total count.
func (s *ConversationService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Conversation, int64, error) {
	ctx, span := otel.Tracer("services/ConversationService").Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	total, err := repo.CountConversations(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Conversation{}, 0, nil
	}
	items, err := repo.ListConversationsPage(ctx, s.DB, userID, utils.Offset(page, pageSize), pageSize)
	return items, total, err
}

// ListStats returns the conversation count and latest update time used for
// listing ETags.
func (s *ConversationService) ListStats(ctx context.Context, userID string) (int64, *time.Time, error) {
	return repo.ConversationsStats(ctx, s.DB, userID)
}

// History returns a page of the conversation's messages expanded into
// user/bot entries in timestamp order, and the total message count. The
// page size is capped at MaxHistory messages.
func (s *ConversationService) History(ctx context.Context, userID, conversationID string, page, pageSize int) ([]HistoryEntry, int64, error) {
	ctx, span := otel.Tracer("services/ConversationService").Start(ctx, "History",
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	limit := s.MaxHistory
	if limit <= 0 {
		limit = 50
	}
	if pageSize <= 0 || pageSize > limit {
		pageSize = limit
	}

	if err := s.owned(ctx, userID, conversationID); err != nil {
		return nil, 0, err
	}
	total, err := repo.CountMessages(ctx, s.DB, conversationID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []HistoryEntry{}, 0, nil
	}
	msgs, err := repo.ListMessagesPage(ctx, s.DB, conversationID, utils.Offset(page, pageSize), pageSize)
	if err != nil {
		return nil, 0, err
	}

	out := make([]HistoryEntry, 0, 2*len(msgs))
	for _, m := range msgs {
		out = append(out,
			HistoryEntry{Type: SpeakerUser, Message: m.UserMessage, Timestamp: m.CreatedAt},
			HistoryEntry{Type: SpeakerBot, Message: m.BotResponse, Intent: m.Intent, Timestamp: m.CreatedAt},
		)
	}
	return out, total, nil
}

// HistoryStats returns the message count and latest message time of a
// conversation owned by userID, for history ETags.
func (s *ConversationService) HistoryStats(ctx context.Context, userID, conversationID string) (int64, *time.Time, error) {
	if err := s.owned(ctx, userID, conversationID); err != nil {
		return 0, nil, err
	}
	return repo.MessagesStats(ctx, s.DB, conversationID)
}

// UserStats sums score, bonus rights and conversations across the user's
// conversations and derives the traveler level.
func (s *ConversationService) UserStats(ctx context.Context, userID string) (*UserStats, error) {
	ctx, span := otel.Tracer("services/ConversationService").Start(ctx, "UserStats",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	totals, err := repo.SumUserTotals(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	fbCount, err := repo.CountFeedbackByUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}

	cur, next := LevelFor(int(totals.TotalScore))
	out := &UserStats{
		UserID:             userID,
		TotalScore:         totals.TotalScore,
		BonusRights:        totals.BonusRights,
		ConversationsCount: totals.Conversations,
		FeedbackCount:      fbCount,
		Level:              cur,
		NextLevel:          next,
	}
	if next != nil {
		out.PointsToNextLevel = next.MinScore - int(totals.TotalScore)
	}
	return out, nil
}

// Preferences returns the user's preference mapping. Explicit categories
// that were never set report their defaults.
func (s *ConversationService) Preferences(ctx context.Context, userID string) (planner.Preferences, error) {
	rows, err := repo.GetPreferences(ctx, s.DB, userID)
	if err != nil {
		return planner.Preferences{}, err
	}
	out := planner.DefaultPreferences()
	for _, r := range rows {
		out.Values[r.Category] = r.Value
		out.Weights[r.Category] = r.Weight
	}
	return out, nil
}

// SetPreferences stores explicit preference values. Either all values are
// stored or none.
func (s *ConversationService) SetPreferences(ctx context.Context, userID string, values map[string]string) error {
	if len(values) == 0 {
		return ErrInvalidPreference
	}
	clean := make(map[string]string, len(values))
	for k, v := range values {
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if err := ValidatePreference(k, v); err != nil {
			return err
		}
		clean[k] = v
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for k, v := range clean {
			if err := repo.SetPreferenceValue(ctx, tx, userID, k, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// ValidatePreference checks an explicit preference category and value.
func ValidatePreference(category, value string) error {
	allowed, ok := allowedPreferences[strings.TrimSpace(category)]
	if !ok {
		return ErrInvalidPreference
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrInvalidPreference
	}
	if allowed == nil {
		return nil
	}
	for _, a := range allowed {
		if a == value {
			return nil
		}
	}
	return ErrInvalidPreference
}

func (s *ConversationService) owned(ctx context.Context, userID, conversationID string) error {
	if _, err := repo.GetConversation(ctx, s.DB, conversationID, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrConversationNotFound
		}
		return err
	}
	return nil
}
