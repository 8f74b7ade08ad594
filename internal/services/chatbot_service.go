// Package services – ChatbotService
//
// This file implements ChatbotService, the entry point for free-text chat.
// A message is classified, attached to a conversation (created on first
// contact), dispatched to the planner, the feedback tracker or the
// knowledge index depending on its intent, and the exchange is appended to
// the conversation history.
//
// Expected failures such as a plan that cannot be assembled or feedback
// without a plan become conversational replies; only storage errors are
// returned to the caller.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-travel-backend/internal/config"
	"github.com/tbourn/go-travel-backend/internal/domain"
	"github.com/tbourn/go-travel-backend/internal/intent"
	"github.com/tbourn/go-travel-backend/internal/repo"
	"github.com/tbourn/go-travel-backend/internal/search"
)

// Reply statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

const (
	forecastPreviewDays = 3
	tipsPerAnswer       = 3
)

var (
	weatherWords    = []string{"hava", "weather", "sıcaklık", "temperature", "rain", "yağmur"}
	restaurantWords = []string{"restoran", "restaurant", "yemek", "food", "dinner"}
)

// Reply is the chatbot's answer to one message.
type Reply struct {
	Status         string         `json:"status"`
	ConversationID string         `json:"conversation_id,omitempty"`
	Intent         intent.Intent  `json:"intent,omitempty"`
	Response       string         `json:"response,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
	Suggestions    []string       `json:"suggestions,omitempty"`
	Message        string         `json:"message,omitempty"`
}

// ChatbotService answers chat messages.
type ChatbotService struct {
	DB         *gorm.DB
	Classifier *intent.Classifier
	Plans      *PlanService
	Feedback   *FeedbackService
	Index      search.Index

	// MaxMessageRunes caps incoming messages; zero disables the check.
	MaxMessageRunes int
	MaxDays         int
}

// NewChatbotService wires a ChatbotService.
func NewChatbotService(db *gorm.DB, cls *intent.Classifier, plans *PlanService, fb *FeedbackService, ix search.Index, cfg config.Config) *ChatbotService {
	return &ChatbotService{
		DB:              db,
		Classifier:      cls,
		Plans:           plans,
		Feedback:        fb,
		Index:           ix,
		MaxMessageRunes: 2000,
		MaxDays:         cfg.Planner.MaxTripDays,
	}
}

// ProcessMessage classifies message, resolves or creates the conversation,
// produces a reply and records the exchange. An empty conversationID starts
// a new conversation.
func (s *ChatbotService) ProcessMessage(ctx context.Context, userID, message, conversationID string) (*Reply, error) {
	ctx, span := otel.Tracer("services/ChatbotService").Start(ctx, "ProcessMessage",
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if s.MaxMessageRunes > 0 && utf8.RuneCountInString(message) > s.MaxMessageRunes {
		return nil, ErrMessageTooLong
	}

	res := s.Classifier.Classify(message)
	span.SetAttributes(attribute.String("intent", string(res.Intent)))

	conv, err := s.conversation(ctx, userID, conversationID, res.Entities)
	if err != nil {
		return nil, err
	}

	var reply *Reply
	switch res.Intent {
	case intent.Greeting:
		reply = greetingReply()
	case intent.TravelRequest:
		reply = s.travel(ctx, userID, conv, res.Entities)
	case intent.Feedback:
		reply, err = s.feedback(ctx, userID, conv, res.Entities)
	case intent.Question:
		reply = s.question(conv, message)
	default:
		reply = generalReply()
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	reply.Status = StatusSuccess
	reply.ConversationID = conv.ID
	reply.Intent = res.Intent

	if _, err := repo.CreateMessage(ctx, s.DB, conv.ID, message, reply.Response, string(res.Intent)); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return reply, nil
}

func (s *ChatbotService) conversation(ctx context.Context, userID, id string, ents intent.Entities) (*domain.Conversation, error) {
	if id != "" {
		conv, err := repo.GetConversation(ctx, s.DB, id, userID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return conv, err
	}
	return repo.CreateConversation(ctx, s.DB, userID, ents.Destination, ents.Days)
}

func (s *ChatbotService) travel(ctx context.Context, userID string, conv *domain.Conversation, ents intent.Entities) *Reply {
	plan, err := s.Plans.Replan(ctx, userID, conv.ID, ents.Destination, ents.Days)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("conversation_id", conv.ID).
			Str("destination", ents.Destination).
			Int("days", ents.Days).
			Msg("plan generation failed")
		msg := "Sorry, I couldn't prepare your travel plan right now. Please try again in a moment."
		if errors.Is(err, ErrInvalidTrip) && s.MaxDays > 0 {
			msg = fmt.Sprintf("Sorry, I can plan trips between 1 and %d days. How many days would you like to stay?", s.MaxDays)
		}
		return &Reply{
			Response:    msg,
			Suggestions: []string{"5 days in Baku", "3 day plan for Istanbul"},
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Great! I prepared your %d-day plan for %s.\n", plan.Days, plan.Destination)
	for _, d := range plan.DailyPlans {
		fmt.Fprintf(&b, "\nDay %d (%s): %s, %.0f°C, %d recommendations", d.Day, d.Date, d.Weather.Description, d.Weather.TempMax, d.RecommendationCount())
	}
	fmt.Fprintf(&b, "\n\nThe plan contains %d recommendations in total. Rate it to earn points!", plan.Summary.TotalRecommendations)

	return &Reply{
		Response: b.String(),
		Data: map[string]any{
			"travel_plan":     plan,
			"conversation_id": conv.ID,
		},
		Suggestions: []string{"How is the weather?", "Which restaurants do you recommend?", "Great plan, 5 stars"},
	}
}

func (s *ChatbotService) feedback(ctx context.Context, userID string, conv *domain.Conversation, ents intent.Entities) (*Reply, error) {
	rating := ents.Rating
	if rating == 0 {
		rating = 3
	}
	res, err := s.Feedback.Record(ctx, userID, FeedbackInput{ConversationID: conv.ID, Rating: rating})
	switch {
	case errors.Is(err, ErrNoPlan):
		return &Reply{
			Response:    "Please create a travel plan first, then you can rate it. For example: \"5 days in Baku\".",
			Suggestions: []string{"5 days in Baku", "4 days in Paris"},
		}, nil
	case err != nil:
		return nil, err
	}

	msg := fmt.Sprintf("Thank you for your feedback! You earned %d points. Your total score is %d.", res.PointsEarned, res.TotalScore)
	if res.BonusGranted {
		msg += fmt.Sprintf("\nCongratulations! You unlocked a bonus right. You now have %d.", res.BonusRights)
	}
	return &Reply{
		Response: msg,
		Data: map[string]any{
			"points_earned": res.PointsEarned,
			"total_score":   res.TotalScore,
			"bonus_rights":  res.BonusRights,
		},
	}, nil
}

func (s *ChatbotService) question(conv *domain.Conversation, message string) *Reply {
	text := strings.ToLower(message)

	if containsAny(text, weatherWords) && conv.HasPlan() {
		var b strings.Builder
		fmt.Fprintf(&b, "Weather forecast for %s:", conv.Plan.Destination)
		for i, w := range conv.Plan.WeatherForecast {
			if i == forecastPreviewDays {
				break
			}
			fmt.Fprintf(&b, "\n%s: %s, %.0f°C", w.Date, w.Description, w.TempMax)
		}
		return &Reply{Response: b.String()}
	}

	if containsAny(text, restaurantWords) {
		where := "your destination"
		if conv.Destination != "" {
			where = conv.Destination
		}
		return &Reply{Response: fmt.Sprintf("For restaurants in %s, check the lunch and dinner slots of your plan. They list the best rated places that match your preferences.", where)}
	}

	if conv.Destination == "" {
		return &Reply{
			Response:    "To answer questions about a trip, please create a travel plan first. For example: \"3 days in Istanbul\".",
			Suggestions: []string{"3 days in Istanbul", "Popular destinations"},
		}
	}

	var tips []search.Result
	if s.Index != nil {
		tips = s.Index.TopK(conv.Destination, message, tipsPerAnswer)
	}
	if len(tips) == 0 {
		return &Reply{Response: fmt.Sprintf("I don't have a specific answer for that yet. Your %s plan covers the main attractions, restaurants and activities, so take a look at it.", conv.Destination)}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Here are some tips for %s:", conv.Destination)
	for _, t := range tips {
		fmt.Fprintf(&b, "\n- %s", t.Snippet)
	}
	return &Reply{Response: b.String()}
}

func greetingReply() *Reply {
	return &Reply{
		Response:    "Hello! I'm your travel assistant. Tell me where you want to go and for how many days, and I'll prepare a day-by-day plan for you.",
		Suggestions: []string{"5 days in Baku", "3 day plan for Istanbul", "Suggestions for Paris"},
	}
}

func generalReply() *Reply {
	return &Reply{
		Response:    "I'm not sure I understood. You can ask me to plan a trip, for example \"4 days in Paris\", or ask a question about your destination.",
		Suggestions: []string{"Create a travel plan", "Popular destinations", "Help"},
	}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
