package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-travel-backend/internal/domain"
	"github.com/tbourn/go-travel-backend/internal/http/middleware"
	"github.com/tbourn/go-travel-backend/internal/planner"
	"github.com/tbourn/go-travel-backend/internal/provider"
	"github.com/tbourn/go-travel-backend/internal/services"
	"github.com/tbourn/go-travel-backend/internal/utils"
)

//
// Service contracts
//

// ChatbotService answers free-text chat messages.
type ChatbotService interface {
	ProcessMessage(ctx context.Context, userID, message, conversationID string) (*services.Reply, error)
}

// PlanService generates and reads stored itineraries.
type PlanService interface {
	GeneratePlan(ctx context.Context, userID string, req services.PlanRequest) (*services.PlanResult, error)
	GetPlan(ctx context.Context, userID, conversationID string) (*domain.Itinerary, error)
}

// ConversationService serves listings, history, stats and preferences.
type ConversationService interface {
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Conversation, int64, error)
	ListStats(ctx context.Context, userID string) (int64, *time.Time, error)
	History(ctx context.Context, userID, conversationID string, page, pageSize int) ([]services.HistoryEntry, int64, error)
	HistoryStats(ctx context.Context, userID, conversationID string) (int64, *time.Time, error)
	UserStats(ctx context.Context, userID string) (*services.UserStats, error)
	Preferences(ctx context.Context, userID string) (planner.Preferences, error)
	SetPreferences(ctx context.Context, userID string, values map[string]string) error
}

// FeedbackService records ratings and replays idempotent submissions.
type FeedbackService interface {
	Record(ctx context.Context, userID string, in services.FeedbackInput) (*services.FeedbackResult, error)
	Replay(ctx context.Context, userID, conversationID, key string) (*services.FeedbackResult, bool)
}

// WeatherService reports current and forecast weather for a city.
type WeatherService interface {
	Current(ctx context.Context, city string) (provider.CurrentWeather, error)
	Forecast(ctx context.Context, city string) ([]domain.WeatherSnapshot, error)
}

// Handlers groups the API endpoints over their services.
type Handlers struct {
	chat    ChatbotService
	plans   PlanService
	convs   ConversationService
	fb      FeedbackService
	weather WeatherService
}

// New constructs Handlers bound to the given services.
func New(chat ChatbotService, plans PlanService, convs ConversationService, fb FeedbackService, weather WeatherService) *Handlers {
	return &Handlers{chat: chat, plans: plans, convs: convs, fb: fb, weather: weather}
}

//
// Shared DTOs and helpers
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: pages,
		HasNext:    page < pages,
	}
}

// clampPagination reads page and page_size, defaulting to 1 and def and
// bounding page_size to [1, max].
func clampPagination(c *gin.Context, def, max int) (page, pageSize int) {
	page = utils.AtoiDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), def)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > max {
		pageSize = max
	}
	return page, pageSize
}

// notModified sets a weak ETag built from scope, count and latest timestamp
// and reports whether If-None-Match already holds it, in which case a 304
// has been written.
func notModified(c *gin.Context, scope string, count int64, latest *time.Time, page, pageSize int) bool {
	var ts int64
	if latest != nil {
		ts = latest.UnixNano()
	}
	etag := fmt.Sprintf(`W/"%s:%d:%d:%d:%d"`, scope, count, ts, page, pageSize)
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}

func userID(c *gin.Context) string { return middleware.UserID(c) }
