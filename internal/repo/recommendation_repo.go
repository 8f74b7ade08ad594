package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-travel-backend/internal/domain"
)

// SaveRecommendations writes an audit row for every recommendation in plan.
// It returns the number of rows written.
func SaveRecommendations(ctx context.Context, db *gorm.DB, conversationID string, plan *domain.Itinerary) (int, error) {
	if plan == nil {
		return 0, nil
	}
	now := time.Now().UTC()
	var rows []domain.RecommendationRecord
	for _, day := range plan.DailyPlans {
		for _, slot := range day.Slots {
			for _, r := range slot.Recommendations {
				rows = append(rows, domain.RecommendationRecord{
					ID:             uuid.NewString(),
					ConversationID: conversationID,
					Position:       len(rows),
					DayNumber:      day.Day,
					TimeSlot:       string(slot.Slot),
					PlaceID:        r.ID,
					Name:           r.Name,
					Category:       r.Category,
					Lat:            r.Lat,
					Lng:            r.Lng,
					Rating:         r.Rating,
					PriceLevel:     r.PriceLevel,
					Score:          r.Score,
					CreatedAt:      now,
				})
			}
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := db.WithContext(ctx).CreateInBatches(rows, 100).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ListRecommendations returns the audit rows for a conversation in plan order.
func ListRecommendations(ctx context.Context, db *gorm.DB, conversationID string) ([]domain.RecommendationRecord, error) {
	var out []domain.RecommendationRecord
	err := db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("position ASC").
		Find(&out).Error
	return out, err
}
