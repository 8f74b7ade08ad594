// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Feedback model.
//
// The repository follows a "thin" approach: it performs persistence and simple
// query composition, leaving scoring rules to the services package.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-travel-backend/internal/domain"
)

// CreateFeedback inserts fb, assigning an ID and creation time when unset.
func CreateFeedback(ctx context.Context, db *gorm.DB, fb *domain.Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(fb).Error
}

// FinalizeFeedback records the scoring outcome on an existing feedback row.
func FinalizeFeedback(ctx context.Context, db *gorm.DB, id string, points, scoreAfter int, bonus bool) error {
	res := db.WithContext(ctx).
		Model(&domain.Feedback{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"points_earned": points,
			"score_after":   scoreAfter,
			"bonus_granted": bonus,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetFeedback fetches a feedback row by ID.
func GetFeedback(ctx context.Context, db *gorm.DB, id string) (*domain.Feedback, error) {
	var fb domain.Feedback
	if err := db.WithContext(ctx).Where("id = ?", id).First(&fb).Error; err != nil {
		return nil, err
	}
	return &fb, nil
}

// CountFeedbackByUser returns how many feedback rows userID has left.
func CountFeedbackByUser(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Feedback{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}
