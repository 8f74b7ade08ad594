// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// for conditional responses (ETag generation) and user statistics.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-travel-backend/internal/domain"
)

// ConversationsStats returns the number of conversations owned by userID and
// the greatest UpdatedAt among them (nil when the user has none).
func ConversationsStats(ctx context.Context, db *gorm.DB, userID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Conversation{}).Where("user_id = ?", userID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// MessagesStats returns the number of messages in a conversation and the
// newest CreatedAt (nil when there are none). Messages are append-only, so
// this pair changes whenever the history does.
func MessagesStats(ctx context.Context, db *gorm.DB, conversationID string) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Message{}).Where("conversation_id = ?", conversationID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}

// UserTotals aggregates score fields across a user's conversations.
type UserTotals struct {
	Conversations int64
	TotalScore    int64
	BonusRights   int64
}

// SumUserTotals returns the aggregated totals for userID.
func SumUserTotals(ctx context.Context, db *gorm.DB, userID string) (UserTotals, error) {
	var out UserTotals
	err := db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Select("COUNT(*) AS conversations, COALESCE(SUM(total_score), 0) AS total_score, COALESCE(SUM(bonus_rights), 0) AS bonus_rights").
		Where("user_id = ?", userID).
		Scan(&out).Error
	return out, err
}
