// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Conversation model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a conversation is not found (or not owned by the caller),
//     functions return gorm.ErrRecordNotFound (exported as ErrNotFound).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - CreateConversation(ctx, db, userID, destination, days) -> *domain.Conversation, error
//   - GetConversation(ctx, db, id, userID) -> *domain.Conversation, error
//   - CountConversations / ListConversationsPage for paginated listings
//   - SavePlan(ctx, db, id, userID, plan) -> error
//   - CompareAndSwapScore(ctx, db, id, before, after, bonus) -> (bool, error)
//     Atomically moves total_score from before to after; false means
//     another writer got there first and the caller should re-read.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-travel-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateConversation inserts an active conversation owned by userID,
// seeded with whatever trip details are already known.
func CreateConversation(ctx context.Context, db *gorm.DB, userID, destination string, days int) (*domain.Conversation, error) {
	now := time.Now().UTC()
	c := &domain.Conversation{
		ID:          uuid.NewString(),
		UserID:      userID,
		Destination: destination,
		Days:        days,
		State:       domain.StateNoPlan,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetConversation fetches a conversation by ID and owner.
func GetConversation(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Conversation, error) {
	var c domain.Conversation
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CountConversations returns the number of conversations owned by userID.
func CountConversations(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListConversationsPage returns a page of conversations for userID, most
// recent first. The plan column is omitted to keep listings light.
func ListConversationsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Conversation, error) {
	var out []domain.Conversation
	err := db.WithContext(ctx).
		Omit("plan").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// SavePlan stores plan as the conversation's current itinerary and moves
// it to the plan_created state.
func SavePlan(ctx context.Context, db *gorm.DB, id, userID string, plan *domain.Itinerary) error {
	res := db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ? AND user_id = ?", id, userID).
		Select("plan", "destination", "days", "state").
		Updates(&domain.Conversation{
			Plan:        plan,
			Destination: plan.Destination,
			Days:        plan.Days,
			State:       domain.StatePlanCreated,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CompareAndSwapScore sets total_score to after and adds bonus to
// bonus_rights, but only if total_score still equals before. It reports
// whether the row was updated.
func CompareAndSwapScore(ctx context.Context, db *gorm.DB, id string, before, after, bonus int) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ? AND total_score = ?", id, before).
		Updates(map[string]any{
			"total_score":  after,
			"bonus_rights": gorm.Expr("bonus_rights + ?", bonus),
			"state":        domain.StateFeedbackRecorded,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
