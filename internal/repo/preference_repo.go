// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the per-user preference store.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-travel-backend/internal/domain"
)

// GetPreferences returns every preference stored for userID, ordered by
// category.
func GetPreferences(ctx context.Context, db *gorm.DB, userID string) ([]domain.Preference, error) {
	var out []domain.Preference
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("category ASC").
		Find(&out).Error
	return out, err
}

// UpsertPreference adjusts the weight of (userID, category) by delta,
// flooring it at 1. A missing row is created with weight 1. A non-empty
// value replaces the stored one.
func UpsertPreference(ctx context.Context, db *gorm.DB, userID, category, value string, delta int) (*domain.Preference, error) {
	var out *domain.Preference
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Preference
		err := tx.Where("user_id = ? AND category = ?", userID, category).First(&p).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			now := time.Now().UTC()
			p = domain.Preference{
				ID:        uuid.NewString(),
				UserID:    userID,
				Category:  category,
				Value:     value,
				Weight:    1,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			w := p.Weight + delta
			if w < 1 {
				w = 1
			}
			updates := map[string]any{"weight": w}
			if value != "" {
				updates["value"] = value
			}
			if err := tx.Model(&p).Updates(updates).Error; err != nil {
				return err
			}
		}
		out = &p
		return nil
	})
	return out, err
}

// SetPreferenceValue stores an explicit value for (userID, category),
// keeping any learned weight.
func SetPreferenceValue(ctx context.Context, db *gorm.DB, userID, category, value string) error {
	now := time.Now().UTC()
	p := domain.Preference{
		ID:        uuid.NewString(),
		UserID:    userID,
		Category:  category,
		Value:     value,
		Weight:    1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "category"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&p).Error
}
