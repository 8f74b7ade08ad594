package repo

import (
	"context"
	"testing"
)

func TestUpsertPreference_CreateIncrementFloor(t *testing.T) {
	db := newFullDB(t)
	ctx := context.Background()

	p, err := UpsertPreference(ctx, db, "u1", "museum", "liked", 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Weight != 1 || p.Value != "liked" {
		t.Fatalf("new preference should start at weight 1, got %+v", p)
	}

	p, _ = UpsertPreference(ctx, db, "u1", "museum", "liked", 1)
	p, _ = UpsertPreference(ctx, db, "u1", "museum", "", 1)
	if p.Weight != 3 || p.Value != "liked" {
		t.Fatalf("expected weight 3 and kept value, got %+v", p)
	}

	for i := 0; i < 5; i++ {
		p, err = UpsertPreference(ctx, db, "u1", "museum", "disliked", -1)
		if err != nil {
			t.Fatalf("decrement: %v", err)
		}
	}
	if p.Weight != 1 || p.Value != "disliked" {
		t.Fatalf("weight must floor at 1, got %+v", p)
	}
}

func TestSetPreferenceValue_UpsertsKeepingWeight(t *testing.T) {
	db := newFullDB(t)
	ctx := context.Background()

	if err := SetPreferenceValue(ctx, db, "u1", "budget", "budget"); err != nil {
		t.Fatalf("SetPreferenceValue: %v", err)
	}
	_, _ = UpsertPreference(ctx, db, "u1", "budget", "", 2)
	if err := SetPreferenceValue(ctx, db, "u1", "budget", "luxury"); err != nil {
		t.Fatalf("SetPreferenceValue overwrite: %v", err)
	}

	prefs, err := GetPreferences(ctx, db, "u1")
	if err != nil {
		t.Fatalf("GetPreferences: %v", err)
	}
	if len(prefs) != 1 || prefs[0].Value != "luxury" || prefs[0].Weight != 3 {
		t.Fatalf("unexpected preferences: %+v", prefs)
	}

	other, _ := GetPreferences(ctx, db, "u2")
	if len(other) != 0 {
		t.Fatalf("expected no preferences for u2, got %+v", other)
	}
}
