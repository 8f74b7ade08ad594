package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-travel-backend/internal/domain"
)

func TestGetIdempotency_NoConversationID_ReturnsNotFound(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	rec, err := GetIdempotency(context.Background(), db, "u1", "   ", "k1", time.Now().UTC())
	if rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for empty conversationID, got (%v, %v)", rec, err)
	}
}

func TestCreateAndGetIdempotency(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	ctx := context.Background()

	rec, err := CreateIdempotency(ctx, db, "u1", "c1", "k1", "f1", 201, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.FeedbackID != "f1" || rec.Status != 201 || !rec.ExpiresAt.After(rec.CreatedAt) {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, "u1", "c1", "k1", time.Now().UTC())
	if err != nil || got.FeedbackID != "f1" {
		t.Fatalf("GetIdempotency = (%+v, %v)", got, err)
	}

	// Expired lookups behave as missing.
	if _, err := GetIdempotency(ctx, db, "u1", "c1", "k1", time.Now().Add(2*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired record, got %v", err)
	}
}

func TestCreateIdempotency_Duplicate(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "u1", "c1", "k1", "f1", 201, time.Hour); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, "u1", "c1", "k1", "f2", 201, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	// Same key under another conversation is fine.
	if _, err := CreateIdempotency(ctx, db, "u1", "c2", "k1", "f3", 201, time.Hour); err != nil {
		t.Fatalf("different conversation should not collide: %v", err)
	}
}

func TestPurgeExpiredIdempotency(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "u1", "c1", "old", "f1", 201, time.Minute); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, "u1", "c1", "fresh", "f2", 201, 48*time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}

	n, err := PurgeExpiredIdempotency(ctx, db, time.Now().UTC().Add(time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("purge = (%d, %v), want (1, nil)", n, err)
	}
	if _, err := GetIdempotency(ctx, db, "u1", "c1", "fresh", time.Now().UTC()); err != nil {
		t.Fatalf("fresh record must survive: %v", err)
	}
}

func TestClaimIdempotency(t *testing.T) {
	db := newTestDB(t, &domain.Idempotency{})
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "u1", "c1", "k1", "stale", 201, -time.Minute); err != nil {
		t.Fatalf("seed expired: %v", err)
	}
	rec, err := ClaimIdempotency(ctx, db, "u1", "c1", "k1", "f1", 201, time.Hour)
	if err != nil {
		t.Fatalf("claim over expired record: %v", err)
	}
	if rec.FeedbackID != "f1" {
		t.Fatalf("claimed = %+v", rec)
	}
	if _, err := ClaimIdempotency(ctx, db, "u1", "c1", "k1", "f2", 201, time.Hour); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("live claim: want ErrDuplicate, got %v", err)
	}

	var n int64
	db.Model(&domain.Idempotency{}).Count(&n)
	if n != 1 {
		t.Fatalf("rows = %d, want 1", n)
	}
}
