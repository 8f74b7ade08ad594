package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-travel-backend/internal/http/middleware"
	"github.com/tbourn/go-travel-backend/internal/services"
)

func TestSubmitFeedback_Created(t *testing.T) {
	var got services.FeedbackInput
	h := newHandlers()
	h.fb = stubFeedback{record: func(_ context.Context, userID string, in services.FeedbackInput) (*services.FeedbackResult, error) {
		if userID != "u1" {
			t.Fatalf("user = %q", userID)
		}
		got = in
		return &services.FeedbackResult{FeedbackID: "f1", PointsEarned: 10, TotalScore: 58, BonusGranted: true, BonusRights: 1}, nil
	}}

	body := FeedbackRequest{Rating: 5, RecommendationID: " p1 ", RecommendationName: "Old City", RecommendationType: "tourist_attraction", DayNumber: 1, TimeSlot: "morning"}
	w := doJSON(t, newTestRouter(h), http.MethodPost, "/conversations/c1/feedback", body, map[string]string{"X-User-ID": "u1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got.ConversationID != "c1" || got.RecommendationID != "p1" || got.Rating != 5 || got.TimeSlot != "morning" {
		t.Fatalf("input = %+v", got)
	}
	resp := decode[FeedbackResponse](t, w)
	if resp.Status != "success" || resp.PointsEarned != 10 || resp.TotalScore != 58 || !resp.BonusGranted || resp.BonusRights != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Message != "Thank you for your feedback! You earned 10 points. You unlocked a bonus right!" {
		t.Fatalf("message = %q", resp.Message)
	}
}

func TestSubmitFeedback_Errors(t *testing.T) {
	cases := []struct {
		name   string
		body   any
		err    error
		status int
		code   string
	}{
		{"rating zero", map[string]int{"rating": 0}, nil, http.StatusBadRequest, ErrCodeInvalidRating},
		{"rating six", FeedbackRequest{Rating: 6}, nil, http.StatusBadRequest, ErrCodeInvalidRating},
		{"bad json", "{", nil, http.StatusBadRequest, ErrCodeInvalidRating},
		{"service rejects rating", FeedbackRequest{Rating: 3}, services.ErrInvalidRating, http.StatusBadRequest, ErrCodeInvalidRating},
		{"missing conversation", FeedbackRequest{Rating: 3}, services.ErrConversationNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"no plan", FeedbackRequest{Rating: 3}, services.ErrNoPlan, http.StatusConflict, ErrCodeNoPlan},
		{"contention", FeedbackRequest{Rating: 3}, services.ErrScoreContention, http.StatusConflict, ErrCodeConflict},
		{"storage", FeedbackRequest{Rating: 3}, errors.New("db"), http.StatusInternalServerError, ErrCodeFeedbackFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHandlers()
			h.fb = stubFeedback{record: func(context.Context, string, services.FeedbackInput) (*services.FeedbackResult, error) {
				if tc.err == nil {
					t.Fatalf("service must not be called")
				}
				return nil, tc.err
			}}
			w := doJSON(t, newTestRouter(h), http.MethodPost, "/conversations/c1/feedback", tc.body, nil)
			if resp := decode[ErrorResponse](t, w); w.Code != tc.status || resp.Code != tc.code {
				t.Fatalf("status=%d body=%+v", w.Code, resp)
			}
		})
	}
}

func TestSubmitFeedback_IdempotentReplay(t *testing.T) {
	claimed := map[string]*services.FeedbackResult{}
	records := 0
	h := newHandlers()
	h.fb = stubFeedback{
		record: func(_ context.Context, userID string, in services.FeedbackInput) (*services.FeedbackResult, error) {
			id := userID + "|" + in.ConversationID + "|" + in.IdempotencyKey
			if prev, ok := claimed[id]; ok {
				replayed := *prev
				replayed.Replayed = true
				return &replayed, nil
			}
			records++
			res := &services.FeedbackResult{FeedbackID: "f1", PointsEarned: 8, TotalScore: 8}
			claimed[id] = res
			return res, nil
		},
		replay: func(context.Context, string, string, string) (*services.FeedbackResult, bool) {
			t.Fatalf("Replay must not run when the key was not seen")
			return nil, false
		},
	}
	r := newTestRouter(h)
	hdr := map[string]string{"X-User-ID": "u1", "Idempotency-Key": "fb-123"}

	first := doJSON(t, r, http.MethodPost, "/conversations/c1/feedback", FeedbackRequest{Rating: 4}, hdr)
	if first.Code != http.StatusCreated || first.Header().Get("Idempotency-Replayed") != "" {
		t.Fatalf("first: %d %v", first.Code, first.Header())
	}
	second := doJSON(t, r, http.MethodPost, "/conversations/c1/feedback", FeedbackRequest{Rating: 4}, hdr)
	if second.Code != http.StatusOK || second.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("second: %d %v", second.Code, second.Header())
	}
	if resp := decode[FeedbackResponse](t, second); resp.FeedbackID != "f1" || resp.PointsEarned != 8 {
		t.Fatalf("replayed = %+v", resp)
	}
	if records != 1 {
		t.Fatalf("feedback scored %d times", records)
	}

	other := doJSON(t, r, http.MethodPost, "/conversations/c2/feedback", FeedbackRequest{Rating: 4}, hdr)
	if other.Code != http.StatusCreated || records != 2 {
		t.Fatalf("same key on another conversation is a new request: %d records=%d", other.Code, records)
	}
}

func TestSubmitFeedback_KnownKeySkipsRecord(t *testing.T) {
	h := newHandlers()
	h.fb = stubFeedback{
		record: func(context.Context, string, services.FeedbackInput) (*services.FeedbackResult, error) {
			t.Fatalf("Record must not run for a known key")
			return nil, nil
		},
		replay: func(_ context.Context, userID, convID, key string) (*services.FeedbackResult, bool) {
			if userID != "u1" || convID != "c1" || key != "fb-1" {
				t.Fatalf("Replay(%q, %q, %q)", userID, convID, key)
			}
			return &services.FeedbackResult{FeedbackID: "f1", PointsEarned: 10, TotalScore: 10, Replayed: true}, true
		},
	}
	seen := func(context.Context, string, string, string, time.Time) (bool, error) { return true, nil }

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Identity(), middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, seen))
	r.POST("/conversations/:id/feedback", h.SubmitFeedback)

	w := doJSON(t, r, http.MethodPost, "/conversations/c1/feedback", FeedbackRequest{Rating: 5}, map[string]string{"X-User-ID": "u1", "Idempotency-Key": "fb-1"})
	if w.Code != http.StatusOK || w.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("status=%d headers=%v", w.Code, w.Header())
	}
	if resp := decode[FeedbackResponse](t, w); resp.FeedbackID != "f1" || resp.PointsEarned != 10 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestSubmitFeedback_KeyConflict(t *testing.T) {
	h := newHandlers()
	h.fb = stubFeedback{record: func(context.Context, string, services.FeedbackInput) (*services.FeedbackResult, error) {
		return nil, services.ErrIdempotencyConflict
	}}
	w := doJSON(t, newTestRouter(h), http.MethodPost, "/conversations/c1/feedback", FeedbackRequest{Rating: 2}, map[string]string{"Idempotency-Key": "k"})
	if w.Code != http.StatusConflict || decode[ErrorResponse](t, w).Code != ErrCodeConflict {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}
