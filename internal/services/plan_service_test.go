package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-travel-backend/internal/domain"
	"github.com/tbourn/go-travel-backend/internal/planner"
	"github.com/tbourn/go-travel-backend/internal/repo"
)

// fakePlanner returns samplePlan with one recommendation per day and
// records every request.
type fakePlanner struct {
	reqs []planner.Request
	err  error
}

func (f *fakePlanner) Assemble(_ context.Context, req planner.Request) (*domain.Itinerary, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	it := samplePlan(req.Destination, req.Days)
	for i := range it.DailyPlans {
		it.DailyPlans[i].Slots[0].Recommendations = []domain.Recommendation{{
			Place: domain.Place{ID: "p" + it.DailyPlans[i].Date, Name: "Old City", Category: "tourist_attraction", Rating: 4.6},
			Score: 56,
		}}
	}
	it.Summary.TotalRecommendations = req.Days
	return it, nil
}

func TestPlan_GeneratePlan_StoresPlanAndAudit(t *testing.T) {
	db := newTestDB(t)
	fp := &fakePlanner{}
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := &PlanService{DB: db, Planner: fp, DefaultDays: 5, MaxDays: 14, StartOffset: 7 * 24 * time.Hour, now: func() time.Time { return fixed }}
	ctx := context.Background()

	res, err := svc.GeneratePlan(ctx, "u1", PlanRequest{Destination: "  Baku ", Days: 5})
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if res.ConversationID == "" || len(res.Plan.DailyPlans) != 5 {
		t.Fatalf("unexpected result: %+v", res)
	}

	req := fp.reqs[0]
	if req.Destination != "Baku" || req.Days != 5 {
		t.Fatalf("request = %+v", req)
	}
	if !req.StartDate.Equal(fixed.Add(7 * 24 * time.Hour)) {
		t.Fatalf("start date = %v", req.StartDate)
	}
	if req.Preferences.Values[planner.PrefBudget] != "mid-range" {
		t.Fatalf("defaults not applied: %+v", req.Preferences)
	}

	conv, err := repo.GetConversation(ctx, db, res.ConversationID, "u1")
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if !conv.HasPlan() || conv.State != domain.StatePlanCreated || conv.Destination != "Baku" {
		t.Fatalf("conversation not updated: %+v", conv)
	}
	recs, err := repo.ListRecommendations(ctx, db, res.ConversationID)
	if err != nil || len(recs) != 5 {
		t.Fatalf("audit rows = %d, err=%v", len(recs), err)
	}
}

func TestPlan_GeneratePlan_MergesPreferences(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	if err := repo.SetPreferenceValue(ctx, db, "u1", planner.PrefBudget, "luxury"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	fp := &fakePlanner{}
	svc := &PlanService{DB: db, Planner: fp, DefaultDays: 5, MaxDays: 14}

	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.GeneratePlan(ctx, "u1", PlanRequest{
		Destination: "Paris",
		StartDate:   start,
		Preferences: map[string]string{planner.PrefCuisine: "french"},
	})
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	req := fp.reqs[0]
	if req.Days != 5 {
		t.Fatalf("default days not applied: %d", req.Days)
	}
	if !req.StartDate.Equal(start) {
		t.Fatalf("explicit start ignored: %v", req.StartDate)
	}
	if req.Preferences.Values[planner.PrefBudget] != "luxury" || req.Preferences.Values[planner.PrefCuisine] != "french" {
		t.Fatalf("preferences = %+v", req.Preferences.Values)
	}
}

func TestPlan_GeneratePlan_Validation(t *testing.T) {
	db := newTestDB(t)
	fp := &fakePlanner{}
	svc := &PlanService{DB: db, Planner: fp, DefaultDays: 5, MaxDays: 14}
	ctx := context.Background()

	cases := []PlanRequest{
		{Destination: "", Days: 3},
		{Destination: "Paris", Days: -1},
		{Destination: "Paris", Days: 15},
	}
	for _, req := range cases {
		if _, err := svc.GeneratePlan(ctx, "u1", req); !errors.Is(err, ErrInvalidTrip) {
			t.Fatalf("%+v: want ErrInvalidTrip, got %v", req, err)
		}
	}
	if _, err := svc.GeneratePlan(ctx, "u1", PlanRequest{Destination: "Paris", Days: 2, Preferences: map[string]string{"budget": "cheap"}}); !errors.Is(err, ErrInvalidPreference) {
		t.Fatalf("want ErrInvalidPreference, got %v", err)
	}
	if len(fp.reqs) != 0 {
		t.Fatalf("planner must not run on invalid input")
	}
}

func TestPlan_GeneratePlan_PlannerError(t *testing.T) {
	db := newTestDB(t)
	boom := errors.New("boom")
	svc := &PlanService{DB: db, Planner: &fakePlanner{err: boom}, DefaultDays: 5, MaxDays: 14}

	if _, err := svc.GeneratePlan(context.Background(), "u1", PlanRequest{Destination: "Paris", Days: 2}); !errors.Is(err, boom) {
		t.Fatalf("want planner error, got %v", err)
	}
	var n int64
	db.Model(&domain.Conversation{}).Count(&n)
	if n != 0 {
		t.Fatalf("no conversation should be created on failure, got %d", n)
	}
}

func TestPlan_ReplanAndGetPlan(t *testing.T) {
	db := newTestDB(t)
	conv := seedConversation(t, db, "u1", false, 0, 0)
	svc := &PlanService{DB: db, Planner: &fakePlanner{}, DefaultDays: 5, MaxDays: 14}
	ctx := context.Background()

	if _, err := svc.GetPlan(ctx, "u1", conv.ID); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("want ErrPlanNotFound, got %v", err)
	}
	if _, err := svc.Replan(ctx, "u2", conv.ID, "Istanbul", 3); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("want ErrConversationNotFound, got %v", err)
	}

	plan, err := svc.Replan(ctx, "u1", conv.ID, "Istanbul", 3)
	if err != nil {
		t.Fatalf("Replan: %v", err)
	}
	got, err := svc.GetPlan(ctx, "u1", conv.ID)
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if got.Destination != "Istanbul" || len(got.DailyPlans) != len(plan.DailyPlans) {
		t.Fatalf("stored plan = %+v", got)
	}
	if _, err := svc.GetPlan(ctx, "u1", "missing"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("want ErrConversationNotFound, got %v", err)
	}
}

func TestPlan_ReplanFailureKeepsStoredTrip(t *testing.T) {
	db := newTestDB(t)
	conv := seedConversation(t, db, "u1", true, 0, 0)
	svc := &PlanService{DB: db, Planner: &fakePlanner{err: errors.New("places down")}, DefaultDays: 5, MaxDays: 14}

	if _, err := svc.Replan(context.Background(), "u1", conv.ID, "Istanbul", 3); err == nil {
		t.Fatalf("expected assembly error")
	}
	got := reload(t, db, conv.ID)
	if got.Destination != "Baku" || got.Days != 5 || got.Plan == nil || got.Plan.Destination != "Baku" {
		t.Fatalf("failed replan changed the trip: dest=%q days=%d plan=%+v", got.Destination, got.Days, got.Plan)
	}
}
