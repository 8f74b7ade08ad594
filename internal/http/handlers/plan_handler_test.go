package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/tbourn/go-travel-backend/internal/domain"
	"github.com/tbourn/go-travel-backend/internal/services"
)

func TestCreatePlan_Success(t *testing.T) {
	var got services.PlanRequest
	h := newHandlers()
	h.plans = stubPlans{generate: func(_ context.Context, userID string, req services.PlanRequest) (*services.PlanResult, error) {
		if userID != "u1" {
			t.Fatalf("user = %q", userID)
		}
		got = req
		return &services.PlanResult{ConversationID: "c9", Plan: &domain.Itinerary{Destination: "Baku", Days: 5}}, nil
	}}

	body := CreatePlanRequest{Destination: "Baku", Days: 5, StartDate: "2026-05-01", Preferences: map[string]string{"budget": "luxury"}}
	w := doJSON(t, newTestRouter(h), http.MethodPost, "/plans", body, map[string]string{"X-User-ID": "u1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !got.StartDate.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)) || got.Preferences["budget"] != "luxury" {
		t.Fatalf("request = %+v", got)
	}
	resp := decode[PlanResponse](t, w)
	if resp.Status != "success" || resp.ConversationID != "c9" || resp.TravelPlan.Destination != "Baku" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestCreatePlan_Errors(t *testing.T) {
	cases := []struct {
		name   string
		body   any
		err    error
		status int
		code   string
	}{
		{"missing destination", map[string]any{"days": 3}, nil, http.StatusBadRequest, ErrCodeBadRequest},
		{"bad date", CreatePlanRequest{Destination: "Paris", StartDate: "01/05/2026"}, nil, http.StatusBadRequest, ErrCodeBadRequest},
		{"invalid trip", CreatePlanRequest{Destination: "Paris", Days: 40}, services.ErrInvalidTrip, http.StatusBadRequest, ErrCodeInvalidTrip},
		{"invalid preference", CreatePlanRequest{Destination: "Paris"}, services.ErrInvalidPreference, http.StatusBadRequest, ErrCodeInvalidPreference},
		{"planner failure", CreatePlanRequest{Destination: "Paris"}, errors.New("upstream"), http.StatusInternalServerError, ErrCodePlanFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHandlers()
			h.plans = stubPlans{generate: func(context.Context, string, services.PlanRequest) (*services.PlanResult, error) {
				if tc.err == nil {
					t.Fatalf("service must not be called")
				}
				return nil, tc.err
			}}
			w := doJSON(t, newTestRouter(h), http.MethodPost, "/plans", tc.body, nil)
			resp := decode[ErrorResponse](t, w)
			if w.Code != tc.status || resp.Code != tc.code || resp.Status != "error" {
				t.Fatalf("status=%d body=%+v", w.Code, resp)
			}
		})
	}
}

func TestGetPlan(t *testing.T) {
	h := newHandlers()
	h.plans = stubPlans{get: func(_ context.Context, _ string, id string) (*domain.Itinerary, error) {
		switch id {
		case "ok":
			return &domain.Itinerary{Destination: "Paris", Days: 2}, nil
		case "empty":
			return nil, services.ErrPlanNotFound
		case "broken":
			return nil, errors.New("db")
		}
		return nil, services.ErrConversationNotFound
	}}
	r := newTestRouter(h)

	w := doJSON(t, r, http.MethodGet, "/conversations/ok/plan", nil, nil)
	if resp := decode[PlanResponse](t, w); w.Code != http.StatusOK || resp.ConversationID != "ok" || resp.TravelPlan.Days != 2 {
		t.Fatalf("status=%d resp=%+v", w.Code, resp)
	}
	for id, status := range map[string]int{"empty": http.StatusNotFound, "missing": http.StatusNotFound, "broken": http.StatusInternalServerError} {
		if w := doJSON(t, r, http.MethodGet, "/conversations/"+id+"/plan", nil, nil); w.Code != status {
			t.Fatalf("%s: status=%d", id, w.Code)
		}
	}
}
