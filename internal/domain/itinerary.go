package domain

import "time"

// TimeSlot is one of the five fixed periods of a travel day.
type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotLunch     TimeSlot = "lunch"
	SlotAfternoon TimeSlot = "afternoon"
	SlotDinner    TimeSlot = "dinner"
	SlotEvening   TimeSlot = "evening"
)

// TimeSlots lists the slots in the order they appear in a day plan.
var TimeSlots = []TimeSlot{SlotMorning, SlotLunch, SlotAfternoon, SlotDinner, SlotEvening}

// Valid reports whether s is one of the fixed slots.
func (s TimeSlot) Valid() bool {
	for _, v := range TimeSlots {
		if v == s {
			return true
		}
	}
	return false
}

// Place is a candidate returned by a places provider. OpenNow is nil when
// the provider does not report opening hours.
type Place struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Rating     float64  `json:"rating"`
	PriceLevel int      `json:"price_level"`
	Address    string   `json:"address,omitempty"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
	Types      []string `json:"types,omitempty"`
	OpenNow    *bool    `json:"open_now,omitempty"`
}

// Recommendation is a scored place.
type Recommendation struct {
	Place
	Score float64 `json:"score"`
}

// WeatherSnapshot is the forecast for one day. Icon is empty for the
// fallback snapshot.
type WeatherSnapshot struct {
	Date          string  `json:"date"`
	TempMax       float64 `json:"temperature_max"`
	TempMin       float64 `json:"temperature_min"`
	Description   string  `json:"description"`
	Icon          string  `json:"icon,omitempty"`
	Precipitation float64 `json:"precipitation_chance"`
	Humidity      float64 `json:"humidity"`
	WindSpeed     float64 `json:"wind_speed"`
}

// SlotPlan holds the recommendations for one time slot.
type SlotPlan struct {
	Slot            TimeSlot         `json:"slot"`
	SuggestedTime   string           `json:"suggested_time"`
	DurationMinutes int              `json:"duration_minutes"`
	Recommendations []Recommendation `json:"recommendations"`
}

// DayPlan is one day of an itinerary. Slots always has one entry per
// TimeSlot, in TimeSlots order.
type DayPlan struct {
	Day     int             `json:"day"`
	Date    string          `json:"date"`
	Weather WeatherSnapshot `json:"weather"`
	Slots   []SlotPlan      `json:"slots"`
	Notes   []string        `json:"notes,omitempty"`
}

// RecommendationCount returns the number of recommendations across all slots.
func (d DayPlan) RecommendationCount() int {
	n := 0
	for _, s := range d.Slots {
		n += len(s.Recommendations)
	}
	return n
}

// DestinationInfo is static practical information about a destination.
type DestinationInfo struct {
	Name             string            `json:"name"`
	Country          string            `json:"country"`
	Timezone         string            `json:"timezone"`
	Currency         string            `json:"currency"`
	Language         string            `json:"language"`
	BestTimeToVisit  string            `json:"best_time_to_visit"`
	EmergencyNumbers map[string]string `json:"emergency_numbers"`
}

// PlanSummary aggregates counts across the whole itinerary.
type PlanSummary struct {
	TotalRecommendations int      `json:"total_recommendations"`
	CategoriesCovered    []string `json:"categories_covered"`
}

// Itinerary is a complete multi-day plan.
type Itinerary struct {
	Destination     string            `json:"destination"`
	StartDate       string            `json:"start_date"`
	EndDate         string            `json:"end_date"`
	Days            int               `json:"days"`
	DailyPlans      []DayPlan         `json:"daily_plans"`
	WeatherForecast []WeatherSnapshot `json:"weather_forecast"`
	GeneralInfo     DestinationInfo   `json:"general_info"`
	Summary         PlanSummary       `json:"summary"`
	GeneratedAt     time.Time         `json:"generated_at"`
}

// Recommendations returns every recommendation in plan order.
func (it *Itinerary) Recommendations() []Recommendation {
	if it == nil {
		return nil
	}
	var out []Recommendation
	for _, d := range it.DailyPlans {
		for _, s := range d.Slots {
			out = append(out, s.Recommendations...)
		}
	}
	return out
}
