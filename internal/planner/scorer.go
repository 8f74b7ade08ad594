// Package planner turns fetched places and weather into a scored,
// day-by-day itinerary.
//
// Scorer ranks the places for one category and time slot. Assembler drives
// the fetch-score-assemble loop for a whole trip, fanning out provider calls
// concurrently and degrading gracefully when individual fetches fail.
package planner

import (
	"sort"
	"strings"

	"github.com/tbourn/go-travel-backend/internal/domain"
)

// Preference categories the scorer reads.
const (
	PrefBudget        = "budget"
	PrefCuisine       = "cuisine"
	PrefActivityLevel = "activity_level"
)

// Score components.
const (
	ratingWeight   = 10
	cuisineBonus   = 20
	budgetBonus    = 15
	weatherBonus   = 10
	openNowBonus   = 5
	rainyThreshold = 70.0
)

var (
	indoorTypes  = []string{"museum", "shopping_mall", "restaurant"}
	outdoorTypes = []string{"park", "tourist_attraction", "outdoor"}
)

// Preferences is a user's preference mapping: an explicit or learned value
// and a weight per category.
type Preferences struct {
	Values  map[string]string `json:"values"`
	Weights map[string]int    `json:"weights"`
}

// DefaultPreferences is used for users with no stored preferences.
func DefaultPreferences() Preferences {
	return Preferences{
		Values: map[string]string{
			PrefBudget:        "mid-range",
			PrefCuisine:       "local",
			PrefActivityLevel: "moderate",
		},
		Weights: map[string]int{},
	}
}

// PreferencesFrom builds a mapping from stored rows, falling back to
// DefaultPreferences when rows is empty.
func PreferencesFrom(rows []domain.Preference) Preferences {
	if len(rows) == 0 {
		return DefaultPreferences()
	}
	p := Preferences{
		Values:  make(map[string]string, len(rows)),
		Weights: make(map[string]int, len(rows)),
	}
	for _, r := range rows {
		p.Values[r.Category] = r.Value
		p.Weights[r.Category] = r.Weight
	}
	return p
}

// With returns a copy of p with overrides applied on top.
func (p Preferences) With(overrides map[string]string) Preferences {
	out := Preferences{
		Values:  make(map[string]string, len(p.Values)+len(overrides)),
		Weights: make(map[string]int, len(p.Weights)),
	}
	for k, v := range p.Values {
		out.Values[k] = v
	}
	for k, v := range p.Weights {
		out.Weights[k] = v
	}
	for k, v := range overrides {
		if v = strings.TrimSpace(v); v != "" {
			out.Values[k] = v
		}
	}
	return out
}

// Scorer assigns additive scores to places and drops the weak ones.
type Scorer struct {
	MinScore float64
}

// NewScorer returns a Scorer that discards places scoring below minScore.
func NewScorer(minScore float64) Scorer {
	return Scorer{MinScore: minScore}
}

// Score computes rating*10 plus preference, weather and time-slot bonuses.
func (s Scorer) Score(p domain.Place, prefs Preferences, w domain.WeatherSnapshot, slot domain.TimeSlot) float64 {
	score := p.Rating * ratingWeight

	if cuisine := prefs.Values[PrefCuisine]; cuisine != "" && strings.Contains(p.Category, "restaurant") {
		tags := strings.ToLower(strings.Join(p.Types, " "))
		if strings.Contains(tags, strings.ToLower(cuisine)) {
			score += cuisineBonus
		}
	}
	switch prefs.Values[PrefBudget] {
	case "budget":
		if p.PriceLevel <= 2 {
			score += budgetBonus
		}
	case "luxury":
		if p.PriceLevel >= 3 {
			score += budgetBonus
		}
	}

	if w.Precipitation > rainyThreshold {
		if hasAnyType(p, indoorTypes) {
			score += weatherBonus
		}
	} else if hasAnyType(p, outdoorTypes) {
		score += weatherBonus
	}

	if (slot == domain.SlotMorning || slot == domain.SlotAfternoon) && p.OpenNow != nil && *p.OpenNow {
		score += openNowBonus
	}
	return score
}

// Rank scores places, drops those below MinScore, and sorts the survivors
// by descending score. Ties keep their fetch order.
func (s Scorer) Rank(places []domain.Place, prefs Preferences, w domain.WeatherSnapshot, slot domain.TimeSlot) []domain.Recommendation {
	out := make([]domain.Recommendation, 0, len(places))
	for _, p := range places {
		sc := s.Score(p, prefs, w, slot)
		if sc < s.MinScore {
			continue
		}
		out = append(out, domain.Recommendation{Place: p, Score: sc})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func hasAnyType(p domain.Place, want []string) bool {
	for _, t := range p.Types {
		for _, w := range want {
			if t == w {
				return true
			}
		}
	}
	return false
}
