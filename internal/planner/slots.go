package planner

import (
	"time"

	"github.com/tbourn/go-travel-backend/internal/domain"
)

// SlotSpec describes what a time slot is filled with and when it happens.
type SlotSpec struct {
	Slot            domain.TimeSlot
	Categories      []string
	SuggestedTime   string
	DurationMinutes int
}

// Slots is the fixed daily schedule, in plan order.
var Slots = []SlotSpec{
	{domain.SlotMorning, []string{"tourist_attraction", "museum", "park", "landmark"}, "09:00-12:00", 180},
	{domain.SlotLunch, []string{"restaurant", "cafe", "food"}, "12:00-14:00", 120},
	{domain.SlotAfternoon, []string{"shopping_mall", "market", "cultural_center", "gallery"}, "14:00-18:00", 240},
	{domain.SlotDinner, []string{"restaurant", "local_cuisine", "fine_dining"}, "19:00-21:00", 120},
	{domain.SlotEvening, []string{"bar", "nightclub", "theater", "entertainment"}, "21:00-23:00", 120},
}

// Weather-derived day notes.
const (
	NoteRain = "High chance of rain, indoor activities are recommended"
	NoteHeat = "Hot weather expected, prefer shaded places and drink plenty of water"
)

const (
	heatThreshold = 30.0
	dateLayout    = "2006-01-02"
)

// DefaultWeather is substituted when a forecast cannot be fetched.
func DefaultWeather(date time.Time) domain.WeatherSnapshot {
	return domain.WeatherSnapshot{
		Date:          date.Format(dateLayout),
		TempMax:       22,
		TempMin:       16,
		Description:   "partly cloudy",
		Precipitation: 20,
		Humidity:      60,
		WindSpeed:     3,
	}
}

// DayNotes returns the advisory notes for a day's weather.
func DayNotes(w domain.WeatherSnapshot) []string {
	var notes []string
	if w.Precipitation > rainyThreshold {
		notes = append(notes, NoteRain)
	}
	if w.TempMax > heatThreshold {
		notes = append(notes, NoteHeat)
	}
	return notes
}

// slotCategories returns the first n categories of ss.
func slotCategories(ss SlotSpec, n int) []string {
	if n > len(ss.Categories) {
		n = len(ss.Categories)
	}
	return ss.Categories[:n]
}
