package planner

import (
	"strings"

	"github.com/tbourn/go-travel-backend/internal/domain"
)

// Destination is an entry of the popular destinations catalog.
type Destination struct {
	Name            string `json:"name"`
	Country         string `json:"country"`
	Description     string `json:"description"`
	Image           string `json:"image"`
	RecommendedDays int    `json:"recommended_days"`
	BestSeason      string `json:"best_season"`
}

var popular = []Destination{
	{"Baku", "Azerbaijan", "Modern city on the shore of the Caspian Sea", "baku.jpg", 5, "April-October"},
	{"Istanbul", "Türkiye", "Historic city where two continents meet", "istanbul.jpg", 4, "March-November"},
	{"Paris", "France", "City of love and art", "paris.jpg", 6, "April-October"},
}

var knownInfo = map[string]domain.DestinationInfo{
	"baku": {
		Country:          "Azerbaijan",
		Timezone:         "Asia/Baku",
		Currency:         "AZN",
		Language:         "Azerbaijani",
		BestTimeToVisit:  "April-October",
		EmergencyNumbers: map[string]string{"police": "102", "medical": "103", "fire": "101"},
	},
	"istanbul": {
		Country:          "Türkiye",
		Timezone:         "Europe/Istanbul",
		Currency:         "TRY",
		Language:         "Turkish",
		BestTimeToVisit:  "March-November",
		EmergencyNumbers: map[string]string{"police": "112", "medical": "112", "fire": "112"},
	},
	"paris": {
		Country:          "France",
		Timezone:         "Europe/Paris",
		Currency:         "EUR",
		Language:         "French",
		BestTimeToVisit:  "April-October",
		EmergencyNumbers: map[string]string{"police": "17", "medical": "15", "fire": "18"},
	},
}

// aliases maps local spellings onto catalog keys.
var aliases = map[string]string{
	"bakü": "baku",
	"bakı": "baku",
}

// PopularDestinations returns a copy of the catalog.
func PopularDestinations() []Destination {
	out := make([]Destination, len(popular))
	copy(out, popular)
	return out
}

// DestinationInfo returns practical information for name. Unknown
// destinations get placeholder fields and the international emergency
// number.
func DestinationInfo(name string) domain.DestinationInfo {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "İ", "I"))
	if k, ok := aliases[key]; ok {
		key = k
	}
	info, ok := knownInfo[key]
	if !ok {
		return domain.DestinationInfo{
			Name:             name,
			Country:          "Unknown",
			Timezone:         "UTC",
			Currency:         "USD",
			Language:         "Local language",
			BestTimeToVisit:  "April-October",
			EmergencyNumbers: map[string]string{"police": "112", "medical": "112", "fire": "112"},
		}
	}
	info.Name = name
	nums := make(map[string]string, len(info.EmergencyNumbers))
	for k, v := range info.EmergencyNumbers {
		nums[k] = v
	}
	info.EmergencyNumbers = nums
	return info
}
