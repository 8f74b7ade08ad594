package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/tbourn/go-travel-backend/internal/config"
	"github.com/tbourn/go-travel-backend/internal/domain"
)

const (
	placesProvider = "google_places"
	maxPlaces      = 5
)

// categoryQueries holds the text-search phrasing per category. Other
// categories are searched as "<category> in <destination>".
var categoryQueries = map[string]string{
	"restaurant":         "best restaurants in %s",
	"tourist_attraction": "top attractions in %s",
	"museum":             "museums in %s",
	"park":               "parks in %s",
	"shopping_mall":      "shopping in %s",
	"bar":                "bars nightlife in %s",
	"cafe":               "cafes in %s",
}

// PlacesQuery returns the text-search query for category at destination.
func PlacesQuery(destination, category string) string {
	if f, ok := categoryQueries[category]; ok {
		return fmt.Sprintf(f, destination)
	}
	return category + " in " + destination
}

// PlacesClient calls the Google Places Text Search API.
type PlacesClient struct {
	HTTP     *http.Client
	APIKey   string
	BaseURL  string
	Language string
	limiter  *rate.Limiter
}

// NewPlacesClient builds a client from provider config.
func NewPlacesClient(cfg config.ProviderConfig, hc *http.Client) *PlacesClient {
	if hc == nil {
		hc = &http.Client{Timeout: cfg.FetchTimeout}
	}
	return &PlacesClient{
		HTTP:     hc,
		APIKey:   cfg.PlacesAPIKey,
		BaseURL:  strings.TrimRight(cfg.PlacesBaseURL, "/"),
		Language: cfg.PlacesLanguage,
		limiter:  perMinute(cfg.PlacesPerMinute),
	}
}

type textSearchResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Results      []placeResult `json:"results"`
}

type placeResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Rating           float64  `json:"rating"`
	PriceLevel       int      `json:"price_level"`
	FormattedAddress string   `json:"formatted_address"`
	Types            []string `json:"types"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	OpeningHours *struct {
		OpenNow *bool `json:"open_now"`
	} `json:"opening_hours"`
}

// FetchPlaces returns up to five places for category at destination, in the
// order the API ranks them.
func (c *PlacesClient) FetchPlaces(ctx context.Context, destination, category string) ([]domain.Place, error) {
	if c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	u, err := url.Parse(c.BaseURL + "/textsearch/json")
	if err != nil {
		return nil, fmt.Errorf("%s: base url: %w", placesProvider, err)
	}
	q := url.Values{}
	q.Set("query", PlacesQuery(destination, category))
	q.Set("key", c.APIKey)
	if c.Language != "" {
		q.Set("language", c.Language)
	}
	u.RawQuery = q.Encode()

	var body textSearchResponse
	if err := doJSON(ctx, c.HTTP, c.limiter, placesProvider, u, &body); err != nil {
		return nil, err
	}
	switch body.Status {
	case "OK", "":
	case "ZERO_RESULTS":
		return []domain.Place{}, nil
	default:
		return nil, fmt.Errorf("%w: %s status %s %s", ErrUpstream, placesProvider, body.Status, body.ErrorMessage)
	}

	n := len(body.Results)
	if n > maxPlaces {
		n = maxPlaces
	}
	out := make([]domain.Place, 0, n)
	for _, r := range body.Results[:n] {
		p := domain.Place{
			ID:         r.PlaceID,
			Name:       r.Name,
			Category:   category,
			Rating:     r.Rating,
			PriceLevel: r.PriceLevel,
			Address:    r.FormattedAddress,
			Lat:        r.Geometry.Location.Lat,
			Lng:        r.Geometry.Location.Lng,
			Types:      r.Types,
		}
		if r.OpeningHours != nil {
			p.OpenNow = r.OpeningHours.OpenNow
		}
		out = append(out, p)
	}
	return out, nil
}
