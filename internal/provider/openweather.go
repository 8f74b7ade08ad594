package provider

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tbourn/go-travel-backend/internal/config"
	"github.com/tbourn/go-travel-backend/internal/domain"
)

const (
	weatherProvider = "openweathermap"
	// The forecast endpoint returns 3-hour steps, eight per day.
	stepsPerDay = 8
)

// CurrentWeather is the observed weather for a city.
type CurrentWeather struct {
	City        string  `json:"city"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	Description string  `json:"description"`
	Icon        string  `json:"icon,omitempty"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}

// WeatherClient calls the OpenWeatherMap 2.5 API in metric units.
type WeatherClient struct {
	HTTP    *http.Client
	APIKey  string
	BaseURL string
	limiter *rate.Limiter
}

// NewWeatherClient builds a client from provider config.
func NewWeatherClient(cfg config.ProviderConfig, hc *http.Client) *WeatherClient {
	if hc == nil {
		hc = &http.Client{Timeout: cfg.FetchTimeout}
	}
	return &WeatherClient{
		HTTP:    hc,
		APIKey:  cfg.WeatherAPIKey,
		BaseURL: strings.TrimRight(cfg.WeatherBaseURL, "/"),
		limiter: perMinute(cfg.WeatherPerMinute),
	}
}

type owmConditions struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Humidity  float64 `json:"humidity"`
}

type owmWind struct {
	Speed float64 `json:"speed"`
}

type forecastResponse struct {
	List []struct {
		Dt      int64           `json:"dt"`
		Main    owmMain         `json:"main"`
		Weather []owmConditions `json:"weather"`
		Wind    owmWind         `json:"wind"`
		Pop     float64         `json:"pop"`
	} `json:"list"`
}

type currentResponse struct {
	Name    string          `json:"name"`
	Main    owmMain         `json:"main"`
	Weather []owmConditions `json:"weather"`
	Wind    owmWind         `json:"wind"`
}

func (c *WeatherClient) endpoint(path, city string) (*url.URL, error) {
	if c.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return nil, fmt.Errorf("%s: base url: %w", weatherProvider, err)
	}
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.APIKey)
	q.Set("units", "metric")
	u.RawQuery = q.Encode()
	return u, nil
}

// Forecast returns one snapshot per forecast day, sampled from every eighth
// 3-hour step starting at the first.
func (c *WeatherClient) Forecast(ctx context.Context, city string) ([]domain.WeatherSnapshot, error) {
	u, err := c.endpoint("/forecast", city)
	if err != nil {
		return nil, err
	}
	var body forecastResponse
	if err := doJSON(ctx, c.HTTP, c.limiter, weatherProvider, u, &body); err != nil {
		return nil, err
	}

	out := make([]domain.WeatherSnapshot, 0, (len(body.List)+stepsPerDay-1)/stepsPerDay)
	for i := 0; i < len(body.List); i += stepsPerDay {
		e := body.List[i]
		s := domain.WeatherSnapshot{
			Date:          time.Unix(e.Dt, 0).UTC().Format("2006-01-02"),
			TempMax:       e.Main.TempMax,
			TempMin:       e.Main.TempMin,
			Precipitation: math.Round(e.Pop * 100),
			Humidity:      e.Main.Humidity,
			WindSpeed:     e.Wind.Speed,
		}
		if len(e.Weather) > 0 {
			s.Description = e.Weather[0].Description
			s.Icon = e.Weather[0].Icon
		}
		out = append(out, s)
	}
	return out, nil
}

// FetchWeather returns the forecast for the dayIndex-th day.
func (c *WeatherClient) FetchWeather(ctx context.Context, destination string, dayIndex int) (domain.WeatherSnapshot, error) {
	days, err := c.Forecast(ctx, destination)
	if err != nil {
		return domain.WeatherSnapshot{}, err
	}
	return dayAt(days, dayIndex)
}

// Current returns the observed weather for city.
func (c *WeatherClient) Current(ctx context.Context, city string) (CurrentWeather, error) {
	u, err := c.endpoint("/weather", city)
	if err != nil {
		return CurrentWeather{}, err
	}
	var body currentResponse
	if err := doJSON(ctx, c.HTTP, c.limiter, weatherProvider, u, &body); err != nil {
		return CurrentWeather{}, err
	}
	cw := CurrentWeather{
		City:        city,
		Temperature: body.Main.Temp,
		FeelsLike:   body.Main.FeelsLike,
		Humidity:    body.Main.Humidity,
		WindSpeed:   body.Wind.Speed,
	}
	if len(body.Weather) > 0 {
		cw.Description = body.Weather[0].Description
		cw.Icon = body.Weather[0].Icon
	}
	return cw, nil
}

func dayAt(days []domain.WeatherSnapshot, i int) (domain.WeatherSnapshot, error) {
	if i < 0 || i >= len(days) {
		return domain.WeatherSnapshot{}, fmt.Errorf("%w: day %d of %d", ErrBeyondForecast, i, len(days))
	}
	return days[i], nil
}
