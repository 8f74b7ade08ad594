// Destination and weather HTTP handlers.
//
//   - GET /destinations/popular       (catalog)
//   - GET /weather/{city}             (current weather, placeholder on failure)
//   - GET /weather/{city}/forecast    (up to five days)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-travel-backend/internal/domain"
	"github.com/tbourn/go-travel-backend/internal/http/middleware"
	"github.com/tbourn/go-travel-backend/internal/planner"
	"github.com/tbourn/go-travel-backend/internal/provider"
)

const forecastDays = 5

// PopularDestinationsResponse lists the destination catalog.
type PopularDestinationsResponse struct {
	Destinations []planner.Destination `json:"destinations"`
	Total        int                   `json:"total"`
}

// WeatherResponse is the current weather for a city. Source is "default"
// when the provider could not be reached and placeholder values are shown.
type WeatherResponse struct {
	provider.CurrentWeather
	Source string                 `json:"source" example:"live"`
	Info   domain.DestinationInfo `json:"destination_info"`
}

// ForecastResponse is up to five days of forecast for a city.
type ForecastResponse struct {
	City     string                   `json:"city"`
	Forecast []domain.WeatherSnapshot `json:"forecast"`
}

// defaultWeather is served when the provider fails.
func defaultWeather(city string) provider.CurrentWeather {
	return provider.CurrentWeather{
		City:        city,
		Temperature: 22,
		FeelsLike:   25,
		Description: "sunny",
		Humidity:    65,
		WindSpeed:   3.2,
	}
}

// PopularDestinations godoc
// @ID          popularDestinations
// @Summary     Popular destinations
// @Tags        Destinations
// @Produce     json
// @Success     200  {object} handlers.PopularDestinationsResponse
// @Router      /destinations/popular [get]
func (h *Handlers) PopularDestinations(c *gin.Context) {
	ds := planner.PopularDestinations()
	c.Header("Cache-Control", "public, max-age=3600")
	ok(c, http.StatusOK, PopularDestinationsResponse{Destinations: ds, Total: len(ds)})
}

// GetWeather godoc
// @ID          getWeather
// @Summary     Current weather
// @Description Returns today's weather for a city, or placeholder values with source "default" when the provider is unavailable.
// @Tags        Weather
// @Produce     json
// @Param       city  path  string  true  "City"  example(Baku)
// @Success     200  {object} handlers.WeatherResponse
// @Router      /weather/{city} [get]
func (h *Handlers) GetWeather(c *gin.Context) {
	city := c.Param("city")
	resp := WeatherResponse{Source: "live", Info: planner.DestinationInfo(city)}

	cw, err := h.weather.Current(c.Request.Context(), city)
	if err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Str("city", city).Msg("current weather unavailable, serving default")
		cw, resp.Source = defaultWeather(city), "default"
	}
	resp.CurrentWeather = cw
	ok(c, http.StatusOK, resp)
}

// GetForecast godoc
// @ID          getForecast
// @Summary     Weather forecast
// @Description Returns up to five days of forecast for a city.
// @Tags        Weather
// @Produce     json
// @Param       city  path  string  true  "City"  example(Baku)
// @Success     200  {object} handlers.ForecastResponse
// @Failure     502  {object} handlers.ErrorResponse "Weather provider unavailable"
// @Router      /weather/{city}/forecast [get]
func (h *Handlers) GetForecast(c *gin.Context) {
	city := c.Param("city")
	days, err := h.weather.Forecast(c.Request.Context(), city)
	if err != nil {
		fail(c, http.StatusBadGateway, ErrCodeWeatherFailed, "weather provider unavailable")
		return
	}
	if len(days) > forecastDays {
		days = days[:forecastDays]
	}
	c.Header("Cache-Control", "public, max-age=1800")
	ok(c, http.StatusOK, ForecastResponse{City: city, Forecast: days})
}
