package provider

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tbourn/go-travel-backend/internal/domain"
)

// PlaceSource is anything that can search places by category.
type PlaceSource interface {
	FetchPlaces(ctx context.Context, destination, category string) ([]domain.Place, error)
}

// WeatherSource is the forecast and current-weather surface of WeatherClient.
type WeatherSource interface {
	Forecast(ctx context.Context, city string) ([]domain.WeatherSnapshot, error)
	Current(ctx context.Context, city string) (CurrentWeather, error)
}

func cacheKey(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "|")
}

// CachedPlaces memoizes successful place searches per destination and
// category. Errors are never cached.
type CachedPlaces struct {
	next  PlaceSource
	store *gocache.Cache
}

// NewCachedPlaces wraps next with a TTL cache.
func NewCachedPlaces(next PlaceSource, ttl time.Duration) *CachedPlaces {
	return &CachedPlaces{next: next, store: gocache.New(ttl, 2*ttl)}
}

// FetchPlaces implements planner.PlaceFetcher.
func (c *CachedPlaces) FetchPlaces(ctx context.Context, destination, category string) ([]domain.Place, error) {
	key := cacheKey(destination, category)
	if v, ok := c.store.Get(key); ok {
		providerCache.WithLabelValues("places", "hit").Inc()
		return clonePlaces(v.([]domain.Place)), nil
	}
	providerCache.WithLabelValues("places", "miss").Inc()

	ps, err := c.next.FetchPlaces(ctx, destination, category)
	if err != nil {
		return nil, err
	}
	c.store.SetDefault(key, clonePlaces(ps))
	return ps, nil
}

// CachedWeather memoizes forecasts and current observations per city.
// Concurrent misses for the same forecast share one upstream call.
type CachedWeather struct {
	next   WeatherSource
	store  *gocache.Cache
	flight singleflight.Group
}

// NewCachedWeather wraps next with a TTL cache.
func NewCachedWeather(next WeatherSource, ttl time.Duration) *CachedWeather {
	return &CachedWeather{next: next, store: gocache.New(ttl, 2*ttl)}
}

// Forecast returns the cached forecast for city, fetching it on a miss.
func (c *CachedWeather) Forecast(ctx context.Context, city string) ([]domain.WeatherSnapshot, error) {
	key := cacheKey(city, "forecast")
	if v, ok := c.store.Get(key); ok {
		providerCache.WithLabelValues("forecast", "hit").Inc()
		return append([]domain.WeatherSnapshot(nil), v.([]domain.WeatherSnapshot)...), nil
	}
	providerCache.WithLabelValues("forecast", "miss").Inc()

	v, err, _ := c.flight.Do(key, func() (any, error) {
		if v, ok := c.store.Get(key); ok {
			return v, nil
		}
		days, err := c.next.Forecast(ctx, city)
		if err != nil {
			return nil, err
		}
		c.store.SetDefault(key, days)
		zerolog.Ctx(ctx).Debug().Str("city", city).Int("days", len(days)).Msg("forecast cached")
		return days, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.WeatherSnapshot(nil), v.([]domain.WeatherSnapshot)...), nil
}

// FetchWeather implements planner.WeatherFetcher. Every day of a plan reads
// the same cached forecast, so a plan costs one upstream call.
func (c *CachedWeather) FetchWeather(ctx context.Context, destination string, dayIndex int) (domain.WeatherSnapshot, error) {
	days, err := c.Forecast(ctx, destination)
	if err != nil {
		return domain.WeatherSnapshot{}, err
	}
	return dayAt(days, dayIndex)
}

// Current returns the cached observation for city, fetching it on a miss.
func (c *CachedWeather) Current(ctx context.Context, city string) (CurrentWeather, error) {
	key := cacheKey(city, "current")
	if v, ok := c.store.Get(key); ok {
		providerCache.WithLabelValues("current", "hit").Inc()
		return v.(CurrentWeather), nil
	}
	providerCache.WithLabelValues("current", "miss").Inc()

	cw, err := c.next.Current(ctx, city)
	if err != nil {
		return CurrentWeather{}, err
	}
	c.store.SetDefault(key, cw)
	return cw, nil
}

func clonePlaces(in []domain.Place) []domain.Place {
	out := make([]domain.Place, len(in))
	for i, p := range in {
		p.Types = append([]string(nil), p.Types...)
		out[i] = p
	}
	return out
}
