// Package provider contains the outbound clients that feed the planner:
// Google Places text search for candidate places and OpenWeatherMap for
// daily forecasts.
//
// Every client shares the same call path (doJSON): a client-side token
// bucket paced from the configured per-minute quota, an OpenTelemetry span,
// and Prometheus instrumentation labelled by provider and outcome. Results
// can be wrapped in the TTL caches from cache.go so repeated plans for the
// same destination do not spend quota.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var (
	// ErrMissingAPIKey is returned by a client constructed without a key.
	ErrMissingAPIKey = errors.New("provider api key not configured")
	// ErrBeyondForecast is returned for a day index past the forecast horizon.
	ErrBeyondForecast = errors.New("day beyond forecast horizon")
	// ErrUpstream wraps non-2xx responses and provider-level error statuses.
	ErrUpstream = errors.New("upstream provider error")
)

const maxBodyBytes = 2 << 20

var (
	providerReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_requests_total",
			Help: "Outbound provider calls by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	providerLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Duration of outbound provider calls in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	providerCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_cache_lookups_total",
			Help: "Provider cache lookups by cache and result.",
		},
		[]string{"cache", "result"},
	)
)

func init() {
	prometheus.MustRegister(providerReqs, providerLat, providerCache)
}

// perMinute converts a per-minute quota into a token bucket. A non-positive
// quota disables pacing.
func perMinute(n int) *rate.Limiter {
	if n <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
}

// doJSON issues a GET against u and decodes a JSON body into out.
func doJSON(ctx context.Context, hc *http.Client, lim *rate.Limiter, name string, u *url.URL, out any) (err error) {
	ctx, span := otel.Tracer("provider").Start(ctx, name+".get")
	defer span.End()
	span.SetAttributes(attribute.String("provider", name), attribute.String("http.path", u.Path))

	start := time.Now()
	outcome := "ok"
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		providerReqs.WithLabelValues(name, outcome).Inc()
		providerLat.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	if err = lim.Wait(ctx); err != nil {
		outcome = "throttled"
		return fmt.Errorf("%s: rate limit wait: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		outcome = "error"
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		outcome = "error"
		return fmt.Errorf("%s: %w", name, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "http_" + strconv.Itoa(resp.StatusCode)
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return fmt.Errorf("%w: %s returned %s", ErrUpstream, name, resp.Status)
	}

	if err = json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		outcome = "decode_error"
		return fmt.Errorf("%s: decode: %w", name, err)
	}
	return nil
}
