package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/go-travel-backend/internal/config"
	"github.com/tbourn/go-travel-backend/internal/domain"
)

// ErrInvalidTrip is returned for an empty destination or an out-of-range
// day count.
var ErrInvalidTrip = errors.New("invalid trip")

// PlaceFetcher returns candidate places for a category at a destination.
type PlaceFetcher interface {
	FetchPlaces(ctx context.Context, destination, category string) ([]domain.Place, error)
}

// WeatherFetcher returns the forecast for the dayIndex-th day from today.
type WeatherFetcher interface {
	FetchWeather(ctx context.Context, destination string, dayIndex int) (domain.WeatherSnapshot, error)
}

// Options bounds itinerary assembly.
type Options struct {
	MinScore          float64
	MaxCandidates     int
	KeepPerCategory   int
	CategoriesPerSlot int
	MaxDays           int
	ForecastDays      int
	Concurrency       int
	FetchTimeout      time.Duration
}

// OptionsFrom maps application config onto assembler options.
func OptionsFrom(cfg config.Config) Options {
	return Options{
		MinScore:          cfg.Planner.MinScore,
		MaxCandidates:     cfg.Planner.MaxCandidates,
		KeepPerCategory:   cfg.Planner.KeepPerCategory,
		CategoriesPerSlot: cfg.Planner.CategoriesPerSlot,
		MaxDays:           cfg.Planner.MaxTripDays,
		ForecastDays:      cfg.Planner.ForecastDays,
		Concurrency:       cfg.Planner.FetchConcurrency,
		FetchTimeout:      cfg.Providers.FetchTimeout,
	}
}

// Request describes the trip to plan.
type Request struct {
	Destination string
	Days        int
	StartDate   time.Time
	Preferences Preferences
}

// Assembler builds itineraries from fetched places and weather.
type Assembler struct {
	places  PlaceFetcher
	weather WeatherFetcher
	scorer  Scorer
	opts    Options
	now     func() time.Time
}

// NewAssembler wires an Assembler to its providers.
func NewAssembler(places PlaceFetcher, weather WeatherFetcher, opts Options) *Assembler {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Assembler{
		places:  places,
		weather: weather,
		scorer:  NewScorer(opts.MinScore),
		opts:    opts,
		now:     time.Now,
	}
}

// Assemble produces an itinerary with exactly req.Days day plans of five
// slots each. Provider failures never fail the plan: a failed category
// contributes no recommendations and a failed forecast uses DefaultWeather.
func (a *Assembler) Assemble(ctx context.Context, req Request) (*domain.Itinerary, error) {
	dest := strings.TrimSpace(req.Destination)
	if dest == "" || req.Days < 1 || (a.opts.MaxDays > 0 && req.Days > a.opts.MaxDays) {
		return nil, fmt.Errorf("%w: destination=%q days=%d", ErrInvalidTrip, dest, req.Days)
	}

	ctx, span := otel.Tracer("planner/Assembler").Start(ctx, "Assemble")
	defer span.End()
	span.SetAttributes(attribute.String("destination", dest), attribute.Int("days", req.Days))

	start := req.StartDate
	if start.IsZero() {
		start = a.now()
	}
	prefs := req.Preferences
	if prefs.Values == nil {
		prefs = DefaultPreferences()
	}

	categories := a.uniqueCategories()
	places, forecast := a.fetchAll(ctx, dest, categories, start, req.Days)

	plan := &domain.Itinerary{
		Destination:     dest,
		StartDate:       start.Format(dateLayout),
		EndDate:         start.AddDate(0, 0, req.Days-1).Format(dateLayout),
		Days:            req.Days,
		DailyPlans:      make([]domain.DayPlan, 0, req.Days),
		WeatherForecast: forecast,
		GeneralInfo:     DestinationInfo(dest),
		GeneratedAt:     a.now().UTC(),
	}

	covered := map[string]bool{}
	for d := 0; d < req.Days; d++ {
		w := forecast[d]
		day := domain.DayPlan{
			Day:     d + 1,
			Date:    start.AddDate(0, 0, d).Format(dateLayout),
			Weather: w,
			Slots:   make([]domain.SlotPlan, 0, len(Slots)),
			Notes:   DayNotes(w),
		}
		for _, ss := range Slots {
			sp := domain.SlotPlan{
				Slot:            ss.Slot,
				SuggestedTime:   ss.SuggestedTime,
				DurationMinutes: ss.DurationMinutes,
				Recommendations: []domain.Recommendation{},
			}
			for _, cat := range slotCategories(ss, a.opts.CategoriesPerSlot) {
				ranked := a.scorer.Rank(places[cat], prefs, w, ss.Slot)
				if len(ranked) > a.opts.KeepPerCategory {
					ranked = ranked[:a.opts.KeepPerCategory]
				}
				if len(ranked) > 0 && !covered[cat] {
					covered[cat] = true
					plan.Summary.CategoriesCovered = append(plan.Summary.CategoriesCovered, cat)
				}
				sp.Recommendations = append(sp.Recommendations, ranked...)
			}
			day.Slots = append(day.Slots, sp)
		}
		plan.Summary.TotalRecommendations += day.RecommendationCount()
		plan.DailyPlans = append(plan.DailyPlans, day)
	}

	span.SetAttributes(attribute.Int("recommendations", plan.Summary.TotalRecommendations))
	return plan, nil
}

// uniqueCategories lists every category queried by any slot, in slot order.
// Results do not depend on the day, so each is fetched once per plan.
func (a *Assembler) uniqueCategories() []string {
	seen := map[string]bool{}
	var out []string
	for _, ss := range Slots {
		for _, cat := range slotCategories(ss, a.opts.CategoriesPerSlot) {
			if !seen[cat] {
				seen[cat] = true
				out = append(out, cat)
			}
		}
	}
	return out
}

// fetchAll issues every place and weather call concurrently. Each call gets
// its own timeout and reports failure only through the log, so one failing
// call never cancels its siblings.
func (a *Assembler) fetchAll(ctx context.Context, dest string, categories []string, start time.Time, days int) (map[string][]domain.Place, []domain.WeatherSnapshot) {
	lg := zerolog.Ctx(ctx)
	placeResults := make([][]domain.Place, len(categories))
	forecast := make([]domain.WeatherSnapshot, days)

	var g errgroup.Group
	g.SetLimit(a.opts.Concurrency)

	for i, cat := range categories {
		g.Go(func() error {
			cctx, cancel := a.callContext(ctx)
			defer cancel()
			ps, err := a.places.FetchPlaces(cctx, dest, cat)
			if err != nil {
				lg.Warn().Err(err).Str("destination", dest).Str("category", cat).Msg("place fetch failed; skipping category")
				return nil
			}
			if len(ps) > a.opts.MaxCandidates {
				ps = ps[:a.opts.MaxCandidates]
			}
			placeResults[i] = ps
			return nil
		})
	}

	for d := 0; d < days; d++ {
		date := start.AddDate(0, 0, d)
		if a.weather == nil || (a.opts.ForecastDays > 0 && d >= a.opts.ForecastDays) {
			forecast[d] = DefaultWeather(date)
			continue
		}
		g.Go(func() error {
			cctx, cancel := a.callContext(ctx)
			defer cancel()
			w, err := a.weather.FetchWeather(cctx, dest, d)
			if err != nil {
				lg.Warn().Err(err).Str("destination", dest).Int("day_index", d).Msg("weather fetch failed; using default")
				w = DefaultWeather(date)
			}
			if w.Date == "" {
				w.Date = date.Format(dateLayout)
			}
			forecast[d] = w
			return nil
		})
	}

	_ = g.Wait() // goroutines never return errors

	byCategory := make(map[string][]domain.Place, len(categories))
	for i, cat := range categories {
		byCategory[cat] = placeResults[i]
	}
	return byCategory, forecast
}

// callContext bounds a single provider call. Cancellation of the parent is
// not propagated further than this.
func (a *Assembler) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.opts.FetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.opts.FetchTimeout)
}
