// Command server runs the travel planning chatbot API.
//
// @title          Travel Planner API
// @version        1.0
// @description    Travel planning chatbot: itineraries from places and weather, feedback scoring and learned preferences.
// @BasePath       /api/v1
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/go-travel-backend/internal/config"
	httpapi "github.com/tbourn/go-travel-backend/internal/http"
	"github.com/tbourn/go-travel-backend/internal/observability"
	"github.com/tbourn/go-travel-backend/internal/provider"
	"github.com/tbourn/go-travel-backend/internal/repo"
	"github.com/tbourn/go-travel-backend/internal/search"
	"github.com/tbourn/go-travel-backend/internal/sysutil"
)

// version is set with -ldflags "-X main.version=...".
var version = ""

const (
	shutdownTimeout = 15 * time.Second
	purgeInterval   = time.Hour
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.ConfigureLogger(cfg.LogLevel, cfg.LogPretty, os.Stderr)
	gin.SetMode(cfg.GinMode)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ver := sysutil.FirstNonEmpty(version, os.Getenv("APP_VERSION"), "dev")
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, ver)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.Open(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	idx, err := search.NewIndexFromMarkdown(cfg.KnowledgePath)
	if err != nil {
		// tips are optional; the chatbot answers without them
		log.Warn().Err(err).Str("path", cfg.KnowledgePath).Msg("travel tips not loaded")
	}

	hc := &http.Client{Timeout: cfg.Providers.FetchTimeout}
	if cfg.Providers.PlacesAPIKey == "" || cfg.Providers.WeatherAPIKey == "" {
		log.Warn().Msg("provider API keys missing; plan generation and weather will fail upstream")
	}
	places := provider.NewCachedPlaces(provider.NewPlacesClient(cfg.Providers, hc), cfg.Providers.CacheTTL)
	weather := provider.NewCachedWeather(provider.NewWeatherClient(cfg.Providers, hc), cfg.Providers.CacheTTL)

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{DB: db, Index: idx, Places: places, Weather: weather}, cfg)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("version", ver).Str("db", cfg.DBDriver).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		purgeIdempotency(gctx, db, purgeInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// purgeIdempotency removes expired idempotency records every interval until
// ctx is done.
func purgeIdempotency(ctx context.Context, db *gorm.DB, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("idempotency purge failed")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("idempotency records purged")
			}
		}
	}
}
