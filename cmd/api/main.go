package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/jpp0ca/MusicBooster-API/internal/adapters"
	handler "github.com/jpp0ca/MusicBooster-API/internal/adapters/http"
	"github.com/jpp0ca/MusicBooster-API/internal/adapters/songlink"
	"github.com/jpp0ca/MusicBooster-API/internal/adapters/spotify"
	"github.com/jpp0ca/MusicBooster-API/internal/app"
	"github.com/jpp0ca/MusicBooster-API/internal/config"
	"github.com/jpp0ca/MusicBooster-API/internal/core"
	"github.com/jpp0ca/MusicBooster-API/internal/domain"
	"github.com/jpp0ca/MusicBooster-API/internal/logging"

	_ "github.com/jpp0ca/MusicBooster-API/docs"
)

const shutdownTimeout = 10 * time.Second

// @title			MusicBooster API
// @version		1.0
// @description	Cross-platform music link resolution: search Spotify, match tracks and albums on other
// @description	streaming platforms, and serve landing pages and preview cards.

// @contact.name	MusicBooster API Support
// @license.name	MIT

// @host		localhost:8080
// @BasePath	/
func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("Configuration error")
	}
	if cfg.SpotifyClientID == "" || cfg.SpotifyClientSecret == "" {
		logging.Warn().Msg("SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET not set; catalog requests will fail")
	}
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create provider adapters
	httpClient := &http.Client{Timeout: cfg.MatchTimeout + 5*time.Second}
	spotifyProvider := spotify.NewProvider(
		spotify.NewClientCredentialsClient(context.Background(), cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.CatalogTimeout),
		spotify.Options{Market: cfg.SpotifyMarket},
	)
	songlinkProvider := songlink.NewProvider(httpClient, songlink.Options{
		BaseURL:          cfg.SongLinkBaseURL,
		UserCountry:      cfg.SongLinkUserCountry,
		RatePerMinute:    cfg.SongLinkRatePerMinute,
		FailureThreshold: cfg.BreakerFailureThreshold,
		OpenTimeout:      cfg.BreakerOpenTimeout,
	})

	// Register catalog providers
	registry := adapters.NewCatalogRegistry()
	registry.Register(spotifyProvider)

	// Create core and application service
	normalizer := core.NewNormalizer(cfg.Normalizer())
	resolver := core.NewResolver(songlinkProvider, cfg.Resolver(), logging.Logger())
	logging.Debug().
		Strs("targets", platformTags(cfg.TargetPlatforms)).
		Dur("match_timeout", cfg.MatchTimeout).
		Dur("catalog_timeout", cfg.CatalogTimeout).
		Str("market", cfg.SpotifyMarket).
		Msg("Resolver configured")

	cacheSize := cfg.MatchCacheSize
	if cacheSize == 0 {
		cacheSize = -1
	}
	boosterService := app.NewService(registry, normalizer, resolver, app.Options{
		Catalog:       spotifyProvider.Name(),
		Matching:      songlinkProvider,
		Workers:       cfg.MatchWorkers,
		CacheSize:     cacheSize,
		CacheTTL:      cfg.MatchCacheTTL,
		LookupTimeout: cfg.CatalogTimeout,
	})

	// Setup HTTP server
	r := gin.New()
	r.Use(gin.Recovery())
	handler.UseMiddleware(r, cfg.CORSOrigins)
	h := handler.NewHandler(boosterService)
	h.RegisterRoutes(r)

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Info().
		Str("addr", addr).
		Str("environment", cfg.Environment).
		Int("workers", cfg.MatchWorkers).
		Strs("catalogs", registry.Available()).
		Str("matching", songlinkProvider.Name()).
		Msg("Starting MusicBooster API")
	logging.Info().Msgf("Swagger UI: http://localhost%s/swagger/index.html", addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func platformTags(platforms []domain.Platform) []string {
	tags := make([]string, len(platforms))
	for i, p := range platforms {
		tags[i] = string(p)
	}
	return tags
}
