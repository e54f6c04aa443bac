package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/jpp0ca/MusicBooster-API/internal/core"
	"github.com/jpp0ca/MusicBooster-API/internal/domain"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port        string `validate:"required,numeric"`
	Environment string `validate:"required"`
	LogLevel    string `validate:"required"`
	LogFormat   string `validate:"oneof=json console"`

	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyMarket       string        `validate:"omitempty,len=2"`
	CatalogTimeout      time.Duration `validate:"gt=0"`

	SongLinkBaseURL       string `validate:"required,url"`
	SongLinkUserCountry   string `validate:"len=2"`
	SongLinkRatePerMinute int    `validate:"min=0"`

	MatchTimeout             time.Duration `validate:"gt=0"`
	TargetPlatforms          []domain.Platform
	ConfidenceBase           float64 `validate:"gte=0,lte=1"`
	ConfidenceIncrement      float64 `validate:"gte=0,lte=1"`
	ConfidenceCeiling        float64 `validate:"gte=0,lte=1"`
	ConfidenceFloor          float64 `validate:"gte=0,lte=1"`
	DurationSecondsThreshold int64   `validate:"gt=0"`

	MatchCacheSize int           `validate:"min=0"`
	MatchCacheTTL  time.Duration `validate:"gte=0"`
	MatchWorkers   int           `validate:"min=1"`

	BreakerFailureThreshold uint32        `validate:"min=1"`
	BreakerOpenTimeout      time.Duration `validate:"gt=0"`

	CORSOrigins []string
}

// Load reads configuration from .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", "json")),

		SpotifyClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", ""),
		SpotifyMarket:       strings.ToUpper(getEnv("SPOTIFY_MARKET", "")),
		CatalogTimeout:      getDuration("CATALOG_TIMEOUT", 10*time.Second),

		SongLinkBaseURL:       getEnv("SONGLINK_BASE_URL", "https://api.song.link/v1-alpha.1"),
		SongLinkUserCountry:   strings.ToUpper(getEnv("SONGLINK_USER_COUNTRY", "US")),
		SongLinkRatePerMinute: getInt("SONGLINK_RATE_PER_MINUTE", 10),

		MatchTimeout:             getDuration("MATCH_TIMEOUT", 10*time.Second),
		TargetPlatforms:          getPlatforms("TARGET_PLATFORMS", domain.DefaultTargetPlatforms),
		ConfidenceBase:           getFloat("CONFIDENCE_BASE", 0.5),
		ConfidenceIncrement:      getFloat("CONFIDENCE_INCREMENT", 0.08),
		ConfidenceCeiling:        getFloat("CONFIDENCE_CEILING", 1.0),
		ConfidenceFloor:          getFloat("CONFIDENCE_FLOOR", 0.0),
		DurationSecondsThreshold: int64(getInt("DURATION_SECONDS_THRESHOLD", core.DefaultDurationSecondsThreshold)),

		MatchCacheSize: getInt("MATCH_CACHE_SIZE", 512),
		MatchCacheTTL:  getDuration("MATCH_CACHE_TTL", 15*time.Minute),
		MatchWorkers:   getInt("MATCH_WORKERS", 5),

		BreakerFailureThreshold: uint32(getInt("BREAKER_FAILURE_THRESHOLD", 5)),
		BreakerOpenTimeout:      getDuration("BREAKER_OPEN_TIMEOUT", 30*time.Second),

		CORSOrigins: getList("CORS_ORIGINS", []string{"*"}),
	}
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.ConfidenceBase > c.ConfidenceCeiling {
		return fmt.Errorf("invalid configuration: CONFIDENCE_BASE %.2f exceeds CONFIDENCE_CEILING %.2f",
			c.ConfidenceBase, c.ConfidenceCeiling)
	}
	return nil
}

// Resolver returns the resolver settings derived from c.
func (c *Config) Resolver() core.ResolverConfig {
	targets := make([]domain.Platform, len(c.TargetPlatforms))
	copy(targets, c.TargetPlatforms)
	return core.ResolverConfig{
		PrimaryPlatform: domain.PlatformSpotify,
		TargetPlatforms: targets,
		Timeout:         c.MatchTimeout,
		BaseScore:       c.ConfidenceBase,
		ScoreIncrement:  c.ConfidenceIncrement,
		ScoreCeiling:    c.ConfidenceCeiling,
		ScoreFloor:      c.ConfidenceFloor,
	}
}

// Normalizer returns the normalizer settings derived from c.
func (c *Config) Normalizer() core.NormalizerConfig {
	return core.NormalizerConfig{
		DurationSecondsThreshold: c.DurationSecondsThreshold,
		PrimaryURLTemplate:       core.DefaultPrimaryURLTemplate,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getList(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// getPlatforms accepts provider-style tags ("appleMusic") as well as
// platform names ("apple_music"); unknown entries are skipped with a warning.
func getPlatforms(key string, fallback []domain.Platform) []domain.Platform {
	names := getList(key, nil)
	if names == nil {
		out := make([]domain.Platform, len(fallback))
		copy(out, fallback)
		return out
	}
	out := make([]domain.Platform, 0, len(names))
	for _, name := range names {
		p, ok := domain.ParsePlatformTag(name)
		if !ok {
			log.Printf("Ignoring unknown platform %q in %s", name, key)
			continue
		}
		out = append(out, p)
	}
	return out
}
