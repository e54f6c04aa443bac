package ports

import (
	"context"

	"github.com/jpp0ca/MusicBooster-API/internal/domain"
)

// CatalogProvider is the primary catalog: the source of truth for metadata
// and of the URL that seeds cross-platform resolution.
type CatalogProvider interface {
	// Lookup fetches one track or album. Unknown identifiers yield
	// domain.ErrNotFound.
	Lookup(ctx context.Context, id string, contentType domain.ContentType) (domain.RawRecord, error)

	// Search returns raw track and album candidates for a free-text query.
	Search(ctx context.Context, query string, limit int) ([]domain.RawRecord, error)

	// Ping performs the cheapest authenticated request available.
	Ping(ctx context.Context) error

	// Name returns the provider identifier (e.g., "spotify").
	Name() string
}

// MatchingProvider finds equivalent links on other platforms for a primary
// platform URL. It matches by URL, never by title/artist text.
type MatchingProvider interface {
	// MatchByURL performs exactly one lookup. A provider that knows the URL
	// but found no equivalents returns an empty match and a nil error.
	MatchByURL(ctx context.Context, url string, contentType domain.ContentType) (domain.ProviderMatch, error)

	// Name returns the provider identifier (e.g., "songlink").
	Name() string
}

// BoosterService defines the driving port used by the HTTP layer.
type BoosterService interface {
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error)
	Match(ctx context.Context, id string, contentType domain.ContentType) (*domain.MatchResult, error)
	MatchBatch(ctx context.Context, reqs []domain.MatchRequest) *domain.BatchMatchResponse
	Landing(ctx context.Context, id string, contentType domain.ContentType) (*domain.LandingPage, error)
	PreviewCard(ctx context.Context, id string, contentType domain.ContentType) (*domain.PreviewCard, error)
	Health(ctx context.Context) *domain.HealthReport
}
