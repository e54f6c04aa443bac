package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jpp0ca/MusicBooster-API/internal/adapters"
	"github.com/jpp0ca/MusicBooster-API/internal/core"
	"github.com/jpp0ca/MusicBooster-API/internal/domain"
	"github.com/jpp0ca/MusicBooster-API/internal/logging"
	"github.com/jpp0ca/MusicBooster-API/internal/metrics"
	"github.com/jpp0ca/MusicBooster-API/internal/ports"
)

const (
	defaultSearchLimit   = 10
	defaultLookupTimeout = 10 * time.Second
	songLinkPageBase     = "https://song.link/"
)

// Options tunes the service. Zero values take defaults.
type Options struct {
	// Catalog is the registry name of the primary catalog provider.
	Catalog string

	// Matching is consulted for health only; resolution goes through the
	// resolver. It may be nil.
	Matching ports.MatchingProvider

	// Workers bounds MatchBatch concurrency.
	Workers int

	// CacheSize and CacheTTL size the match cache. A negative CacheSize
	// disables caching.
	CacheSize int
	CacheTTL  time.Duration

	// LookupTimeout bounds each primary catalog lookup.
	LookupTimeout time.Duration
}

// breakerReporter is implemented by matching providers guarded by a circuit
// breaker.
type breakerReporter interface {
	BreakerState() string
}

// Service implements ports.BoosterService. Batch resolution uses a worker
// pool; single matches are cached and coalesced per (content type, id).
type Service struct {
	registry   *adapters.CatalogRegistry
	normalizer *core.Normalizer
	resolver   *core.Resolver
	opts       Options
	cache      *expirable.LRU[string, domain.MatchResult]
	flights    singleflight.Group
	logger     zerolog.Logger
}

// NewService creates a booster service.
func NewService(registry *adapters.CatalogRegistry, normalizer *core.Normalizer, resolver *core.Resolver, opts Options) *Service {
	if opts.Catalog == "" {
		opts.Catalog = "spotify"
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.CacheSize == 0 {
		opts.CacheSize = 512
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 15 * time.Minute
	}
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = defaultLookupTimeout
	}

	s := &Service{
		registry:   registry,
		normalizer: normalizer,
		resolver:   resolver,
		opts:       opts,
		logger:     logging.Component("booster"),
	}
	if opts.CacheSize > 0 {
		s.cache = expirable.NewLRU[string, domain.MatchResult](opts.CacheSize, nil, opts.CacheTTL)
	}
	return s
}

// Search ranks catalog candidates for a free-text query.
func (s *Service) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be blank", domain.ErrInvalidQuery)
	}
	limit := req.Limit
	if limit < 1 {
		limit = defaultSearchLimit
	}

	catalog, err := s.registry.Get(s.opts.Catalog)
	if err != nil {
		return nil, err
	}

	raws, err := catalog.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(raws))
	for _, raw := range raws {
		md, err := s.normalizer.Normalize(raw)
		if err != nil {
			s.logger.Warn().Err(err).Str("query", query).Msg("[booster] skipping search candidate")
			continue
		}
		results = append(results, domain.SearchResult{
			TrackMetadata: md,
			Relevance:     relevance(query, md.Title, primaryArtist(md.Artist)),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
	if len(results) > limit {
		results = results[:limit]
	}

	s.logger.Debug().Str("query", query).Int("candidates", len(raws)).Int("results", len(results)).Msg("[booster] search complete")

	return &domain.SearchResponse{
		Query:        query,
		TotalResults: len(results),
		Results:      results,
	}, nil
}

// Match resolves one catalog item across platforms.
func (s *Service) Match(ctx context.Context, id string, contentType domain.ContentType) (*domain.MatchResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: missing id", domain.ErrNotFound)
	}
	key := string(contentType) + ":" + id

	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			metrics.MatchCache.WithLabelValues("hit").Inc()
			return &cached, nil
		}
		metrics.MatchCache.WithLabelValues("miss").Inc()
	}

	// The shared flight outlives any single caller but not its own budget.
	flightCtx := logging.WithContext(context.WithoutCancel(ctx), *logging.Ctx(ctx))
	ch := s.flights.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(flightCtx, s.flightBudget())
		defer cancel()
		return s.resolve(fctx, key, id, contentType)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		result := res.Val.(domain.MatchResult)
		return &result, nil
	}
}

// flightBudget covers one catalog lookup plus one matching call. A resolver
// without its own timeout gets another lookup budget.
func (s *Service) flightBudget() time.Duration {
	matching := s.resolver.Config().Timeout
	if matching <= 0 {
		matching = s.opts.LookupTimeout
	}
	return s.opts.LookupTimeout + matching
}

func (s *Service) resolve(ctx context.Context, key, id string, contentType domain.ContentType) (domain.MatchResult, error) {
	md, err := s.metadata(ctx, id, contentType)
	if err != nil {
		return domain.MatchResult{}, err
	}

	result := s.resolver.Resolve(ctx, md)
	metrics.Resolutions.WithLabelValues(string(result.ResolutionStatus)).Inc()

	if result.Degraded() {
		metrics.Degradations.WithLabelValues(string(result.Degradation)).Inc()
		s.logger.Warn().Str("key", key).Str("reason", string(result.Degradation)).Msg("[booster] degraded resolution")
	} else if s.cache != nil && result.ResolutionStatus != domain.StatusFailed {
		s.cache.Add(key, result)
	}

	s.logger.Info().
		Str("key", key).
		Str("status", string(result.ResolutionStatus)).
		Int("platforms", result.ResolvedPlatformCount).
		Float64("confidence", result.ConfidenceScore).
		Msg("[booster] resolved")
	return result, nil
}

func (s *Service) metadata(ctx context.Context, id string, contentType domain.ContentType) (domain.TrackMetadata, error) {
	catalog, err := s.registry.Get(s.opts.Catalog)
	if err != nil {
		return domain.TrackMetadata{}, err
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.opts.LookupTimeout)
	defer cancel()
	raw, err := catalog.Lookup(lookupCtx, id, contentType)
	if err != nil {
		return domain.TrackMetadata{}, fmt.Errorf("failed to look up %s %s: %w", contentType, id, err)
	}

	md, err := s.normalizer.Normalize(raw)
	if err != nil {
		return domain.TrackMetadata{}, fmt.Errorf("%s %s: %w", contentType, id, err)
	}
	return md, nil
}

// MatchBatch resolves many items concurrently with a bounded worker pool.
// Items are returned in request order; per-item failures do not abort the batch.
func (s *Service) MatchBatch(ctx context.Context, reqs []domain.MatchRequest) *domain.BatchMatchResponse {
	type job struct {
		index int
		req   domain.MatchRequest
	}

	jobCh := make(chan job, len(reqs))
	items := make([]domain.BatchItem, len(reqs))

	var wg sync.WaitGroup
	for i := 0; i < min(s.opts.Workers, len(reqs)); i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := range jobCh {
				// Each worker writes only its own index.
				items[j.index] = s.matchItem(ctx, workerID, j.req)
			}
		}(i)
	}

	for i, req := range reqs {
		jobCh <- job{index: i, req: req}
	}
	close(jobCh)
	wg.Wait()

	resp := &domain.BatchMatchResponse{Total: len(items), Items: items}
	for i := range items {
		if items[i].Result != nil {
			resp.Resolved++
		} else {
			resp.Failed++
		}
	}

	s.logger.Info().Int("total", resp.Total).Int("resolved", resp.Resolved).Int("failed", resp.Failed).Msg("[booster] batch complete")
	return resp
}

func (s *Service) matchItem(ctx context.Context, workerID int, req domain.MatchRequest) domain.BatchItem {
	item := domain.BatchItem{Request: req}

	if err := ctx.Err(); err != nil {
		item.Error = "context cancelled"
		return item
	}

	contentType, err := domain.ParseContentType(string(req.ContentType))
	if err != nil {
		item.Error = err.Error()
		return item
	}
	item.Request.ContentType = contentType

	result, err := s.Match(ctx, req.ID, contentType)
	if err != nil {
		item.Error = err.Error()
		s.logger.Warn().Err(err).Int("worker", workerID).Str("id", req.ID).Msg("[booster] batch item failed")
		return item
	}
	item.Result = result
	return item
}

// Landing assembles the landing page payload for one item.
func (s *Service) Landing(ctx context.Context, id string, contentType domain.ContentType) (*domain.LandingPage, error) {
	result, err := s.Match(ctx, id, contentType)
	if err != nil {
		return nil, err
	}

	md := result.Metadata
	pageURL := result.PageURL
	if pageURL == "" {
		pageURL = songLinkPageBase + md.PrimaryPlatformURL
	}

	return &domain.LandingPage{
		CanonicalID:      md.CanonicalID,
		ContentType:      md.ContentType,
		Title:            md.Title,
		Artist:           md.Artist,
		Album:            md.Album,
		ThumbnailSmall:   md.CoverImageURL,
		ThumbnailMedium:  md.CoverImageURL,
		ThumbnailLarge:   md.CoverImageURL,
		Platforms:        result.Links,
		PageURL:          pageURL,
		DurationMS:       md.DurationMS,
		ISRC:             md.ISRC,
		ReleaseDate:      md.ReleaseDate,
		Popularity:       md.Popularity,
		PreviewURL:       md.PreviewURL,
		ConfidenceScore:  result.ConfidenceScore,
		ResolutionStatus: result.ResolutionStatus,
	}, nil
}

var (
	quickLinkPlatforms = []domain.Platform{
		domain.PlatformSpotify,
		domain.PlatformAppleMusic,
		domain.PlatformYouTubeMusic,
		domain.PlatformDeezer,
	}
	appLinkPlatforms = []domain.Platform{
		domain.PlatformSpotify,
		domain.PlatformAppleMusic,
	}
)

// PreviewCard assembles the compact card payload for one item.
func (s *Service) PreviewCard(ctx context.Context, id string, contentType domain.ContentType) (*domain.PreviewCard, error) {
	result, err := s.Match(ctx, id, contentType)
	if err != nil {
		return nil, err
	}

	md := result.Metadata
	card := &domain.PreviewCard{
		Title:      md.Title,
		Artist:     md.Artist,
		Album:      md.Album,
		CoverArt:   md.CoverImageURL,
		Duration:   formatDuration(md.DurationMS),
		PreviewURL: md.PreviewURL,
		QuickLinks: make(map[string]string),
		DeepLinks:  make(map[string]string),
	}
	for _, p := range quickLinkPlatforms {
		if link, ok := result.Links.Get(p); ok {
			card.QuickLinks[string(p)] = link.WebURL
		}
	}
	for _, p := range appLinkPlatforms {
		if link, ok := result.Links.Get(p); ok && link.DeepLinkURI != "" {
			card.DeepLinks[string(p)+"_app"] = link.DeepLinkURI
		}
	}
	return card, nil
}

// Health reports the reachability of the catalog and matching providers.
func (s *Service) Health(ctx context.Context) *domain.HealthReport {
	report := &domain.HealthReport{
		Status:    "healthy",
		Timestamp: time.Now().Unix(),
		Services:  make(map[string]string),
	}

	catalog, err := s.registry.Get(s.opts.Catalog)
	switch {
	case err != nil:
		report.Services[s.opts.Catalog] = "down"
	case catalog.Ping(ctx) != nil:
		report.Services[catalog.Name()] = "down"
	default:
		report.Services[catalog.Name()] = "up"
	}

	if s.opts.Matching != nil {
		state := "up"
		if br, ok := s.opts.Matching.(breakerReporter); ok && br.BreakerState() == "open" {
			state = "down"
		}
		report.Services[s.opts.Matching.Name()] = state
	}

	for _, state := range report.Services {
		if state != "up" {
			report.Status = "degraded"
		}
	}
	return report
}

// formatDuration renders milliseconds as m:ss. Zero yields "".
func formatDuration(ms int64) string {
	if ms <= 0 {
		return ""
	}
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

var _ ports.BoosterService = (*Service)(nil)

