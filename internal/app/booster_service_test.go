package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpp0ca/MusicBooster-API/internal/adapters"
	"github.com/jpp0ca/MusicBooster-API/internal/core"
	"github.com/jpp0ca/MusicBooster-API/internal/domain"
	"github.com/jpp0ca/MusicBooster-API/internal/ports"
)

// -- Mock providers ----------------------------------------------------------

type mockCatalog struct {
	records      map[string]domain.RawRecord
	searchResult []domain.RawRecord
	pingErr      error

	// hang makes Lookup block until its context ends; released counts
	// lookups that observed that end.
	hang bool

	mu          sync.Mutex
	lookupCount int
	released    int
}

func (m *mockCatalog) Name() string { return "spotify" }

func (m *mockCatalog) Lookup(ctx context.Context, id string, ct domain.ContentType) (domain.RawRecord, error) {
	m.mu.Lock()
	m.lookupCount++
	m.mu.Unlock()

	if m.hang {
		<-ctx.Done()
		m.mu.Lock()
		m.released++
		m.mu.Unlock()
		return nil, ctx.Err()
	}

	rec, ok := m.records[string(ct)+":"+id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

func (m *mockCatalog) Search(_ context.Context, _ string, _ int) ([]domain.RawRecord, error) {
	return m.searchResult, nil
}

func (m *mockCatalog) Ping(_ context.Context) error { return m.pingErr }

func (m *mockCatalog) lookups() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookupCount
}

func (m *mockCatalog) releases() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.released
}

type mockMatcher struct {
	match domain.ProviderMatch
	err   error
	delay time.Duration
	state string

	mu    sync.Mutex
	calls int
}

func (m *mockMatcher) Name() string { return "songlink" }

func (m *mockMatcher) MatchByURL(ctx context.Context, _ string, _ domain.ContentType) (domain.ProviderMatch, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return domain.ProviderMatch{}, ctx.Err()
		}
	}
	return m.match, m.err
}

func (m *mockMatcher) BreakerState() string {
	if m.state == "" {
		return "closed"
	}
	return m.state
}

func (m *mockMatcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// -- Fixtures ----------------------------------------------------------------

func trackRecord(id, name, artist string, durationMS int) domain.RawRecord {
	return domain.RawRecord{
		"id":          id,
		"type":        "track",
		"name":        name,
		"duration_ms": durationMS,
		"preview_url": "https://p.scdn.co/mp3-preview/" + id,
		"artists":     []any{map[string]any{"name": artist}},
		"album": map[string]any{
			"name":   name + " (Single)",
			"images": []any{map[string]any{"url": "https://i.scdn.co/image/" + id, "width": 640, "height": 640}},
		},
		"external_urls": map[string]any{"spotify": "https://open.spotify.com/track/" + id},
	}
}

func albumRecord(id, name, artist string) domain.RawRecord {
	return domain.RawRecord{
		"id":            id,
		"type":          "album",
		"name":          name,
		"artists":       []any{map[string]any{"name": artist}},
		"total_tracks":  10,
		"release_date":  "2020-03-20",
		"external_urls": map[string]any{"spotify": "https://open.spotify.com/album/" + id},
	}
}

func fullMatch() domain.ProviderMatch {
	return domain.ProviderMatch{
		Links: map[string]domain.ProviderLink{
			"spotify":      {URL: "https://open.spotify.com/track/t1"},
			"appleMusic":   {URL: "https://music.apple.com/us/album/x/1?i=2"},
			"youtubeMusic": {URL: "https://music.youtube.com/watch?v=abc", NativeAppURI: "vnd.youtube.music://abc"},
			"deezer":       {URL: "https://www.deezer.com/track/42"},
		},
		PageURL: "https://song.link/s/t1",
	}
}

func newTestService(catalog *mockCatalog, matcher *mockMatcher, opts Options) *Service {
	registry := adapters.NewCatalogRegistry()
	registry.Register(catalog)

	cfg := core.DefaultResolverConfig()
	cfg.Timeout = 200 * time.Millisecond

	var matching ports.MatchingProvider
	if matcher != nil {
		matching = matcher
		opts.Matching = matcher
	}
	resolver := core.NewResolver(matching, cfg, zerolog.Nop())
	return NewService(registry, core.NewNormalizer(core.DefaultNormalizerConfig()), resolver, opts)
}

// -- Tests -------------------------------------------------------------------

func TestMatch_ResolvesAcrossPlatforms(t *testing.T) {
	catalog := &mockCatalog{records: map[string]domain.RawRecord{
		"track:t1": trackRecord("t1", "Blinding Lights", "The Weeknd", 200040),
	}}
	svc := newTestService(catalog, &mockMatcher{match: fullMatch()}, Options{})

	result, err := svc.Match(context.Background(), "t1", domain.ContentTypeTrack)
	require.NoError(t, err)

	assert.Equal(t, "Blinding Lights", result.Metadata.Title)
	assert.Equal(t, []domain.Platform{
		domain.PlatformSpotify, domain.PlatformAppleMusic, domain.PlatformYouTubeMusic, domain.PlatformDeezer,
	}, result.Links.Platforms())
	assert.Equal(t, domain.StatusPartial, result.ResolutionStatus)
	assert.Equal(t, "https://song.link/s/t1", result.PageURL)
	assert.False(t, result.Degraded())
}

func TestMatch_NotFound(t *testing.T) {
	svc := newTestService(&mockCatalog{}, &mockMatcher{}, Options{})

	_, err := svc.Match(context.Background(), "missing", domain.ContentTypeTrack)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMatch_MalformedRecord(t *testing.T) {
	catalog := &mockCatalog{records: map[string]domain.RawRecord{
		"track:bad": {"id": "bad", "type": "track"},
	}}
	svc := newTestService(catalog, &mockMatcher{}, Options{})

	_, err := svc.Match(context.Background(), "bad", domain.ContentTypeTrack)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedMetadata)

	var mErr *domain.MalformedMetadataError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, []string{"title", "artist"}, mErr.Missing)
}

func TestMatch_CachesSuccessfulResults(t *testing.T) {
	catalog := &mockCatalog{records: map[string]domain.RawRecord{
		"track:t1": trackRecord("t1", "Blinding Lights", "The Weeknd", 200040),
	}}
	matcher := &mockMatcher{match: fullMatch()}
	svc := newTestService(catalog, matcher, Options{})

	for i := 0; i < 3; i++ {
		_, err := svc.Match(context.Background(), "t1", domain.ContentTypeTrack)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, catalog.lookups())
	assert.Equal(t, 1, matcher.callCount())
}

func TestMatch_DegradedResultsAreNotCached(t *testing.T) {
	catalog := &mockCatalog{records: map[string]domain.RawRecord{
		"track:t1": trackRecord("t1", "Blinding Lights", "The Weeknd", 200040),
	}}
	matcher := &mockMatcher{err: &domain.ProviderTransportError{Provider: "songlink", StatusCode: 503, Err: errors.New("unavailable")}}
	svc := newTestService(catalog, matcher, Options{})

	for i := 0; i < 2; i++ {
		result, err := svc.Match(context.Background(), "t1", domain.ContentTypeTrack)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPrimaryOnly, result.ResolutionStatus)
		assert.Equal(t, domain.DegradationProviderError, result.Degradation)
		assert.Equal(t, 1, result.Links.Len())
	}

	assert.Equal(t, 2, matcher.callCount())
}

func TestMatch_CacheDisabled(t *testing.T) {
	catalog := &mockCatalog{records: map[string]domain.RawRecord{
		"track:t1": trackRecord("t1", "Blinding Lights", "The Weeknd", 200040),
	}}
	matcher := &mockMatcher{match: fullMatch()}
	svc := newTestService(catalog, matcher, Options{CacheSize: -1})

	for i := 0; i < 2; i++ {
		_, err := svc.Match(context.Background(), "t1", domain.ContentTypeTrack)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, matcher.callCount())
}

func TestMatch_ConcurrentRequestsCoalesce(t *testing.T) {
	catalog := &mockCatalog{records: map[string]domain.RawRecord{
		"track:t1": trackRecord("t1", "Blinding Lights", "The Weeknd", 200040),
	}}
	matcher := &mockMatcher{match: fullMatch(), delay: 50 * time.Millisecond}
	svc := newTestService(catalog, matcher, Options{CacheSize: -1})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Match(context.Background(), "t1", domain.ContentTypeTrack)
			assert.NoError(t, err)
			assert.Equal(t, domain.StatusPartial, result.ResolutionStatus)
		}()
	}
	wg.Wait()

	assert.Less(t, matcher.callCount(), 8)
}

func TestMatch_CallerCancelled(t *testing.T) {
	catalog := &mockCatalog{records: map[string]domain.RawRecord{
		"track:t1": trackRecord("t1", "Blinding Lights", "The Weeknd", 200040),
	}}
	svc := newTestService(catalog, &mockMatcher{match: fullMatch(), delay: 100 * time.Millisecond}, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := svc.Match(ctx, "t1", domain.ContentTypeTrack)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMatch_HungLookupIsBounded(t *testing.T) {
	catalog := &mockCatalog{hang: true}
	svc := newTestService(catalog, &mockMatcher{match: fullMatch()}, Options{LookupTimeout: 100 * time.Millisecond})

	first, cancelFirst := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelFirst()
	_, err := svc.Match(first, "t1", domain.ContentTypeTrack)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Eventually(t, func() bool { return catalog.releases() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	// The abandoned flight is gone, so the next caller starts a fresh one
	// and gets the lookup failure rather than its own deadline.
	_, err = svc.Match(context.Background(), "t1", domain.ContentTypeTrack)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 2, catalog.lookups())
	assert.Equal(t, 2, catalog.releases())
}

func TestFlightBudget(t *testing.T) {
	svc := newTestService(&mockCatalog{}, &mockMatcher{}, Options{LookupTimeout: 100 * time.Millisecond})
	assert.Equal(t, 300*time.Millisecond, svc.flightBudget())

	registry := adapters.NewCatalogRegistry()
	registry.Register(&mockCatalog{})
	cfg := core.DefaultResolverConfig()
	cfg.Timeout = 0
	unbounded := NewService(registry, core.NewNormalizer(core.DefaultNormalizerConfig()),
		core.NewResolver(nil, cfg, zerolog.Nop()), Options{LookupTimeout: 100 * time.Millisecond})
	assert.Equal(t, 200*time.Millisecond, unbounded.flightBudget())

	defaults := NewService(registry, core.NewNormalizer(core.DefaultNormalizerConfig()),
		core.NewResolver(nil, core.DefaultResolverConfig(), zerolog.Nop()), Options{})
	assert.Equal(t, 20*time.Second, defaults.flightBudget())
}

func TestMatchBatch_PreservesOrderAndReportsErrors(t *testing.T) {
	catalog := &mockCatalog{records: map[string]domain.RawRecord{}}
	var reqs []domain.MatchRequest
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("t%d", i)
		catalog.records["track:"+id] = trackRecord(id, "Song "+id, "Artist", 180000)
		reqs = append(reqs, domain.MatchRequest{ID: id})
	}
	reqs = append(reqs,
		domain.MatchRequest{ID: "missing", ContentType: domain.ContentTypeTrack},
		domain.MatchRequest{ID: "t1", ContentType: "playlist"},
	)

	svc := newTestService(catalog, &mockMatcher{match: fullMatch()}, Options{Workers: 3})
	resp := svc.MatchBatch(context.Background(), reqs)

	assert.Equal(t, 12, resp.Total)
	assert.Equal(t, 10, resp.Resolved)
	assert.Equal(t, 2, resp.Failed)
	require.Len(t, resp.Items, 12)

	for i := 0; i < 10; i++ {
		item := resp.Items[i]
		require.NotNil(t, item.Result, "item %d", i)
		assert.Equal(t, fmt.Sprintf("t%d", i), item.Result.Metadata.CanonicalID)
		assert.Equal(t, domain.ContentTypeTrack, item.Request.ContentType)
	}
	assert.Contains(t, resp.Items[10].Error, "not found")
	assert.Contains(t, resp.Items[11].Error, "invalid content type")
}

func TestMatchBatch_CancelledContext(t *testing.T) {
	catalog := &mockCatalog{records: map[string]domain.RawRecord{
		"track:t1": trackRecord("t1", "Song", "Artist", 180000),
	}}
	svc := newTestService(catalog, &mockMatcher{match: fullMatch()}, Options{Workers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := svc.MatchBatch(ctx, []domain.MatchRequest{{ID: "t1"}, {ID: "t1"}})
	assert.Equal(t, 0, resp.Resolved)
	assert.Equal(t, 2, resp.Failed)
	assert.Equal(t, "context cancelled", resp.Items[0].Error)
}

func TestMatchBatch_Empty(t *testing.T) {
	svc := newTestService(&mockCatalog{}, &mockMatcher{}, Options{Workers: 4})

	resp := svc.MatchBatch(context.Background(), nil)
	assert.Equal(t, 0, resp.Total)
	assert.Empty(t, resp.Items)
}

func TestSearch_RanksByRelevance(t *testing.T) {
	catalog := &mockCatalog{searchResult: []domain.RawRecord{
		trackRecord("a", "Save Your Tears", "The Weeknd", 215000),
		trackRecord("b", "Blinding Lights", "The Weeknd", 200040),
		albumRecord("c", "After Hours", "The Weeknd"),
		{"id": "broken", "type": "track"},
	}}
	svc := newTestService(catalog, nil, Options{})

	resp, err := svc.Search(context.Background(), domain.SearchRequest{Query: "blinding lights"})
	require.NoError(t, err)

	assert.Equal(t, "blinding lights", resp.Query)
	assert.Equal(t, 3, resp.TotalResults)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "b", resp.Results[0].CanonicalID)
	for i := 1; i < len(resp.Results); i++ {
		assert.GreaterOrEqual(t, resp.Results[i-1].Relevance, resp.Results[i].Relevance)
	}
}

func TestSearch_AppliesLimit(t *testing.T) {
	var records []domain.RawRecord
	for i := 0; i < 6; i++ {
		records = append(records, trackRecord(fmt.Sprintf("t%d", i), "Song", "Artist", 1000))
	}
	svc := newTestService(&mockCatalog{searchResult: records}, nil, Options{})

	resp, err := svc.Search(context.Background(), domain.SearchRequest{Query: "song", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)
}

func TestSearch_BlankQuery(t *testing.T) {
	svc := newTestService(&mockCatalog{}, nil, Options{})

	_, err := svc.Search(context.Background(), domain.SearchRequest{Query: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestLanding(t *testing.T) {
	catalog := &mockCatalog{records: map[string]domain.RawRecord{
		"track:t1": trackRecord("t1", "Blinding Lights", "The Weeknd", 200040),
	}}
	svc := newTestService(catalog, &mockMatcher{match: fullMatch()}, Options{})

	page, err := svc.Landing(context.Background(), "t1", domain.ContentTypeTrack)
	require.NoError(t, err)

	assert.Equal(t, "t1", page.CanonicalID)
	assert.Equal(t, "https://i.scdn.co/image/t1", page.ThumbnailLarge)
	assert.Equal(t, "https://song.link/s/t1", page.PageURL)
	assert.Equal(t, 4, page.Platforms.Len())
	assert.Equal(t, domain.StatusPartial, page.ResolutionStatus)
}

func TestLanding_PageURLFallback(t *testing.T) {
	catalog := &mockCatalog{records: map[string]domain.RawRecord{
		"album:al1": albumRecord("al1", "After Hours", "The Weeknd"),
	}}
	svc := newTestService(catalog, nil, Options{})

	page, err := svc.Landing(context.Background(), "al1", domain.ContentTypeAlbum)
	require.NoError(t, err)
	assert.Equal(t, "https://song.link/https://open.spotify.com/album/al1", page.PageURL)
	assert.Equal(t, domain.StatusPrimaryOnly, page.ResolutionStatus)
}

func TestPreviewCard(t *testing.T) {
	catalog := &mockCatalog{records: map[string]domain.RawRecord{
		"track:t1": trackRecord("t1", "Blinding Lights", "The Weeknd", 200040),
	}}
	svc := newTestService(catalog, &mockMatcher{match: fullMatch()}, Options{})

	card, err := svc.PreviewCard(context.Background(), "t1", domain.ContentTypeTrack)
	require.NoError(t, err)

	assert.Equal(t, "3:20", card.Duration)
	assert.Equal(t, map[string]string{
		"spotify":       "https://open.spotify.com/track/t1",
		"apple_music":   "https://music.apple.com/us/album/x/1?i=2",
		"youtube_music": "https://music.youtube.com/watch?v=abc",
		"deezer":        "https://www.deezer.com/track/42",
	}, card.QuickLinks)
	assert.Equal(t, "spotify:track:t1", card.DeepLinks["spotify_app"])
	assert.Equal(t, "music://music.apple.com/us/album/x/1?i=2", card.DeepLinks["apple_music_app"])
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		pingErr  error
		state    string
		status   string
		services map[string]string
	}{
		{"all up", nil, "closed", "healthy", map[string]string{"spotify": "up", "songlink": "up"}},
		{"catalog down", errors.New("401"), "closed", "degraded", map[string]string{"spotify": "down", "songlink": "up"}},
		{"breaker open", nil, "open", "degraded", map[string]string{"spotify": "up", "songlink": "down"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&mockCatalog{pingErr: tt.pingErr}, &mockMatcher{state: tt.state}, Options{})

			report := svc.Health(context.Background())
			assert.Equal(t, tt.status, report.Status)
			assert.Equal(t, tt.services, report.Services)
			assert.NotZero(t, report.Timestamp)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "", formatDuration(0))
	assert.Equal(t, "0:59", formatDuration(59999))
	assert.Equal(t, "3:20", formatDuration(200040))
	assert.Equal(t, "61:01", formatDuration(3661000))
}
