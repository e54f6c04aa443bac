package core

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpp0ca/MusicBooster-API/internal/domain"
)

// -- Mock matching provider --------------------------------------------------

type fakeMatcher struct {
	match domain.ProviderMatch
	err   error
	delay time.Duration

	mu     sync.Mutex
	calls  int
	gotURL string
}

func (f *fakeMatcher) Name() string { return "fake" }

func (f *fakeMatcher) MatchByURL(ctx context.Context, url string, _ domain.ContentType) (domain.ProviderMatch, error) {
	f.mu.Lock()
	f.calls++
	f.gotURL = url
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return domain.ProviderMatch{}, ctx.Err()
		}
	}
	return f.match, f.err
}

func links(pairs ...string) map[string]domain.ProviderLink {
	out := make(map[string]domain.ProviderLink, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out[pairs[i]] = domain.ProviderLink{URL: pairs[i+1]}
	}
	return out
}

// -- Helpers -----------------------------------------------------------------

func exampleMetadata() domain.TrackMetadata {
	return domain.TrackMetadata{
		CanonicalID:        "abc123",
		ContentType:        domain.ContentTypeTrack,
		Title:              "Song",
		Artist:             "Artist",
		PrimaryPlatformURL: "https://primary.example/track/abc123",
	}
}

func newTestResolver(m *fakeMatcher) *Resolver {
	return NewResolver(m, DefaultResolverConfig(), zerolog.Nop())
}

// -- Tests -------------------------------------------------------------------

func TestResolve_PartialMatch(t *testing.T) {
	m := &fakeMatcher{match: domain.ProviderMatch{Links: links(
		"deezer", "https://deezer.com/track/999",
		"apple_music", "https://music.apple.com/us/album/song/111?i=222",
	)}}

	res := newTestResolver(m).Resolve(context.Background(), exampleMetadata())

	assert.Equal(t, []domain.Platform{
		domain.PlatformSpotify, domain.PlatformAppleMusic, domain.PlatformDeezer,
	}, res.Links.Platforms())
	assert.Equal(t, 3, res.ResolvedPlatformCount)
	assert.Equal(t, domain.StatusPartial, res.ResolutionStatus)
	assert.InDelta(t, 0.5+2*0.08, res.ConfidenceScore, 1e-9)
	assert.False(t, res.Degraded())

	apple, ok := res.Links.Get(domain.PlatformAppleMusic)
	require.True(t, ok)
	assert.Equal(t, "https://music.apple.com/us/album/song/111?i=222", apple.WebURL)
	assert.Equal(t, "music://music.apple.com/us/album/song/111?i=222", apple.DeepLinkURI)

	deezer, ok := res.Links.Get(domain.PlatformDeezer)
	require.True(t, ok)
	assert.Equal(t, "https://deezer.com/track/999", deezer.WebURL)
	assert.Empty(t, deezer.DeepLinkURI)

	primary, ok := res.Links.Get(domain.PlatformSpotify)
	require.True(t, ok)
	assert.Equal(t, "https://primary.example/track/abc123", primary.WebURL)
	assert.Equal(t, "https://primary.example/track/abc123", m.gotURL)
	assert.Equal(t, 1, m.calls)
}

func TestResolve_FullMatch(t *testing.T) {
	m := &fakeMatcher{match: domain.ProviderMatch{
		PageURL: "https://song.link/s/abc",
		Links: links(
			"soundcloud", "https://soundcloud.com/a/b",
			"tidal", "https://listen.tidal.com/track/1",
			"amazonMusic", "https://music.amazon.com/albums/B1?trackAsin=B2",
			"deezer", "https://www.deezer.com/track/1",
			"youtubeMusic", "https://music.youtube.com/watch?v=x",
			"appleMusic", "https://music.apple.com/us/song/x/1",
		),
	}}

	res := newTestResolver(m).Resolve(context.Background(), exampleMetadata())

	assert.Equal(t, domain.StatusFull, res.ResolutionStatus)
	assert.Equal(t, 7, res.Links.Len())
	assert.Equal(t, append([]domain.Platform{domain.PlatformSpotify}, domain.DefaultTargetPlatforms...), res.Links.Platforms())
	assert.InDelta(t, 0.98, res.ConfidenceScore, 1e-9)
	assert.Equal(t, "https://song.link/s/abc", res.PageURL)
}

func TestResolve_ProviderScoreTakesPrecedence(t *testing.T) {
	m := &fakeMatcher{match: domain.ProviderMatch{
		Links:      links("deezer", "https://deezer.com/track/999"),
		Confidence: domain.Score(0.42),
	}}

	res := newTestResolver(m).Resolve(context.Background(), exampleMetadata())

	assert.Equal(t, 0.42, res.ConfidenceScore)
	assert.Equal(t, domain.StatusPartial, res.ResolutionStatus)
}

func TestResolve_ProviderScoreWithoutLinks(t *testing.T) {
	m := &fakeMatcher{match: domain.ProviderMatch{Confidence: domain.Score(0.9)}}

	res := newTestResolver(m).Resolve(context.Background(), exampleMetadata())

	assert.Equal(t, 0.9, res.ConfidenceScore)
	assert.Equal(t, domain.StatusPrimaryOnly, res.ResolutionStatus)
}

func TestResolve_ProviderScoreEdgeValues(t *testing.T) {
	tests := []struct {
		name  string
		score domain.ProviderScore
		want  float64
	}{
		{name: "NaN falls back to heuristic", score: domain.Score(math.NaN()), want: 0.58},
		{name: "above one is clamped", score: domain.Score(1.7), want: 1.0},
		{name: "negative is clamped", score: domain.Score(-0.2), want: 0.0},
		{name: "absent uses heuristic", score: domain.ProviderScore{}, want: 0.58},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeMatcher{match: domain.ProviderMatch{
				Links:      links("deezer", "https://deezer.com/track/999"),
				Confidence: tt.score,
			}}
			res := newTestResolver(m).Resolve(context.Background(), exampleMetadata())
			assert.InDelta(t, tt.want, res.ConfidenceScore, 1e-9)
		})
	}
}

func TestResolve_Timeout(t *testing.T) {
	m := &fakeMatcher{delay: time.Second}
	cfg := DefaultResolverConfig()
	cfg.Timeout = 20 * time.Millisecond
	cfg.ScoreFloor = 0.1

	start := time.Now()
	res := NewResolver(m, cfg, zerolog.Nop()).Resolve(context.Background(), exampleMetadata())

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, domain.StatusPrimaryOnly, res.ResolutionStatus)
	assert.Equal(t, []domain.Platform{domain.PlatformSpotify}, res.Links.Platforms())
	assert.Equal(t, 0.1, res.ConfidenceScore)
	assert.Equal(t, domain.DegradationTimeout, res.Degradation)
}

func TestResolve_TransportError(t *testing.T) {
	m := &fakeMatcher{err: &domain.ProviderTransportError{Provider: "fake", StatusCode: 502, Err: errors.New("bad gateway")}}

	res := newTestResolver(m).Resolve(context.Background(), exampleMetadata())

	assert.Equal(t, domain.StatusPrimaryOnly, res.ResolutionStatus)
	assert.Equal(t, 1, res.Links.Len())
	assert.Equal(t, 0.0, res.ConfidenceScore)
	assert.Equal(t, domain.DegradationProviderError, res.Degradation)
	assert.Empty(t, res.PageURL)
}

func TestResolve_ProviderTimeoutSentinel(t *testing.T) {
	m := &fakeMatcher{err: &domain.ProviderTransportError{Provider: "fake", Err: domain.ErrProviderTimeout}}

	res := newTestResolver(m).Resolve(context.Background(), exampleMetadata())

	assert.Equal(t, domain.DegradationTimeout, res.Degradation)
}

func TestResolve_CallerCancelled(t *testing.T) {
	m := &fakeMatcher{delay: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	res := newTestResolver(m).Resolve(ctx, exampleMetadata())

	assert.Equal(t, domain.StatusPrimaryOnly, res.ResolutionStatus)
	assert.Equal(t, domain.DegradationCancelled, res.Degradation)
	assert.Equal(t, 1, res.Links.Len())
}

func TestResolve_UnknownTagsAndBadURLsIgnored(t *testing.T) {
	m := &fakeMatcher{match: domain.ProviderMatch{Links: links(
		"napster", "https://napster.com/track/1",
		"yandex", "https://music.yandex.ru/track/1",
		"deezer", "not a url",
		"tidal", "ftp://listen.tidal.com/track/1",
		"appleMusic", "https://music.apple.com/us/song/x/1",
	)}}

	res := newTestResolver(m).Resolve(context.Background(), exampleMetadata())

	assert.Equal(t, []domain.Platform{domain.PlatformSpotify, domain.PlatformAppleMusic}, res.Links.Platforms())
	assert.Equal(t, domain.StatusPartial, res.ResolutionStatus)
}

func TestResolve_ProviderReturnedNothing(t *testing.T) {
	m := &fakeMatcher{match: domain.ProviderMatch{}}

	res := newTestResolver(m).Resolve(context.Background(), exampleMetadata())

	assert.Equal(t, domain.StatusPrimaryOnly, res.ResolutionStatus)
	assert.Equal(t, 0.0, res.ConfidenceScore)
	assert.False(t, res.Degraded())
}

func TestResolve_ProviderNativeURIForUntemplatedPlatform(t *testing.T) {
	m := &fakeMatcher{match: domain.ProviderMatch{Links: map[string]domain.ProviderLink{
		"deezer":     {URL: "https://www.deezer.com/track/1", NativeAppURI: "deezer://www.deezer.com/track/1"},
		"appleMusic": {URL: "https://music.apple.com/us/song/x/1", NativeAppURI: "music://ignored"},
		"tidal":      {NativeAppURI: "tidal://track/5"},
	}}}

	res := newTestResolver(m).Resolve(context.Background(), exampleMetadata())

	deezer, _ := res.Links.Get(domain.PlatformDeezer)
	assert.Equal(t, "deezer://www.deezer.com/track/1", deezer.DeepLinkURI)

	apple, _ := res.Links.Get(domain.PlatformAppleMusic)
	assert.Equal(t, "music://music.apple.com/us/song/x/1", apple.DeepLinkURI)

	tidal, ok := res.Links.Get(domain.PlatformTidal)
	require.True(t, ok)
	assert.Empty(t, tidal.WebURL)
	assert.Equal(t, "tidal://track/5", tidal.DeepLinkURI)
}

func TestResolve_ProviderNativeURIWhenTemplateCannotApply(t *testing.T) {
	m := &fakeMatcher{match: domain.ProviderMatch{Links: map[string]domain.ProviderLink{
		"appleMusic": {URL: "not a url", NativeAppURI: "music://native/1"},
		"deezer":     {URL: "https://www.deezer.com/track/1"},
	}}}

	res := newTestResolver(m).Resolve(context.Background(), exampleMetadata())

	apple, ok := res.Links.Get(domain.PlatformAppleMusic)
	require.True(t, ok)
	assert.Empty(t, apple.WebURL)
	assert.Equal(t, "music://native/1", apple.DeepLinkURI)
	assert.Equal(t, []domain.Platform{domain.PlatformSpotify, domain.PlatformAppleMusic, domain.PlatformDeezer}, res.Links.Platforms())
}

func TestResolve_TargetSubset(t *testing.T) {
	m := &fakeMatcher{match: domain.ProviderMatch{Links: links(
		"deezer", "https://deezer.com/track/999",
		"appleMusic", "https://music.apple.com/us/song/x/1",
	)}}

	res := newTestResolver(m).Resolve(context.Background(), exampleMetadata(), domain.PlatformDeezer, domain.PlatformSpotify)

	assert.Equal(t, []domain.Platform{domain.PlatformSpotify, domain.PlatformDeezer}, res.Links.Platforms())
	assert.Equal(t, domain.StatusFull, res.ResolutionStatus)
}

func TestResolve_TargetOutsideConfiguredOrder(t *testing.T) {
	m := &fakeMatcher{match: domain.ProviderMatch{Links: links(
		"pandora", "https://www.pandora.com/artist/x",
		"deezer", "https://deezer.com/track/999",
	)}}

	res := newTestResolver(m).Resolve(context.Background(), exampleMetadata(), domain.PlatformPandora, domain.PlatformDeezer)

	assert.Equal(t, []domain.Platform{domain.PlatformSpotify, domain.PlatformDeezer, domain.PlatformPandora}, res.Links.Platforms())
}

func TestResolve_EmptyTargetSet(t *testing.T) {
	m := &fakeMatcher{match: domain.ProviderMatch{Links: links("deezer", "https://deezer.com/track/999")}}
	cfg := DefaultResolverConfig()
	cfg.TargetPlatforms = []domain.Platform{}

	res := NewResolver(m, cfg, zerolog.Nop()).Resolve(context.Background(), exampleMetadata())

	assert.Equal(t, domain.StatusPrimaryOnly, res.ResolutionStatus)
	assert.Equal(t, 1, res.Links.Len())
}

func TestResolve_InvalidPrimaryURLFails(t *testing.T) {
	m := &fakeMatcher{}
	md := exampleMetadata()
	md.PrimaryPlatformURL = "/track/abc123"

	res := newTestResolver(m).Resolve(context.Background(), md)

	assert.Equal(t, domain.StatusFailed, res.ResolutionStatus)
	assert.Equal(t, 0, res.Links.Len())
	assert.Equal(t, 0, m.calls)
}

func TestResolve_NilProvider(t *testing.T) {
	md := exampleMetadata()
	md.PrimaryPlatformURL = "https://open.spotify.com/track/abc123"

	res := NewResolver(nil, DefaultResolverConfig(), zerolog.Nop()).Resolve(context.Background(), md)

	assert.Equal(t, domain.StatusPrimaryOnly, res.ResolutionStatus)
	primary, ok := res.Links.Get(domain.PlatformSpotify)
	require.True(t, ok)
	assert.Equal(t, "spotify:track:abc123", primary.DeepLinkURI)
}

func TestResolve_ScoreMonotonicInResolvedPlatforms(t *testing.T) {
	all := []string{
		"appleMusic", "https://music.apple.com/us/song/x/1",
		"youtubeMusic", "https://music.youtube.com/watch?v=x",
		"deezer", "https://www.deezer.com/track/1",
		"amazonMusic", "https://music.amazon.com/albums/B1",
		"tidal", "https://listen.tidal.com/track/1",
		"soundcloud", "https://soundcloud.com/a/b",
	}

	prev := -1.0
	for n := 0; n <= len(all)/2; n++ {
		m := &fakeMatcher{match: domain.ProviderMatch{Links: links(all[:2*n]...)}}
		res := newTestResolver(m).Resolve(context.Background(), exampleMetadata())

		assert.Equal(t, n+1, res.Links.Len())
		assert.GreaterOrEqual(t, res.ConfidenceScore, prev, "score decreased at n=%d", n)
		assert.LessOrEqual(t, res.ConfidenceScore, 1.0)
		prev = res.ConfidenceScore
	}
}

func TestResolve_ScoreCeiling(t *testing.T) {
	cfg := DefaultResolverConfig()
	cfg.ScoreIncrement = 0.3
	cfg.ScoreCeiling = 0.95
	m := &fakeMatcher{match: domain.ProviderMatch{Links: links(
		"appleMusic", "https://music.apple.com/us/song/x/1",
		"deezer", "https://www.deezer.com/track/1",
		"tidal", "https://listen.tidal.com/track/1",
	)}}

	res := NewResolver(m, cfg, zerolog.Nop()).Resolve(context.Background(), exampleMetadata())

	assert.Equal(t, 0.95, res.ConfidenceScore)
}

func TestResolve_ConcurrentCallsAreIndependent(t *testing.T) {
	m := &fakeMatcher{match: domain.ProviderMatch{Links: links("deezer", "https://deezer.com/track/999")}}
	r := newTestResolver(m)

	var wg sync.WaitGroup
	results := make([]domain.MatchResult, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Resolve(context.Background(), exampleMetadata())
		}(i)
	}
	wg.Wait()

	for _, res := range results {
		assert.Equal(t, 2, res.Links.Len())
	}
	assert.Equal(t, 20, m.calls)
}
