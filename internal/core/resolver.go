package core

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/jpp0ca/MusicBooster-API/internal/domain"
	"github.com/jpp0ca/MusicBooster-API/internal/ports"
)

// ResolverConfig carries every tunable the resolver reads. It is passed in
// explicitly so that resolution never depends on process-wide state.
type ResolverConfig struct {
	// PrimaryPlatform is the platform whose URL seeds resolution.
	PrimaryPlatform domain.Platform

	// TargetPlatforms is the full target set in priority order.
	TargetPlatforms []domain.Platform

	// Timeout bounds the single matching provider call. Zero means the
	// caller's context is the only bound.
	Timeout time.Duration

	// BaseScore is the heuristic confidence once one platform beyond the
	// primary resolved; ScoreIncrement is added per resolved platform and the
	// sum is capped at ScoreCeiling. ScoreFloor is used when nothing beyond
	// the primary is known.
	BaseScore      float64
	ScoreIncrement float64
	ScoreCeiling   float64
	ScoreFloor     float64
}

// DefaultResolverConfig returns the production defaults.
func DefaultResolverConfig() ResolverConfig {
	targets := make([]domain.Platform, len(domain.DefaultTargetPlatforms))
	copy(targets, domain.DefaultTargetPlatforms)
	return ResolverConfig{
		PrimaryPlatform: domain.PlatformSpotify,
		TargetPlatforms: targets,
		Timeout:         10 * time.Second,
		BaseScore:       0.5,
		ScoreIncrement:  0.08,
		ScoreCeiling:    1.0,
		ScoreFloor:      0.0,
	}
}

// Resolver turns TrackMetadata into a MatchResult using one matching
// provider call. It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	provider ports.MatchingProvider
	cfg      ResolverConfig
	logger   zerolog.Logger
}

// NewResolver creates a resolver. A nil provider disables cross-platform
// lookups; every result is then PRIMARY_ONLY.
func NewResolver(provider ports.MatchingProvider, cfg ResolverConfig, logger zerolog.Logger) *Resolver {
	if cfg.PrimaryPlatform == "" {
		cfg.PrimaryPlatform = domain.PlatformSpotify
	}
	if cfg.TargetPlatforms == nil {
		cfg.TargetPlatforms = DefaultResolverConfig().TargetPlatforms
	}
	return &Resolver{
		provider: provider,
		cfg:      cfg,
		logger:   logger.With().Str("component", "resolver").Logger(),
	}
}

// Config returns the resolver configuration.
func (r *Resolver) Config() ResolverConfig {
	return r.cfg
}

// Resolve returns the cross-platform links for md. targets narrows the
// configured target set; none means all of it. Resolve never fails: provider
// timeouts and errors degrade the result to the primary link alone.
func (r *Resolver) Resolve(ctx context.Context, md domain.TrackMetadata, targets ...domain.Platform) domain.MatchResult {
	order := r.priority(targets)

	primary, ok := r.primaryLink(md)
	if !ok {
		r.logger.Warn().Str("key", md.Key()).Str("url", md.PrimaryPlatformURL).Msg("[resolver] primary URL unusable")
		return r.result(md, domain.LinkSet{}, r.cfg.ScoreFloor, order, "", domain.DegradationNone)
	}

	if r.provider == nil {
		return r.result(md, domain.NewLinkSet(primary), r.cfg.ScoreFloor, order, "", domain.DegradationNone)
	}

	callCtx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	match, err := r.provider.MatchByURL(callCtx, md.PrimaryPlatformURL, md.ContentType)
	if err != nil {
		reason := classify(ctx, err)
		r.logger.Warn().
			Err(err).
			Str("key", md.Key()).
			Str("provider", r.provider.Name()).
			Str("degradation", string(reason)).
			Msg("[resolver] matching provider failed, returning primary link only")
		return r.result(md, domain.NewLinkSet(primary), r.cfg.ScoreFloor, order, "", reason)
	}

	links := r.merge(primary, match, order)
	score := r.score(links.Len()-1, match.Confidence)

	res := r.result(md, links, score, order, match.PageURL, domain.DegradationNone)
	r.logger.Debug().
		Str("key", md.Key()).
		Int("platforms", res.ResolvedPlatformCount).
		Str("status", string(res.ResolutionStatus)).
		Float64("confidence", res.ConfidenceScore).
		Msg("[resolver] resolved")
	return res
}

// priority returns the target platforms in priority order: configured order
// first, then requested platforms the configuration does not list. The
// primary platform is never a target.
func (r *Resolver) priority(requested []domain.Platform) []domain.Platform {
	if len(requested) == 0 {
		requested = r.cfg.TargetPlatforms
	}
	want := make(map[domain.Platform]struct{}, len(requested))
	for _, p := range requested {
		want[p] = struct{}{}
	}

	order := make([]domain.Platform, 0, len(requested))
	seen := make(map[domain.Platform]struct{}, len(requested))
	add := func(p domain.Platform) {
		if p == r.cfg.PrimaryPlatform {
			return
		}
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		order = append(order, p)
	}
	for _, p := range r.cfg.TargetPlatforms {
		if _, ok := want[p]; ok {
			add(p)
		}
	}
	for _, p := range requested {
		add(p)
	}
	return order
}

func (r *Resolver) primaryLink(md domain.TrackMetadata) (domain.PlatformLink, bool) {
	if !isWebURL(md.PrimaryPlatformURL) {
		return domain.PlatformLink{}, false
	}
	link := domain.PlatformLink{Platform: r.cfg.PrimaryPlatform, WebURL: md.PrimaryPlatformURL}
	if deep, ok := DeepLink(r.cfg.PrimaryPlatform, md.PrimaryPlatformURL); ok {
		link.DeepLinkURI = deep
	}
	return link, true
}

// merge validates provider entries and lays them out after the primary link
// in priority order. Unknown tags and malformed URLs are dropped silently.
func (r *Resolver) merge(primary domain.PlatformLink, match domain.ProviderMatch, order []domain.Platform) domain.LinkSet {
	wanted := make(map[domain.Platform]struct{}, len(order))
	for _, p := range order {
		wanted[p] = struct{}{}
	}

	// Several tags can fold onto one platform; sorted iteration keeps the
	// winner deterministic.
	tags := make([]string, 0, len(match.Links))
	for tag := range match.Links {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	found := make(map[domain.Platform]domain.PlatformLink, len(order))
	for _, tag := range tags {
		p, ok := domain.ParsePlatformTag(tag)
		if !ok {
			r.logger.Debug().Str("tag", tag).Msg("[resolver] ignoring unknown platform tag")
			continue
		}
		if _, ok := wanted[p]; !ok {
			continue
		}
		if _, dup := found[p]; dup {
			continue
		}
		entry := match.Links[tag]
		link := domain.PlatformLink{Platform: p}
		if isWebURL(entry.URL) {
			link.WebURL = entry.URL
		}
		if deep, ok := DeepLink(p, link.WebURL); ok {
			link.DeepLinkURI = deep
		} else if isAppURI(entry.NativeAppURI) {
			link.DeepLinkURI = entry.NativeAppURI
		}
		if link.WebURL == "" && link.DeepLinkURI == "" {
			continue
		}
		found[p] = link
	}

	links := make([]domain.PlatformLink, 0, len(found)+1)
	links = append(links, primary)
	for _, p := range order {
		if l, ok := found[p]; ok {
			links = append(links, l)
		}
	}
	return domain.NewLinkSet(links...)
}

// score applies the precedence rule: a provider-supplied score is
// authoritative; otherwise the heuristic derives one from the number of
// platforms resolved beyond the primary.
func (r *Resolver) score(resolved int, provided domain.ProviderScore) float64 {
	if provided.Set && !math.IsNaN(provided.Value) {
		return clamp01(provided.Value)
	}
	if resolved <= 0 {
		return clamp01(r.cfg.ScoreFloor)
	}
	s := r.cfg.BaseScore + float64(resolved)*r.cfg.ScoreIncrement
	return clamp01(math.Min(s, r.cfg.ScoreCeiling))
}

func (r *Resolver) result(
	md domain.TrackMetadata,
	links domain.LinkSet,
	score float64,
	order []domain.Platform,
	pageURL string,
	reason domain.Degradation,
) domain.MatchResult {
	return domain.MatchResult{
		Metadata:              md,
		Links:                 links,
		ConfidenceScore:       clamp01(score),
		ResolvedPlatformCount: links.Len(),
		ResolutionStatus:      r.status(links, order),
		PageURL:               pageURL,
		Degradation:           reason,
	}
}

func (r *Resolver) status(links domain.LinkSet, order []domain.Platform) domain.ResolutionStatus {
	switch links.Len() {
	case 0:
		return domain.StatusFailed
	case 1:
		if links.Has(r.cfg.PrimaryPlatform) {
			return domain.StatusPrimaryOnly
		}
	}
	for _, p := range order {
		if !links.Has(p) {
			return domain.StatusPartial
		}
	}
	return domain.StatusFull
}

// classify maps a provider error to a degradation reason. The caller's own
// context is consulted first so that a cancelled request is not reported as
// a provider fault.
func classify(ctx context.Context, err error) domain.Degradation {
	if errors.Is(ctx.Err(), context.Canceled) {
		return domain.DegradationCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrProviderTimeout) {
		return domain.DegradationTimeout
	}
	return domain.DegradationProviderError
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
