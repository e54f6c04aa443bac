// Package songlink implements ports.MatchingProvider on top of the Odesli
// (song.link) links API.
package songlink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/jpp0ca/MusicBooster-API/internal/domain"
	"github.com/jpp0ca/MusicBooster-API/internal/logging"
	"github.com/jpp0ca/MusicBooster-API/internal/metrics"
)

const (
	DefaultBaseURL = "https://api.song.link/v1-alpha.1"
	providerName   = "songlink"
	maxBodySize    = 2 << 20
	maxErrorBody   = 256
)

// Options configures the provider. Zero values take defaults; a zero
// RatePerMinute disables client-side rate limiting.
type Options struct {
	BaseURL          string
	UserCountry      string
	RatePerMinute    int
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Provider implements ports.MatchingProvider for song.link.
type Provider struct {
	client  *http.Client
	opts    Options
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[domain.ProviderMatch]
	logger  zerolog.Logger
}

// NewProvider creates a song.link provider with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewProvider(client *http.Client, opts Options) *Provider {
	if client == nil {
		client = http.DefaultClient
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.UserCountry == "" {
		opts.UserCountry = "US"
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}
	if opts.OpenTimeout <= 0 {
		opts.OpenTimeout = 30 * time.Second
	}

	p := &Provider{
		client: client,
		opts:   opts,
		logger: logging.Component(providerName),
	}
	if opts.RatePerMinute > 0 {
		p.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RatePerMinute)), opts.RatePerMinute)
	}

	metrics.BreakerState.WithLabelValues(providerName).Set(0)
	p.breaker = gobreaker.NewCircuitBreaker[domain.ProviderMatch](gobreaker.Settings{
		Name:        providerName,
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.FailureThreshold
		},
		// A caller abandoning its request says nothing about provider health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("[songlink] circuit breaker state change")
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
	return p
}

func (p *Provider) Name() string {
	return providerName
}

// BreakerState returns the circuit breaker state ("closed", "half-open", "open").
func (p *Provider) BreakerState() string {
	return p.breaker.State().String()
}

// -- API response types (internal) ------------------------------------------

type linksResponse struct {
	EntityUniqueID  string                  `json:"entityUniqueId"`
	UserCountry     string                  `json:"userCountry"`
	PageURL         string                  `json:"pageUrl"`
	LinksByPlatform map[string]platformLink `json:"linksByPlatform"`
	Confidence      *float64                `json:"confidence,omitempty"`
}

type platformLink struct {
	Country             string `json:"country"`
	URL                 string `json:"url"`
	NativeAppURIMobile  string `json:"nativeAppUriMobile"`
	NativeAppURIDesktop string `json:"nativeAppUriDesktop"`
	EntityUniqueID      string `json:"entityUniqueId"`
}

// -- MatchingProvider implementation ------------------------------------------

// MatchByURL performs one links lookup. An open circuit breaker fails fast
// with a *domain.ProviderTransportError.
func (p *Provider) MatchByURL(ctx context.Context, rawURL string, _ domain.ContentType) (domain.ProviderMatch, error) {
	start := time.Now()
	match, err := p.breaker.Execute(func() (domain.ProviderMatch, error) {
		return p.fetch(ctx, rawURL)
	})
	metrics.MatchingDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil && len(match.Links) == 0:
		metrics.MatchingRequests.WithLabelValues("not_found").Inc()
	case err == nil:
		metrics.MatchingRequests.WithLabelValues("success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.MatchingRequests.WithLabelValues("rejected").Inc()
		return domain.ProviderMatch{}, &domain.ProviderTransportError{Provider: providerName, Err: err}
	default:
		metrics.MatchingRequests.WithLabelValues("error").Inc()
	}
	return match, err
}

func (p *Provider) fetch(ctx context.Context, rawURL string) (domain.ProviderMatch, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return domain.ProviderMatch{}, p.transportErr(0, ctx.Err())
			}
			// Wait fails early when the next token lies beyond the deadline.
			return domain.ProviderMatch{}, p.transportErr(0, fmt.Errorf("%w: %w", domain.ErrProviderTimeout, err))
		}
	}

	q := url.Values{}
	q.Set("url", rawURL)
	q.Set("userCountry", p.opts.UserCountry)
	endpoint := p.opts.BaseURL + "/links?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return domain.ProviderMatch{}, p.transportErr(0, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.ProviderMatch{}, p.transportErr(0, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// song.link answers 404 when the entity exists but nothing matched.
		return domain.ProviderMatch{}, nil
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.ProviderMatch{}, p.transportErr(resp.StatusCode, errors.New(strings.TrimSpace(string(body))))
	}

	var lr linksResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&lr); err != nil {
		return domain.ProviderMatch{}, p.transportErr(0, fmt.Errorf("failed to decode links response: %w", err))
	}
	return toMatch(lr), nil
}

func (p *Provider) transportErr(status int, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, domain.ErrProviderTimeout) {
		err = fmt.Errorf("%w: %w", domain.ErrProviderTimeout, err)
	}
	return &domain.ProviderTransportError{Provider: providerName, StatusCode: status, Err: err}
}

// -- Helpers -----------------------------------------------------------------

func toMatch(lr linksResponse) domain.ProviderMatch {
	match := domain.ProviderMatch{
		Links:   make(map[string]domain.ProviderLink, len(lr.LinksByPlatform)),
		PageURL: lr.PageURL,
	}
	for tag, l := range lr.LinksByPlatform {
		match.Links[tag] = domain.ProviderLink{URL: l.URL, NativeAppURI: l.NativeAppURIMobile}
	}
	if lr.Confidence != nil {
		match.Confidence = domain.Score(*lr.Confidence)
	}
	return match
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
