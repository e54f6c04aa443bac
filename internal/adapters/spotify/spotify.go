// Package spotify implements ports.CatalogProvider on top of the Spotify Web
// API using the client-credentials flow.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/jpp0ca/MusicBooster-API/internal/domain"
	"github.com/jpp0ca/MusicBooster-API/internal/logging"
)

const (
	providerName = "spotify"
	pingQuery    = "test"
)

// Options configures the provider.
type Options struct {
	// BaseURL overrides the Web API root; it must end with a slash.
	BaseURL string

	// Market is an optional ISO 3166-1 country code applied to lookups.
	Market string
}

// Provider implements ports.CatalogProvider for Spotify.
type Provider struct {
	client *spotify.Client
	opts   Options
	logger zerolog.Logger
}

// NewClientCredentialsClient returns an HTTP client that obtains and renews
// app tokens from the Spotify accounts service. A positive timeout bounds
// both token requests and API requests.
func NewClientCredentialsClient(ctx context.Context, clientID, clientSecret string, timeout time.Duration) *http.Client {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	if timeout > 0 {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: timeout})
	}
	client := cfg.Client(ctx)
	client.Timeout = timeout
	return client
}

// NewProvider creates a Spotify provider with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewProvider(client *http.Client, opts Options) *Provider {
	if client == nil {
		client = http.DefaultClient
	}
	var clientOpts []spotify.ClientOption
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, spotify.WithBaseURL(opts.BaseURL))
	}
	return &Provider{
		client: spotify.New(client, clientOpts...),
		opts:   opts,
		logger: logging.Component(providerName),
	}
}

func (p *Provider) Name() string {
	return providerName
}

// -- CatalogProvider implementation ------------------------------------------

// Lookup fetches one track or album. Unknown or invalid ids yield
// domain.ErrNotFound.
func (p *Provider) Lookup(ctx context.Context, id string, contentType domain.ContentType) (domain.RawRecord, error) {
	switch contentType {
	case domain.ContentTypeTrack:
		track, err := p.client.GetTrack(ctx, spotify.ID(id), p.requestOpts()...)
		if err != nil {
			return nil, p.wrap("failed to get track", err)
		}
		return toRecord(track, domain.ContentTypeTrack)
	case domain.ContentTypeAlbum:
		album, err := p.client.GetAlbum(ctx, spotify.ID(id), p.requestOpts()...)
		if err != nil {
			return nil, p.wrap("failed to get album", err)
		}
		return toRecord(album, domain.ContentTypeAlbum)
	default:
		return nil, fmt.Errorf("spotify: %w: %q", domain.ErrInvalidContentType, contentType)
	}
}

// Search returns track candidates followed by album candidates.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]domain.RawRecord, error) {
	tracks, err := p.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(max(5, limit/2)))
	if err != nil {
		return nil, p.wrap("track search failed", err)
	}
	albums, err := p.client.Search(ctx, query, spotify.SearchTypeAlbum, spotify.Limit(max(3, limit/3)))
	if err != nil {
		return nil, p.wrap("album search failed", err)
	}

	var records []domain.RawRecord
	if tracks.Tracks != nil {
		for i := range tracks.Tracks.Tracks {
			rec, err := toRecord(&tracks.Tracks.Tracks[i], domain.ContentTypeTrack)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
	}
	if albums.Albums != nil {
		for i := range albums.Albums.Albums {
			rec, err := toRecord(&albums.Albums.Albums[i], domain.ContentTypeAlbum)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
	}

	p.logger.Debug().Str("query", query).Int("candidates", len(records)).Msg("[spotify] search complete")
	return records, nil
}

// Ping runs the smallest authenticated search.
func (p *Provider) Ping(ctx context.Context) error {
	if _, err := p.client.Search(ctx, pingQuery, spotify.SearchTypeTrack, spotify.Limit(1)); err != nil {
		p.logger.Error().Err(err).Msg("[spotify] connection test failed")
		return p.wrap("ping failed", err)
	}
	return nil
}

// -- Helpers -----------------------------------------------------------------

func (p *Provider) requestOpts() []spotify.RequestOption {
	if p.opts.Market == "" {
		return nil
	}
	return []spotify.RequestOption{spotify.Market(p.opts.Market)}
}

func (p *Provider) wrap(msg string, err error) error {
	if status := apiStatus(err); status == http.StatusNotFound || status == http.StatusBadRequest {
		return fmt.Errorf("spotify: %s: %w", msg, domain.ErrNotFound)
	}
	return fmt.Errorf("spotify: %s: %w", msg, err)
}

// apiStatus extracts the Web API error status, or 0.
func apiStatus(err error) int {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	var apiErrPtr *spotify.Error
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Status
	}
	return 0
}

// toRecord flattens an SDK object into the Web API JSON shape it was decoded
// from, so the normalizer sees identical keys for SDK and raw payloads.
func toRecord(v any, contentType domain.ContentType) (domain.RawRecord, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("spotify: failed to encode %s: %w", contentType, err)
	}
	var rec domain.RawRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("spotify: failed to decode %s: %w", contentType, err)
	}
	rec["type"] = string(contentType)
	return rec, nil
}
