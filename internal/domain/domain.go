package domain

import (
	"fmt"
	"strings"
)

// ContentType discriminates between the two kinds of catalog items that can
// be resolved across platforms.
type ContentType string

const (
	ContentTypeTrack ContentType = "track"
	ContentTypeAlbum ContentType = "album"
)

// ParseContentType accepts "track" or "album" in any case. An empty string
// defaults to track, matching the public API's query parameter default.
func ParseContentType(s string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ContentTypeTrack):
		return ContentTypeTrack, nil
	case string(ContentTypeAlbum):
		return ContentTypeAlbum, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidContentType, s)
	}
}

// TrackMetadata is the canonical description of a track or album, used both
// as the resolution key and as display metadata.
type TrackMetadata struct {
	CanonicalID        string      `json:"canonical_id"`
	ContentType        ContentType `json:"content_type"`
	Title              string      `json:"title"`
	Artist             string      `json:"artist"`
	Album              string      `json:"album,omitempty"`
	CoverImageURL      string      `json:"cover_image_url,omitempty"`
	DurationMS         int64       `json:"duration_ms,omitempty"`
	ISRC               string      `json:"isrc,omitempty"`
	PrimaryPlatformURL string      `json:"primary_platform_url"`
	PreviewURL         string      `json:"preview_url,omitempty"`
	ReleaseDate        string      `json:"release_date,omitempty"`
	Popularity         int         `json:"popularity,omitempty"`
	TotalTracks        int         `json:"total_tracks,omitempty"`
}

// Key identifies a resolution request.
func (m TrackMetadata) Key() string {
	return string(m.ContentType) + ":" + m.CanonicalID
}

// RawRecord is a catalog item exactly as the catalog provider shaped it.
// Values are whatever a JSON decoder (or an adapter flattening an SDK type)
// produced: strings, numbers, []any, map[string]any.
type RawRecord map[string]any

// ResolutionStatus summarises how much of the target platform set resolved.
type ResolutionStatus string

const (
	StatusFull        ResolutionStatus = "full"
	StatusPartial     ResolutionStatus = "partial"
	StatusPrimaryOnly ResolutionStatus = "primary_only"
	StatusFailed      ResolutionStatus = "failed"
)

// Degradation records why a result carries only the primary link.
type Degradation string

const (
	DegradationNone          Degradation = ""
	DegradationTimeout       Degradation = "timeout"
	DegradationProviderError Degradation = "provider_error"
	DegradationCancelled     Degradation = "cancelled"
)

// MatchResult is the normalized outcome of cross-platform resolution.
type MatchResult struct {
	Metadata              TrackMetadata    `json:"metadata"`
	Links                 LinkSet          `json:"links"`
	ConfidenceScore       float64          `json:"confidence_score"`
	ResolvedPlatformCount int              `json:"resolved_platform_count"`
	ResolutionStatus      ResolutionStatus `json:"resolution_status"`
	PageURL               string           `json:"page_url,omitempty"`
	Degradation           Degradation      `json:"degradation,omitempty"`
}

// Degraded reports whether the matching provider could not be consulted.
func (r MatchResult) Degraded() bool {
	return r.Degradation != DegradationNone
}

// ProviderScore is an explicitly tagged optional confidence value supplied by
// a matching provider.
type ProviderScore struct {
	Value float64
	Set   bool
}

// Score returns a present ProviderScore.
func Score(v float64) ProviderScore {
	return ProviderScore{Value: v, Set: true}
}

// ProviderLink is one entry of a matching provider response, still keyed by
// the provider's own platform tag.
type ProviderLink struct {
	URL          string
	NativeAppURI string
}

// ProviderMatch is what a matching provider returns for one URL lookup.
type ProviderMatch struct {
	Links      map[string]ProviderLink
	Confidence ProviderScore
	PageURL    string
}
