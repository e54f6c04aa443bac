package core

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/jpp0ca/MusicBooster-API/internal/domain"
)

const (
	// DefaultDurationSecondsThreshold separates second-valued from
	// millisecond-valued durations when the source field does not say.
	DefaultDurationSecondsThreshold = 36000

	// DefaultPrimaryURLTemplate builds a primary URL from content type and id
	// when the record carries none.
	DefaultPrimaryURLTemplate = "https://open.spotify.com/%s/%s"
)

// NormalizerConfig tunes MetadataNormalizer heuristics.
type NormalizerConfig struct {
	// DurationSecondsThreshold applies only to a bare "duration" field: values
	// below it are read as seconds, others as milliseconds. This is a guess
	// about upstream data, not a guarantee.
	DurationSecondsThreshold int64

	// PrimaryURLTemplate is a fmt template taking content type and id.
	PrimaryURLTemplate string
}

// DefaultNormalizerConfig returns the production defaults.
func DefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{
		DurationSecondsThreshold: DefaultDurationSecondsThreshold,
		PrimaryURLTemplate:       DefaultPrimaryURLTemplate,
	}
}

// Normalizer converts raw catalog records into TrackMetadata.
type Normalizer struct {
	cfg NormalizerConfig
}

// NewNormalizer creates a normalizer. Zero config fields take defaults.
func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	def := DefaultNormalizerConfig()
	if cfg.DurationSecondsThreshold <= 0 {
		cfg.DurationSecondsThreshold = def.DurationSecondsThreshold
	}
	if cfg.PrimaryURLTemplate == "" {
		cfg.PrimaryURLTemplate = def.PrimaryURLTemplate
	}
	return &Normalizer{cfg: cfg}
}

// Normalize builds TrackMetadata from raw. A record without identifier,
// title, artist or a track/album discriminator yields a
// *domain.MalformedMetadataError and a zero TrackMetadata.
func (n *Normalizer) Normalize(raw domain.RawRecord) (domain.TrackMetadata, error) {
	rec := map[string]any(raw)

	id := stringAt(rec, []string{"id"}, []string{"canonical_id"})
	title := stringAt(rec, []string{"name"}, []string{"title"})
	artist := artistName(rec)

	var missing []string
	if id == "" {
		missing = append(missing, "id")
	}
	if title == "" {
		missing = append(missing, "title")
	}
	if artist == "" {
		missing = append(missing, "artist")
	}
	contentType, ok := contentTypeOf(rec)
	if !ok {
		missing = append(missing, "content_type")
	}
	if len(missing) > 0 {
		return domain.TrackMetadata{}, &domain.MalformedMetadataError{Missing: missing}
	}

	md := domain.TrackMetadata{
		CanonicalID:   id,
		ContentType:   contentType,
		Title:         title,
		Artist:        artist,
		CoverImageURL: n.coverImage(rec, contentType),
		DurationMS:    n.durationMS(rec),
		ISRC:          strings.ToUpper(stringAt(rec, []string{"isrc"}, []string{"external_ids", "isrc"})),
		PreviewURL:    stringAt(rec, []string{"preview_url"}),
		ReleaseDate:   stringAt(rec, []string{"release_date"}, []string{"album", "release_date"}),
	}
	if contentType == domain.ContentTypeTrack {
		md.Album = stringAt(rec, []string{"album", "name"}, []string{"album"})
	}
	if v, ok := numberAt(rec, "popularity"); ok {
		md.Popularity = boundedInt(v)
	}
	if v, ok := numberAt(rec, "total_tracks"); ok {
		md.TotalTracks = boundedInt(v)
	}
	md.PrimaryPlatformURL = n.primaryURL(rec, contentType, id)
	return md, nil
}

func contentTypeOf(rec map[string]any) (domain.ContentType, bool) {
	raw := stringAt(rec, []string{"type"}, []string{"content_type"})
	if raw == "" {
		return "", false
	}
	ct, err := domain.ParseContentType(raw)
	if err != nil {
		return "", false
	}
	return ct, true
}

// artistName joins every credited artist, or falls back to a flat "artist".
func artistName(rec map[string]any) string {
	var names []string
	if v, ok := lookup(rec, "artists"); ok {
		for _, a := range asSlice(v) {
			switch t := a.(type) {
			case string:
				if s := strings.TrimSpace(t); s != "" {
					names = append(names, s)
				}
			default:
				if m, ok := asMap(t); ok {
					if s := stringAt(m, []string{"name"}); s != "" {
						names = append(names, s)
					}
				}
			}
		}
	}
	if len(names) > 0 {
		return strings.Join(names, ", ")
	}
	return stringAt(rec, []string{"artist"})
}

// coverImage picks the largest offered image. Source ordering is not
// guaranteed, so the rule is explicit: the entry with the greatest
// width*height wins (a single present dimension counts squared); entries
// without dimensions count as zero; ties keep the earliest entry. When no
// entry carries any dimension the first entry wins.
func (n *Normalizer) coverImage(rec map[string]any, ct domain.ContentType) string {
	candidates := [][]string{{"album", "images"}, {"images"}}
	if ct == domain.ContentTypeAlbum {
		candidates = [][]string{{"images"}, {"album", "images"}}
	}
	for _, path := range candidates {
		v, ok := lookup(rec, path...)
		if !ok {
			continue
		}
		if u := pickLargestImage(asSlice(v)); u != "" {
			return u
		}
	}
	return stringAt(rec, []string{"cover_image_url"}, []string{"image"})
}

func pickLargestImage(images []any) string {
	best := ""
	bestArea := -1.0
	for _, img := range images {
		var (
			u    string
			area float64
		)
		switch t := img.(type) {
		case string:
			u = strings.TrimSpace(t)
		default:
			m, ok := asMap(t)
			if !ok {
				continue
			}
			u = stringAt(m, []string{"url"})
			w, hasW := numberAt(m, "width")
			h, hasH := numberAt(m, "height")
			switch {
			case hasW && hasH:
				area = w * h
			case hasW:
				area = w * w
			case hasH:
				area = h * h
			}
		}
		if u == "" {
			continue
		}
		if area > bestArea {
			best, bestArea = u, area
		}
	}
	return best
}

// durationMS prefers fields whose unit is explicit and only then applies the
// seconds/milliseconds threshold heuristic to a bare "duration".
func (n *Normalizer) durationMS(rec map[string]any) int64 {
	if v, ok := numberAt(rec, "duration_ms"); ok {
		return nonNegative(v)
	}
	for _, key := range []string{"duration_seconds", "duration_s"} {
		if v, ok := numberAt(rec, key); ok {
			return nonNegative(v * 1000)
		}
	}
	if v, ok := numberAt(rec, "duration"); ok {
		if v < float64(n.cfg.DurationSecondsThreshold) {
			return nonNegative(v * 1000)
		}
		return nonNegative(v)
	}
	return 0
}

// nonNegative rounds v to an integer, treating anything that is not a finite
// value in [0, MaxInt64) as absent.
func nonNegative(v float64) int64 {
	if math.IsNaN(v) || v <= 0 || v >= math.MaxInt64 {
		return 0
	}
	return int64(v + 0.5)
}

func boundedInt(v float64) int {
	if math.IsNaN(v) || v <= 0 || v >= math.MaxInt32 {
		return 0
	}
	return int(v)
}

func (n *Normalizer) primaryURL(rec map[string]any, ct domain.ContentType, id string) string {
	for _, path := range [][]string{
		{"external_urls", "spotify"},
		{"primary_platform_url"},
		{"url"},
	} {
		if s := stringAt(rec, path); s != "" && isWebURL(s) {
			return s
		}
	}
	return fmt.Sprintf(n.cfg.PrimaryURLTemplate, ct, url.PathEscape(id))
}
