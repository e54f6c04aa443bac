package domain

// SearchRequest is the body of a catalog search.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit" binding:"omitempty,min=1,max=50"`
}

// SearchResult is one ranked catalog candidate.
type SearchResult struct {
	TrackMetadata
	Relevance float64 `json:"relevance"`
}

// SearchResponse lists ranked tracks and albums for a query.
type SearchResponse struct {
	Query        string         `json:"query"`
	TotalResults int            `json:"total_results"`
	Results      []SearchResult `json:"results"`
}

// MatchRequest names one catalog item to resolve.
type MatchRequest struct {
	ID          string      `json:"id" binding:"required"`
	ContentType ContentType `json:"content_type"`
}

// BatchMatchRequest is the body of a batch resolution.
type BatchMatchRequest struct {
	Items []MatchRequest `json:"items" binding:"required,min=1,max=50,dive"`
}

// BatchItem holds the outcome for one entry of a batch, in request order.
type BatchItem struct {
	Request MatchRequest `json:"request"`
	Result  *MatchResult `json:"result,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// BatchMatchResponse wraps batch outcomes.
type BatchMatchResponse struct {
	Total    int         `json:"total"`
	Resolved int         `json:"resolved"`
	Failed   int         `json:"failed"`
	Items    []BatchItem `json:"items"`
}

// LandingPage is the payload rendered by custom landing pages.
type LandingPage struct {
	CanonicalID      string           `json:"canonical_id"`
	ContentType      ContentType      `json:"content_type"`
	Title            string           `json:"title"`
	Artist           string           `json:"artist"`
	Album            string           `json:"album,omitempty"`
	ThumbnailSmall   string           `json:"thumbnail_small,omitempty"`
	ThumbnailMedium  string           `json:"thumbnail_medium,omitempty"`
	ThumbnailLarge   string           `json:"thumbnail_large,omitempty"`
	Platforms        LinkSet          `json:"platforms"`
	PageURL          string           `json:"page_url"`
	DurationMS       int64            `json:"duration_ms,omitempty"`
	ISRC             string           `json:"isrc,omitempty"`
	ReleaseDate      string           `json:"release_date,omitempty"`
	Popularity       int              `json:"popularity,omitempty"`
	PreviewURL       string           `json:"preview_url,omitempty"`
	ConfidenceScore  float64          `json:"confidence_score"`
	ResolutionStatus ResolutionStatus `json:"resolution_status"`
}

// PreviewCard is the compact payload for widgets and link previews.
type PreviewCard struct {
	Title      string            `json:"title"`
	Artist     string            `json:"artist"`
	Album      string            `json:"album,omitempty"`
	CoverArt   string            `json:"cover_art,omitempty"`
	Duration   string            `json:"duration,omitempty"`
	PreviewURL string            `json:"preview_url,omitempty"`
	QuickLinks map[string]string `json:"quick_links"`
	DeepLinks  map[string]string `json:"deep_links"`
}

// HealthReport describes the reachability of external dependencies.
type HealthReport struct {
	Status    string            `json:"status"`
	Timestamp int64             `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
