package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jpp0ca/MusicBooster-API/internal/domain"
	"github.com/jpp0ca/MusicBooster-API/internal/logging"
	"github.com/jpp0ca/MusicBooster-API/internal/ports"
)

// Handler holds the HTTP handlers for the booster API.
type Handler struct {
	service ports.BoosterService
}

// NewHandler creates a new HTTP handler with the given booster service.
func NewHandler(service ports.BoosterService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up all API routes on the given Gin engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.POST("/search", h.Search)
		api.POST("/match/batch", h.MatchBatch)
		api.POST("/match/:id", h.Match)
		api.GET("/landing/:id", h.Landing)
		api.GET("/preview-card/:id", h.PreviewCard)
	}
}

// Health reports the reachability of upstream services.
//
//	@Summary		Health check
//	@Description	Returns the health of the API and of the catalog and matching providers.
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	domain.HealthReport
//	@Router			/health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Health(c.Request.Context()))
}

// Search ranks catalog tracks and albums for a free-text query.
//
//	@Summary		Search catalog
//	@Description	Searches tracks and albums and ranks them by relevance to the query.
//	@Tags			search
//	@Accept			json
//	@Produce		json
//	@Param			request	body		domain.SearchRequest	true	"Query and optional limit (1-50, default 10)"
//	@Success		200		{object}	domain.SearchResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/v1/search [post]
func (h *Handler) Search(c *gin.Context) {
	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.Search(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Match resolves one catalog item across streaming platforms.
//
//	@Summary		Match track or album
//	@Description	Resolves a Spotify track or album to equivalent links on other platforms.
//	@Description	When the matching provider is unavailable the result carries only the Spotify link.
//	@Tags			match
//	@Produce		json
//	@Param			id				path		string	true	"Spotify ID"
//	@Param			content_type	query		string	false	"Content type"	Enums(track, album)	default(track)
//	@Success		200				{object}	domain.MatchResult
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Failure		502				{object}	ErrorResponse
//	@Router			/api/v1/match/{id} [post]
func (h *Handler) Match(c *gin.Context) {
	contentType, ok := contentTypeParam(c)
	if !ok {
		return
	}

	result, err := h.service.Match(c.Request.Context(), c.Param("id"), contentType)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// MatchBatch resolves many catalog items concurrently.
//
//	@Summary		Batch match
//	@Description	Resolves up to 50 items with a bounded worker pool. Items are returned in request order;
//	@Description	a failing item carries an error message instead of a result.
//	@Tags			match
//	@Accept			json
//	@Produce		json
//	@Param			request	body		domain.BatchMatchRequest	true	"Items to resolve"
//	@Success		200		{object}	domain.BatchMatchResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/v1/match/batch [post]
func (h *Handler) MatchBatch(c *gin.Context) {
	var req domain.BatchMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, h.service.MatchBatch(c.Request.Context(), req.Items))
}

// Landing returns the payload for a custom landing page.
//
//	@Summary		Landing page data
//	@Description	Returns metadata, thumbnails, ordered platform links and a share page URL.
//	@Tags			pages
//	@Produce		json
//	@Param			id				path		string	true	"Spotify ID"
//	@Param			content_type	query		string	false	"Content type"	Enums(track, album)	default(track)
//	@Success		200				{object}	domain.LandingPage
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Failure		502				{object}	ErrorResponse
//	@Router			/api/v1/landing/{id} [get]
func (h *Handler) Landing(c *gin.Context) {
	contentType, ok := contentTypeParam(c)
	if !ok {
		return
	}

	page, err := h.service.Landing(c.Request.Context(), c.Param("id"), contentType)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// PreviewCard returns a compact card for widgets and link previews.
//
//	@Summary		Preview card
//	@Description	Returns title, artist, cover art, m:ss duration, quick links and app deep links.
//	@Tags			pages
//	@Produce		json
//	@Param			id				path		string	true	"Spotify ID"
//	@Param			content_type	query		string	false	"Content type"	Enums(track, album)	default(track)
//	@Success		200				{object}	domain.PreviewCard
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Failure		502				{object}	ErrorResponse
//	@Router			/api/v1/preview-card/{id} [get]
func (h *Handler) PreviewCard(c *gin.Context) {
	contentType, ok := contentTypeParam(c)
	if !ok {
		return
	}

	card, err := h.service.PreviewCard(c.Request.Context(), c.Param("id"), contentType)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, card)
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// contentTypeParam parses ?content_type=, writing a 400 on failure.
func contentTypeParam(c *gin.Context) (domain.ContentType, bool) {
	contentType, err := domain.ParseContentType(c.Query("content_type"))
	if err != nil {
		badRequest(c, err.Error())
		return "", false
	}
	return contentType, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: msg,
	})
}

// writeError maps service errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, domain.ErrInvalidContentType), errors.Is(err, domain.ErrInvalidQuery):
		status, code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrMalformedMetadata):
		status, code = http.StatusBadGateway, "malformed_metadata"
	}

	if status >= http.StatusInternalServerError {
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("[http] request failed")
	}

	c.JSON(status, ErrorResponse{
		Error:   code,
		Message: err.Error(),
	})
}
