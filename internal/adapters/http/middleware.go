package http

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jpp0ca/MusicBooster-API/internal/logging"
	"github.com/jpp0ca/MusicBooster-API/internal/metrics"
)

const (
	HeaderRequestID   = "X-Request-ID"
	HeaderProcessTime = "X-Process-Time"
	requestIDKey      = "request_id"
)

// UseMiddleware installs request IDs, timing, access logging and CORS.
func UseMiddleware(r *gin.Engine, corsOrigins []string) {
	r.Use(RequestID(), ProcessTime(), AccessLog(), CORS(corsOrigins))
}

// RequestID propagates or assigns X-Request-ID and attaches a request-scoped
// logger to the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)

		l := logging.Logger().With().Str(requestIDKey, id).Logger()
		c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), l))
		c.Next()
	}
}

// ProcessTime stamps X-Process-Time (seconds) just before headers are sent.
func ProcessTime() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &timingWriter{ResponseWriter: c.Writer, start: time.Now()}
		c.Next()
	}
}

type timingWriter struct {
	gin.ResponseWriter
	start   time.Time
	stamped bool
}

func (w *timingWriter) stamp() {
	if w.stamped || w.Written() {
		return
	}
	w.stamped = true
	w.Header().Set(HeaderProcessTime, fmt.Sprintf("%.4f", time.Since(w.start).Seconds()))
}

func (w *timingWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *timingWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *timingWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

func (w *timingWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}

// AccessLog emits one line per request and counts it in booster_http_requests_total.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()

		l := logging.Ctx(c.Request.Context())
		event := l.Info()
		if status >= 500 {
			event = l.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", route).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("[http] request")
	}
}

// CORS allows the configured origins; "*" allows any origin.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", HeaderRequestID},
		ExposeHeaders: []string{HeaderRequestID, HeaderProcessTime},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
