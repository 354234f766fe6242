package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/trip-refiner/internal/logger"
	"github.com/example/trip-refiner/internal/metrics"
	"github.com/example/trip-refiner/internal/orchestrator"
)

// Server exposes the planning session over HTTP.
type Server struct {
	session  *orchestrator.Session
	hub      *orchestrator.Hub
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
}

func NewServer(session *orchestrator.Session, hub *orchestrator.Hub, m *metrics.Metrics, gatherer prometheus.Gatherer) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{session: session, hub: hub, metrics: m, gatherer: gatherer}
}

// Router builds the gin engine. mode is a gin mode name; "release" and
// "test" are applied, anything else leaves gin in debug mode.
func (s *Server) Router(mode string) *gin.Engine {
	switch mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(mode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
	}))
	// event streams must not be buffered by the compressor
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/events"})))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		api.POST("/actions", s.HandleAction)
		api.GET("/transcript", s.GetTranscript)
		api.DELETE("/transcript", s.ResetTranscript)
		api.GET("/options", s.GetOptions)
		api.PUT("/options/api-key", s.SetAPIKey)
		api.GET("/events", s.StreamEvents)
	}
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// StreamEvents relays session and pipeline events as server-sent events
// until the client goes away.
func (s *Server) StreamEvents(c *gin.Context) {
	ctx := c.Request.Context()
	events, unsubscribe := s.hub.Subscribe(s.session.ID)
	defer unsubscribe()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		case b, ok := <-events:
			if !ok {
				return
			}
			c.SSEvent("message", string(b))
			c.Writer.Flush()
		}
	}
}
