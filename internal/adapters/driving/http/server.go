package http

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"time"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/bioorbit/internal/logger"
)

// Config configures the HTTP server.
type Config struct {
	// JWTSecret enables bearer-token auth on the ingestion routes.
	JWTSecret string
}

// Server serves the HTTP API.
type Server struct {
	ports  *Ports
	cfg    Config
	engine *gin.Engine
}

// NewServer builds the router.
func NewServer(ports *Ports, cfg Config) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{ports: ports, cfg: cfg, engine: gin.New()}
	s.engine.Use(gin.Recovery(), requestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	s.engine.Use(cors.New(corsConfig))

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/search", s.handleSearchGet)
	s.engine.POST("/search", s.handleSearchPost)
	s.engine.GET("/watermark", s.handleWatermark)

	ingest := s.engine.Group("/")
	if s.cfg.JWTSecret != "" {
		ingest.Use(requireToken(s.cfg.JWTSecret))
	}
	ingest.POST("/ingest", s.handleIngest)
	ingest.POST("/update-db", s.handleIngest)
}

// Handler returns the router.
func (s *Server) Handler() nethttp.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &nethttp.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP server listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, nethttp.ErrServerClosed) {
		return nil
	}
	return err
}

// requestLogger logs each request at debug level.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
