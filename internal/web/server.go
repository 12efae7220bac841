package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"capacity-mcp/internal/backend"
	"capacity-mcp/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Server is the HTTP front of the capacity dashboard.
type Server struct {
	router  *gin.Engine
	handler *Handler
}

// NewServer builds the router: CORS, request logging, the capacity API under
// /api and the backend proxy under /api/backend.
func NewServer(cfg *config.AppConfig, loader *backend.Loader) (*Server, error) {
	proxy, err := backend.NewProxy(cfg.Backend)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:  gin.New(),
		handler: NewHandler(loader, proxy, cfg.EnableMermaidCharts),
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery(), requestLogger())
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	s.handler.RegisterRoutes(api)

	s.router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusTemporaryRedirect, "/api/capacity/bundles")
	})
}

// Router exposes the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Web server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info().Msg("Web server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	}
}
