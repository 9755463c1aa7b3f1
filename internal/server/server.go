// Package server exposes the session and the console driver over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mxa-live/mxa/internal/config"
	"github.com/mxa-live/mxa/internal/console"
	"github.com/mxa-live/mxa/internal/logging"
	"github.com/mxa-live/mxa/internal/session"
	"github.com/mxa-live/mxa/level"
)

// Server is the control API.
type Server struct {
	store  *session.Store
	driver *console.Driver
	levels *level.Table
	cfg    *config.Config
	logger *zap.Logger
	engine *gin.Engine
}

// New wires the API routes.
func New(cfg *config.Config, store *session.Store, driver *console.Driver, levels *level.Table, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		store:  store,
		driver: driver,
		levels: levels,
		cfg:    cfg,
		logger: logging.OrNop(logger),
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.accessLog())

	s.engine.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	api := s.engine.Group("/api")
	api.GET("/session", s.handleGetSession)
	api.PUT("/session/routing", s.handlePutRouting)
	api.GET("/session/export", s.handleExport)
	api.POST("/session/import", s.handleImport)
	api.GET("/toggles", s.handleGetToggles)
	api.PUT("/toggles", s.handlePutToggles)
	api.POST("/preview", s.handlePreview)
	api.POST("/send", s.handleSend)
	api.GET("/levels", s.handleGetLevels)

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}
