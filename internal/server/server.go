// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes verification runs over HTTP. A run is submitted
// as a multipart upload and its events stream back as Server-Sent Events.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pdiddy/refcheck/internal/logging"
	"github.com/pdiddy/refcheck/internal/pipeline"
	"github.com/pdiddy/refcheck/pkg/types"
)

// Runner starts a verification run. *pipeline.Service satisfies it.
type Runner interface {
	Start(ctx context.Context, model string, data []byte) <-chan types.Event
}

// Server holds the handlers' dependencies.
type Server struct {
	runner       Runner
	models       []types.ModelConfig
	defaultModel string
	cfg          types.ServerConfig
	logger       *log.Logger
}

// New returns a Server. models is what GET /models reports.
func New(runner Runner, models []types.ModelConfig, defaultModel string, cfg types.ServerConfig, logger *log.Logger) *Server {
	return &Server{
		runner:       runner,
		models:       models,
		defaultModel: defaultModel,
		cfg:          cfg,
		logger:       logging.OrDiscard(logger),
	}
}

// Router constructs the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	if len(s.cfg.AllowOrigins) > 0 {
		r.Use(corsMiddleware(s.cfg.AllowOrigins))
	}

	r.GET("/healthz", handleHealth)
	r.GET("/models", s.handleModels)
	r.POST("/stream-verify/", s.handleStreamVerify)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down with a
// short grace period for in-flight streams.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default": s.defaultModel,
		"models":  s.models,
	})
}

// handleStreamVerify reads the "file" and "model_name" form fields and
// streams the run. Upload failures are reported in-stream so clients only
// need one code path.
func (s *Server) handleStreamVerify(c *gin.Context) {
	if s.cfg.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	}

	model := c.DefaultPostForm("model_name", s.defaultModel)
	data, err := readUpload(c)

	var events <-chan types.Event
	if err != nil {
		s.logger.Warn("upload rejected", "err", err)
		events = pipeline.ErrorStream(fmt.Sprintf("Failed to read uploaded file: %v", err))
	} else {
		events = s.runner.Start(c.Request.Context(), model, data)
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.Stream(func(w io.Writer) bool {
		ev, ok := <-events
		if !ok {
			return false
		}
		if err := writeEvent(w, ev); err != nil {
			s.logger.Warn("writing event", "type", ev.Type, "err", err)
			return false
		}
		return true
	})
}

func readUpload(c *gin.Context) ([]byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// writeEvent writes ev as one SSE frame: "data: <json>\n\n".
func writeEvent(w io.Writer, ev types.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

// requestLogger logs one line per request after it completes.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start).Round(time.Millisecond))
	}
}

// corsMiddleware allows the listed origins ("*" for any) to call the API
// from a browser. Credentials are only allowed for named origins.
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Cache-Control"},
		MaxAge:       12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
