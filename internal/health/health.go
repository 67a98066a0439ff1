// Package health serves GET /healthz for process supervisors.
package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/m3rciful/lookupbot/core/buildinfo"
	"github.com/m3rciful/lookupbot/core/logger"
)

// RowCounter reports how many rows the journal holds.
type RowCounter interface {
	Rows() int64
}

// Server is the health HTTP server.
type Server struct {
	srv     *http.Server
	started time.Time
}

// New builds a server listening on addr.
func New(addr string, rows RowCounter) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{started: time.Now()}

	router := gin.New()
	router.Use(gin.Recovery(), requestid.New(), accessLog())
	router.GET("/healthz", s.healthz(rows))

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) healthz(rows RowCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":  "ok",
			"version": buildinfo.Version,
			"commit":  buildinfo.Commit,
			"uptime":  time.Since(s.started).Round(time.Second).String(),
		}
		if rows != nil {
			body["journal_rows"] = rows.Rows()
		}
		c.JSON(http.StatusOK, body)
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Health.LogAttrs(c.Request.Context(), slog.LevelDebug, "",
			slog.String("event", "http.request"),
			slog.String("rid", requestid.Get(c)),
			slog.String("path", c.Request.URL.Path),
			slog.Int("http_code", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

// Start listens in the background. Bind errors are returned immediately.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("health: listen %s: %w", s.srv.Addr, err)
	}
	logger.Health.Info("health endpoint listening",
		slog.String("event", "listen"),
		slog.String("listen", ln.Addr().String()),
	)
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Health.Error("health server stopped",
				slog.String("event", "serve"),
				slog.String("err", err.Error()),
			)
		}
	}()
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
