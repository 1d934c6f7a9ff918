// Package receiver implements a local stand-in for the LogSnag API. It
// accepts event logs and insights on the same paths as the hosted service,
// stores them in SQLite and exposes them for inspection.
package receiver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	logsnag "github.com/joshuawatkins04/logsnag_sdk"
)

// Server serves the receiver routes.
type Server struct {
	store    *Store
	token    string
	logger   *slog.Logger
	registry *prometheus.Registry
	payloads *prometheus.CounterVec
	engine   *gin.Engine
	now      func() time.Time
}

// New builds a receiver backed by store. An empty token accepts any bearer
// token. A nil registry gets a private one.
func New(store *Store, token string, logger *slog.Logger, registry *prometheus.Registry) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	payloads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "logsnag",
		Subsystem: "receiver",
		Name:      "payloads_total",
		Help:      "Payloads handled by the receiver by kind and outcome.",
	}, []string{"kind", "outcome"})
	if err := registry.Register(payloads); err != nil {
		return nil, fmt.Errorf("register receiver metrics: %w", err)
	}

	s := &Server{
		store:    store,
		token:    token,
		logger:   logger,
		registry: registry,
		payloads: payloads,
		now:      time.Now,
	}
	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	v1 := r.Group("/v1", s.requireToken())
	v1.POST("/log", s.handleLog)
	v1.POST("/insight", s.handleInsight)
	v1.GET("/logs", s.handleListLogs)
	v1.GET("/insights", s.handleListInsights)

	return r
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("receiver listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown receiver: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

func (s *Server) requireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" || (s.token != "" && token != s.token) {
			s.logger.Warn("rejected request", "path", c.Request.URL.Path, "reason", "invalid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleLog(c *gin.Context) {
	var log logsnag.Log
	if err := c.ShouldBindJSON(&log); err != nil {
		s.reject(c, "log", fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if field := missingLogField(log); field != "" {
		s.reject(c, "log", field+" is required")
		return
	}

	stored, err := s.store.InsertLog(c.Request.Context(), log, s.now())
	if err != nil {
		s.fail(c, "log", err)
		return
	}

	s.payloads.WithLabelValues("log", "accepted").Inc()
	s.logger.Info("accepted log", "project", log.Project, "channel", log.Channel, "event", log.Event, "id", stored.ID)
	c.JSON(http.StatusOK, stored)
}

func (s *Server) handleInsight(c *gin.Context) {
	var insight logsnag.Insight
	if err := c.ShouldBindJSON(&insight); err != nil {
		s.reject(c, "insight", fmt.Sprintf("invalid JSON: %v", err))
		return
	}
	if field := missingInsightField(insight); field != "" {
		s.reject(c, "insight", field+" is required")
		return
	}

	stored, err := s.store.UpsertInsight(c.Request.Context(), insight, s.now())
	if err != nil {
		s.fail(c, "insight", err)
		return
	}

	s.payloads.WithLabelValues("insight", "accepted").Inc()
	s.logger.Info("accepted insight", "project", insight.Project, "title", insight.Title, "value", insight.Value.String())
	c.JSON(http.StatusOK, stored)
}

func (s *Server) handleListLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 1000 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	logs, total, err := s.store.ListLogs(c.Request.Context(), limit, offset)
	if err != nil {
		s.fail(c, "log", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "total": total})
}

func (s *Server) handleListInsights(c *gin.Context) {
	insights, err := s.store.ListInsights(c.Request.Context())
	if err != nil {
		s.fail(c, "insight", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": insights})
}

func (s *Server) reject(c *gin.Context, kind, message string) {
	s.payloads.WithLabelValues(kind, "rejected").Inc()
	s.logger.Warn("rejected payload", "kind", kind, "reason", message)
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}

func (s *Server) fail(c *gin.Context, kind string, err error) {
	s.payloads.WithLabelValues(kind, "failed").Inc()
	s.logger.Error("store failure", "kind", kind, "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
}

func missingLogField(log logsnag.Log) string {
	switch {
	case log.Project == "":
		return "project"
	case log.Channel == "":
		return "channel"
	case log.Event == "":
		return "event"
	}
	return ""
}

func missingInsightField(insight logsnag.Insight) string {
	switch {
	case insight.Project == "":
		return "project"
	case insight.Title == "":
		return "title"
	case insight.Value.Kind() == logsnag.KindInvalid:
		return "value"
	}
	return ""
}
