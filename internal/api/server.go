// Package api exposes the advisor and analytics services over a JSON HTTP API
// for the dashboard frontend.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/spice-advisor/internal/advisor"
	"github.com/Veraticus/spice-advisor/internal/common"
	"github.com/Veraticus/spice-advisor/internal/model"
)

// Advisor is the AI orchestration surface served by the API.
type Advisor interface {
	Configure(ctx context.Context, update model.ConfigUpdate) (model.ProviderConfig, error)
	GetConfig(ctx context.Context) model.ProviderConfig
	IsConfigured(ctx context.Context) bool
	Analyze(ctx context.Context, req advisor.AnalysisRequest) (*advisor.AnalysisResponse, error)
	Chat(ctx context.Context, message string, fc model.FinancialContext) (string, error)
	GetConversation(ctx context.Context) []model.ConversationMessage
	ClearConversation(ctx context.Context)
	GenerateProactiveInsights(ctx context.Context, fc model.FinancialContext) []model.Insight
	GetInsights(ctx context.Context) []model.Insight
}

// Analytics is the usage tracking surface served by the API.
type Analytics interface {
	TrackEvent(ctx context.Context, eventType model.EventType, meta *model.EventMetadata)
	StartChatSession(ctx context.Context)
	EndChatSession(ctx context.Context)
	TrackMessage(ctx context.Context)
	GetUsageStats(ctx context.Context) model.UsageStats
	GetRecentEvents(ctx context.Context, limit int) []model.AnalyticsEvent
	ClearAnalytics(ctx context.Context) error
}

// Inbox lists persisted notifications.
type Inbox interface {
	List(ctx context.Context) ([]model.Notification, error)
	Clear(ctx context.Context) error
}

// Deps contains the services the API serves.
type Deps struct {
	Advisor   Advisor
	Analytics Analytics
	Inbox     Inbox
	Logger    *slog.Logger
}

// Validate ensures all required dependencies are provided.
func (d *Deps) Validate() error {
	if d.Advisor == nil {
		return fmt.Errorf("advisor dependency is required")
	}
	if d.Analytics == nil {
		return fmt.Errorf("analytics dependency is required")
	}
	if d.Inbox == nil {
		return fmt.Errorf("inbox dependency is required")
	}
	return nil
}

// Server routes HTTP requests to the services.
type Server struct {
	deps   Deps
	engine *gin.Engine
	logger *slog.Logger
}

// NewServer builds the router.
func NewServer(deps Deps) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}

	s := &Server{
		deps:   deps,
		engine: gin.New(),
		logger: common.SourceLogger(deps.Logger, "api"),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api")

	api.GET("/config", s.getConfig)
	api.PUT("/config", s.putConfig)

	api.POST("/chat", s.postChat)
	api.GET("/chat/history", s.getHistory)
	api.DELETE("/chat/history", s.deleteHistory)
	api.POST("/analyze", s.postAnalyze)

	api.GET("/insights", s.getInsights)
	api.POST("/insights/proactive", s.postProactive)

	api.POST("/analytics/events", s.postEvent)
	api.POST("/analytics/session/start", s.postSessionStart)
	api.POST("/analytics/session/end", s.postSessionEnd)
	api.GET("/analytics/stats", s.getStats)
	api.GET("/analytics/events", s.getEvents)
	api.DELETE("/analytics", s.deleteAnalytics)

	api.GET("/notifications", s.getNotifications)
	api.DELETE("/notifications", s.deleteNotifications)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then drains
// in-flight requests for up to ten seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}
	s.logger.Info("HTTP API stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
