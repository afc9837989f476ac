package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Veraticus/spice-advisor/internal/advisor"
	"github.com/Veraticus/spice-advisor/internal/model"
)

// DefaultEventLimit applies when GET /api/analytics/events has no limit.
const DefaultEventLimit = 50

type configResponse struct {
	Config     model.ProviderConfig `json:"config"`
	Configured bool                 `json:"configured"`
}

type chatRequest struct {
	Message string                 `json:"message"`
	Context model.FinancialContext `json:"context"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

type eventRequest struct {
	Metadata *model.EventMetadata `json:"metadata,omitempty"`
	Type     string               `json:"type"`
}

func (s *Server) getConfig(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, configResponse{
		Config:     s.deps.Advisor.GetConfig(ctx).Redacted(),
		Configured: s.deps.Advisor.IsConfigured(ctx),
	})
}

func (s *Server) putConfig(c *gin.Context) {
	var update model.ConfigUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, "invalid config body: "+err.Error())
		return
	}
	if update.Provider != nil {
		p := strings.ToLower(*update.Provider)
		if p != model.ProviderGemini && p != model.ProviderOpenAI {
			badRequest(c, "unsupported provider: "+*update.Provider)
			return
		}
		update.Provider = &p
	}

	cfg, err := s.deps.Advisor.Configure(c.Request.Context(), update)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, configResponse{Config: cfg.Redacted(), Configured: cfg.APIKey != ""})
}

func (s *Server) postChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid chat body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		badRequest(c, "message is required")
		return
	}

	answer, err := s.deps.Advisor.Chat(c.Request.Context(), req.Message, req.Context)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.deps.Analytics.TrackMessage(c.Request.Context())
	c.JSON(http.StatusOK, chatResponse{Answer: answer})
}

func (s *Server) getHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"messages": s.deps.Advisor.GetConversation(c.Request.Context())})
}

func (s *Server) deleteHistory(c *gin.Context) {
	s.deps.Advisor.ClearConversation(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (s *Server) postAnalyze(c *gin.Context) {
	var req advisor.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid analysis body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		badRequest(c, "query is required")
		return
	}

	resp, err := s.deps.Advisor.Analyze(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getInsights(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"insights": s.deps.Advisor.GetInsights(c.Request.Context())})
}

func (s *Server) postProactive(c *gin.Context) {
	var fc model.FinancialContext
	if err := c.ShouldBindJSON(&fc); err != nil {
		badRequest(c, "invalid financial context: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": s.deps.Advisor.GenerateProactiveInsights(c.Request.Context(), fc)})
}

func (s *Server) postEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid event body: "+err.Error())
		return
	}
	eventType, ok := model.ParseEventType(req.Type)
	if !ok {
		badRequest(c, "unknown event type: "+req.Type)
		return
	}

	s.deps.Analytics.TrackEvent(c.Request.Context(), eventType, req.Metadata)
	c.Status(http.StatusAccepted)
}

func (s *Server) postSessionStart(c *gin.Context) {
	s.deps.Analytics.StartChatSession(c.Request.Context())
	c.Status(http.StatusAccepted)
}

func (s *Server) postSessionEnd(c *gin.Context) {
	s.deps.Analytics.EndChatSession(c.Request.Context())
	c.Status(http.StatusAccepted)
}

func (s *Server) getStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Analytics.GetUsageStats(c.Request.Context()))
}

func (s *Server) getEvents(c *gin.Context) {
	limit := DefaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, gin.H{"events": s.deps.Analytics.GetRecentEvents(c.Request.Context(), limit)})
}

func (s *Server) deleteAnalytics(c *gin.Context) {
	if err := s.deps.Analytics.ClearAnalytics(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getNotifications(c *gin.Context) {
	list, err := s.deps.Inbox.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (s *Server) deleteNotifications(c *gin.Context) {
	if err := s.deps.Inbox.Clear(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
