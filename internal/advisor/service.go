// Package advisor implements the AI orchestration service: provider
// configuration, prompt construction, conversation history and insight
// generation for the financial dashboard.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/spice-advisor/internal/common"
	"github.com/Veraticus/spice-advisor/internal/llm"
	"github.com/Veraticus/spice-advisor/internal/model"
	"github.com/Veraticus/spice-advisor/internal/notify"
	"github.com/Veraticus/spice-advisor/internal/service"
)

// Limits applied to persisted and prompted state.
const (
	MaxHistoryMessages = 20
	MaxInsights        = 50
	PromptHistoryTurns = 6
)

// AnswerConfidence is reported for every answer. It is a fixed heuristic, not a provider score.
const AnswerConfidence = 0.85

// Default provider settings used until the user configures their own.
const (
	DefaultModel       = "gemini-1.5-flash"
	DefaultMaxTokens   = 2048
	DefaultTemperature = 0.7
)

// DefaultConfig returns the built-in provider configuration.
func DefaultConfig() model.ProviderConfig {
	return model.ProviderConfig{
		Provider:    model.ProviderGemini,
		Model:       DefaultModel,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		Endpoint:    llm.DefaultGeminiEndpoint,
	}
}

// Settings tunes the proactive insight detectors.
type Settings struct {
	// UnusualSpendingThreshold is the percent over the monthly average that counts as an anomaly.
	UnusualSpendingThreshold float64
	// BudgetWarningThreshold is the budget usage percent that triggers a warning.
	BudgetWarningThreshold float64
	NotificationsEnabled   bool
}

// DefaultSettings returns the stock detector thresholds.
func DefaultSettings() Settings {
	return Settings{
		NotificationsEnabled:     true,
		UnusualSpendingThreshold: 30,
		BudgetWarningThreshold:   80,
	}
}

// Deps contains the collaborators required by the service.
type Deps struct {
	// Store persists config, history and insights.
	Store service.Store
	// Notifier receives medium and high priority insights. Defaults to a log notifier.
	Notifier service.Notifier
	// NewClient builds a provider client. Defaults to llm.NewClient.
	NewClient llm.Factory
	Logger    *slog.Logger
	Now       func() time.Time
}

// Validate ensures all required dependencies are provided.
func (d *Deps) Validate() error {
	if d.Store == nil {
		return fmt.Errorf("store dependency is required")
	}
	return nil
}

// AnalysisRequest is a question about a financial snapshot.
type AnalysisRequest struct {
	Query               string                      `json:"query"`
	Context             model.FinancialContext      `json:"context"`
	ConversationHistory []model.ConversationMessage `json:"conversationHistory,omitempty"`
}

// AnalysisResponse is the provider's answer plus derived insights.
type AnalysisResponse struct {
	Answer     string          `json:"answer"`
	Model      string          `json:"model"`
	Insights   []model.Insight `json:"insights"`
	Confidence float64         `json:"confidence"`
	TokensUsed int             `json:"tokensUsed"`
}

// Service orchestrates calls to the language model.
type Service struct {
	deps       Deps
	logger     *slog.Logger
	prompts    *PromptBuilder
	settings   Settings
	historyMu  sync.Mutex
	insightsMu sync.Mutex
}

// NewService creates an advisor service with the provided dependencies.
func NewService(deps Deps, settings Settings) (*Service, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}

	logger := common.SourceLogger(deps.Logger, "advisor")
	if deps.Notifier == nil {
		deps.Notifier = notify.NewLogNotifier(deps.Logger)
	}
	if deps.NewClient == nil {
		deps.NewClient = llm.NewClient
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	prompts, err := NewPromptBuilder()
	if err != nil {
		return nil, err
	}

	return &Service{
		deps:     deps,
		logger:   logger,
		prompts:  prompts,
		settings: settings,
	}, nil
}

// Settings returns the detector settings in use.
func (s *Service) Settings() Settings {
	return s.settings
}

// Configure merges update into the persisted provider config. No key format
// validation happens here; a bad key surfaces on the next call.
func (s *Service) Configure(ctx context.Context, update model.ConfigUpdate) (model.ProviderConfig, error) {
	cfg := update.Apply(s.GetConfig(ctx))

	if err := s.deps.Store.Save(ctx, service.KeyAIConfig, cfg, service.WithBackup()); err != nil {
		return model.ProviderConfig{}, fmt.Errorf("failed to save AI config: %w", err)
	}

	s.logger.Info("AI provider configured",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"has_key", cfg.APIKey != "")
	return cfg, nil
}

// GetConfig returns the persisted config, falling back to the backup copy
// and then to DefaultConfig. It never fails.
func (s *Service) GetConfig(ctx context.Context) model.ProviderConfig {
	var cfg model.ProviderConfig
	found, err := s.deps.Store.Load(ctx, service.KeyAIConfig, &cfg)
	if err == nil && found {
		return cfg
	}
	if err != nil {
		s.logger.Warn("failed to load AI config, trying backup", "error", err)
		cfg = model.ProviderConfig{}
		found, err = s.deps.Store.LoadBackup(ctx, service.KeyAIConfig, &cfg)
		if err == nil && found {
			return cfg
		}
		if err != nil {
			s.logger.Warn("failed to load AI config backup", "error", err)
		}
	}
	return DefaultConfig()
}

// IsConfigured reports whether an API key is present.
func (s *Service) IsConfigured(ctx context.Context) bool {
	return s.GetConfig(ctx).APIKey != ""
}

// Analyze asks the provider about req.Context. It fails with a
// ConfigurationError before any network call when no key is set.
func (s *Service) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResponse, error) {
	cfg := s.GetConfig(ctx)
	if cfg.APIKey == "" {
		return nil, &common.ConfigurationError{Reason: "set an API key before asking questions"}
	}

	client, err := s.deps.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	systemPrompt, err := s.prompts.SystemPrompt()
	if err != nil {
		return nil, err
	}
	userPrompt, err := s.prompts.UserPrompt(req.Query, req.Context, req.ConversationHistory)
	if err != nil {
		return nil, err
	}

	start := s.deps.Now()
	resp, err := client.Generate(ctx, llm.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  cfg.Temperature,
		MaxTokens:    cfg.MaxTokens,
	})
	if err != nil {
		s.logger.Error("analysis request failed",
			"provider", client.Name(),
			"error", err)
		return nil, err
	}

	modelName := resp.Model
	if modelName == "" {
		modelName = cfg.Model
	}

	s.logger.Debug("analysis completed",
		"provider", client.Name(),
		"model", modelName,
		"tokens", resp.TokensUsed,
		"duration", s.deps.Now().Sub(start))

	insights := s.extractInsights(resp.Text)
	if insights == nil {
		insights = []model.Insight{}
	}

	return &AnalysisResponse{
		Answer:     resp.Text,
		Model:      modelName,
		Confidence: AnswerConfidence,
		TokensUsed: resp.TokensUsed,
		Insights:   insights,
	}, nil
}

// Chat runs one conversational turn. History is read, extended and written
// under a lock so concurrent turns cannot drop each other's messages. When
// Analyze fails the error is returned unchanged and history is not touched.
func (s *Service) Chat(ctx context.Context, message string, fc model.FinancialContext) (string, error) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	prior := s.loadHistory(ctx)
	history := append(prior, model.ConversationMessage{
		ID:        uuid.New().String(),
		Role:      model.RoleUser,
		Content:   message,
		Timestamp: s.deps.Now(),
	})

	resp, err := s.Analyze(ctx, AnalysisRequest{
		Query:               message,
		Context:             fc,
		ConversationHistory: prior,
	})
	if err != nil {
		return "", err
	}

	history = append(history, model.ConversationMessage{
		ID:        uuid.New().String(),
		Role:      model.RoleAssistant,
		Content:   resp.Answer,
		Timestamp: s.deps.Now(),
		Metadata: &model.MessageMetadata{
			Tokens: resp.TokensUsed,
			Model:  resp.Model,
		},
	})
	history = tail(history, MaxHistoryMessages)

	if err := s.deps.Store.Save(ctx, service.KeyConversationHistory, history); err != nil {
		s.logger.Error("failed to save conversation history", "error", err)
	}

	return resp.Answer, nil
}

// GetConversation returns the persisted history, oldest first.
func (s *Service) GetConversation(ctx context.Context) []model.ConversationMessage {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	return s.loadHistory(ctx)
}

// ClearConversation empties the persisted history. Errors are logged.
func (s *Service) ClearConversation(ctx context.Context) {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	if err := s.deps.Store.Save(ctx, service.KeyConversationHistory, []model.ConversationMessage{}); err != nil {
		s.logger.Error("failed to clear conversation history", "error", err)
		return
	}
	s.logger.Info("conversation history cleared")
}

// GetInsights returns persisted insights, newest first, or an empty list.
func (s *Service) GetInsights(ctx context.Context) []model.Insight {
	s.insightsMu.Lock()
	defer s.insightsMu.Unlock()
	return s.loadInsights(ctx)
}

func (s *Service) loadHistory(ctx context.Context) []model.ConversationMessage {
	var history []model.ConversationMessage
	if _, err := s.deps.Store.Load(ctx, service.KeyConversationHistory, &history); err != nil {
		s.logger.Warn("failed to load conversation history", "error", err)
		return []model.ConversationMessage{}
	}
	if history == nil {
		history = []model.ConversationMessage{}
	}
	return history
}

func (s *Service) loadInsights(ctx context.Context) []model.Insight {
	var insights []model.Insight
	if _, err := s.deps.Store.Load(ctx, service.KeyInsights, &insights); err != nil {
		s.logger.Warn("failed to load insights", "error", err)
		return []model.Insight{}
	}
	if insights == nil {
		insights = []model.Insight{}
	}
	return insights
}

// saveInsights prepends fresh to the persisted list and applies the cap.
func (s *Service) saveInsights(ctx context.Context, fresh []model.Insight) {
	s.insightsMu.Lock()
	defer s.insightsMu.Unlock()

	all := make([]model.Insight, 0, len(fresh)+MaxInsights)
	all = append(all, fresh...)
	all = append(all, s.loadInsights(ctx)...)
	if len(all) > MaxInsights {
		all = all[:MaxInsights]
	}

	if err := s.deps.Store.Save(ctx, service.KeyInsights, all); err != nil {
		s.logger.Error("failed to save insights", "error", err)
	}
}

func (s *Service) newInsight(insight model.Insight) model.Insight {
	insight.ID = uuid.New().String()
	insight.Timestamp = s.deps.Now()
	return insight
}
