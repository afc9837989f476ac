package config

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-advisor/internal/advisor"
	"github.com/Veraticus/spice-advisor/internal/common"
	"github.com/Veraticus/spice-advisor/internal/finctx"
)

// EnvPrefix namespaces environment overrides, e.g. ADVISOR_LOGGING_LEVEL.
const EnvPrefix = "ADVISOR"

// Config is the full application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Server   ServerConfig   `mapstructure:"server"`
	Context  ContextConfig  `mapstructure:"context"`
	Insights InsightsConfig `mapstructure:"insights"`
}

// DatabaseConfig locates the SQLite store.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig controls the slog handler and optional log file rotation.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// InsightsConfig tunes the proactive detectors.
type InsightsConfig struct {
	UnusualSpendingThreshold float64 `mapstructure:"unusual_spending_threshold"`
	BudgetWarningThreshold   float64 `mapstructure:"budget_warning_threshold"`
	NotificationsEnabled     bool    `mapstructure:"notifications_enabled"`
}

// ContextConfig supplies the values an OFX import cannot.
type ContextConfig struct {
	UserID                 string                `mapstructure:"user_id"`
	Rules                  []finctx.CategoryRule `mapstructure:"rules"`
	Budget                 float64               `mapstructure:"budget"`
	AverageMonthlySpending float64               `mapstructure:"average_monthly_spending"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	defaults := advisor.DefaultSettings()

	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("insights.notifications_enabled", defaults.NotificationsEnabled)
	v.SetDefault("insights.unusual_spending_threshold", defaults.UnusualSpendingThreshold)
	v.SetDefault("insights.budget_warning_threshold", defaults.BudgetWarningThreshold)
	v.SetDefault("context.user_id", "local")
	v.SetDefault("context.budget", 0)
	v.SetDefault("context.average_monthly_spending", 0)
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}

	cfg.Database.Path = ExpandPath(cfg.Database.Path)
	cfg.Logging.File = ExpandPath(cfg.Logging.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the services cannot work with.
func (c *Config) Validate() error {
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is empty", common.ErrInvalidConfig)
	}
	if c.Insights.UnusualSpendingThreshold <= 0 {
		return fmt.Errorf("%w: insights.unusual_spending_threshold must be positive", common.ErrInvalidConfig)
	}
	if c.Insights.BudgetWarningThreshold <= 0 || c.Insights.BudgetWarningThreshold > 100 {
		return fmt.Errorf("%w: insights.budget_warning_threshold must be in (0, 100]", common.ErrInvalidConfig)
	}
	if c.Context.Budget < 0 || c.Context.AverageMonthlySpending < 0 {
		return fmt.Errorf("%w: context amounts must not be negative", common.ErrInvalidConfig)
	}
	return nil
}

// AdvisorSettings converts the insights section for advisor.NewService.
func (c *Config) AdvisorSettings() advisor.Settings {
	return advisor.Settings{
		NotificationsEnabled:     c.Insights.NotificationsEnabled,
		UnusualSpendingThreshold: c.Insights.UnusualSpendingThreshold,
		BudgetWarningThreshold:   c.Insights.BudgetWarningThreshold,
	}
}

// LogOptions converts the logging section for common.SetupLogger.
func (c *Config) LogOptions() common.LogOptions {
	return common.LogOptions{
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		File:       c.Logging.File,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
	}
}

// BuildOptions converts the context section for finctx.FromTransactions.
func (c *Config) BuildOptions() finctx.BuildOptions {
	return finctx.BuildOptions{
		UserID:                 c.Context.UserID,
		BudgetTotal:            decimal.NewFromFloat(c.Context.Budget),
		AverageMonthlySpending: decimal.NewFromFloat(c.Context.AverageMonthlySpending),
		Rules:                  c.Context.Rules,
	}
}
