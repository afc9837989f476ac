package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-advisor/internal/common"
	"github.com/Veraticus/spice-advisor/internal/config"
)

var (
	cfgFile   string
	version   = "dev"
	appConfig *config.Config
	logCloser io.Closer
	rootCmd   = &cobra.Command{
		Use:   "advisor",
		Short: "💬 AI financial advisor and usage analytics",
		Long: `advisor: an AI assistant for your personal finances.

Ask questions about your spending, get proactive warnings about budgets
and unusual months, and keep an eye on how you use the assistant.`,
		PersistentPreRunE:  initConfig,
		PersistentPostRunE: closeLogs,
		SilenceUsage:       true,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/advisor/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to a rotated file instead of stderr")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("logging.file", rootCmd.PersistentFlags().Lookup("log-file"))

	// Add commands
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(insightsCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(analyticsCmd())
	rootCmd.AddCommand(notificationsCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel() // Always cleanup

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	loadDotEnv()

	// Set up config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(config.DefaultConfigDir())
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	config.SetDefaults(viper.GetViper())
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	appConfig = cfg

	closer, err := common.SetupLogger(cfg.LogOptions())
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	logCloser = closer

	return nil
}

// loadDotEnv reads .env files from the config directory and the working
// directory. Variables already set in the environment win.
func loadDotEnv() {
	paths := []string{filepath.Join(config.DefaultConfigDir(), ".env")}
	if wd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(wd, ".env"))
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to load .env file", "path", path, "error", err)
		}
	}
}

func closeLogs(_ *cobra.Command, _ []string) error {
	if logCloser == nil {
		return nil
	}
	return logCloser.Close()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "advisor %s\n", version)
		},
	}
}
