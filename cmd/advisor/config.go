package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-advisor/internal/cli"
	"github.com/Veraticus/spice-advisor/internal/model"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the AI provider configuration",
	}
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configSetCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current provider configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			cfg := a.advisor.GetConfig(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderConfig(cfg.Redacted(), cfg.APIKey != ""))
			return nil
		},
	}
}

func configSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update provider settings",
		Long: `Update one or more provider settings. Only the flags you pass are changed.

Examples:
  advisor config set --api-key AIza...
  advisor config set --provider openai --model gpt-4o-mini --api-key sk-...`,
		RunE: runConfigSet,
	}

	cmd.Flags().String("provider", "", "LLM provider (gemini, openai)")
	cmd.Flags().String("api-key", "", "provider API key")
	cmd.Flags().String("model", "", "model name")
	cmd.Flags().String("endpoint", "", "override the provider base URL")
	cmd.Flags().Int("max-tokens", 0, "maximum output tokens")
	cmd.Flags().Float64("temperature", 0, "sampling temperature")

	return cmd
}

func runConfigSet(cmd *cobra.Command, _ []string) error {
	update, err := configUpdateFromFlags(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, err := a.advisor.Configure(ctx, update)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatSuccess("Configuration saved"))
	fmt.Fprintln(out, cli.RenderConfig(cfg.Redacted(), cfg.APIKey != ""))
	return nil
}

// configUpdateFromFlags builds a partial update holding only the flags the user changed.
func configUpdateFromFlags(cmd *cobra.Command) (model.ConfigUpdate, error) {
	var update model.ConfigUpdate
	flags := cmd.Flags()

	if flags.Changed("provider") {
		provider, _ := flags.GetString("provider")
		provider = strings.ToLower(provider)
		if provider != model.ProviderGemini && provider != model.ProviderOpenAI {
			return update, fmt.Errorf("unsupported provider %q (use gemini or openai)", provider)
		}
		update.Provider = &provider
	}
	if flags.Changed("api-key") {
		key, _ := flags.GetString("api-key")
		update.APIKey = &key
	}
	if flags.Changed("model") {
		name, _ := flags.GetString("model")
		update.Model = &name
	}
	if flags.Changed("endpoint") {
		endpoint, _ := flags.GetString("endpoint")
		update.Endpoint = &endpoint
	}
	if flags.Changed("max-tokens") {
		maxTokens, _ := flags.GetInt("max-tokens")
		if maxTokens <= 0 {
			return update, fmt.Errorf("--max-tokens must be positive")
		}
		update.MaxTokens = &maxTokens
	}
	if flags.Changed("temperature") {
		temperature, _ := flags.GetFloat64("temperature")
		if temperature < 0 || temperature > 2 {
			return update, fmt.Errorf("--temperature must be between 0 and 2")
		}
		update.Temperature = &temperature
	}

	if update == (model.ConfigUpdate{}) {
		return update, fmt.Errorf("nothing to update: pass at least one flag")
	}
	return update, nil
}
