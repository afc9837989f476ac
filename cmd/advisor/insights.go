package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-advisor/internal/cli"
)

func insightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "List or generate proactive insights",
	}
	cmd.AddCommand(insightsListCmd())
	cmd.AddCommand(insightsGenerateCmd())
	return cmd
}

func insightsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show stored insights, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderInsights(a.advisor.GetInsights(ctx)))
			return nil
		},
	}
}

func insightsGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the spending, budget, and savings detectors",
		Long: `Run the proactive detectors over a financial context. New insights are
stored and high or medium priority ones are sent to the notification inbox.

The context comes from --context (JSON) or --ofx (a bank statement).`,
		RunE: runInsightsGenerate,
	}
	addContextFlags(cmd)
	return cmd
}

func runInsightsGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	fc, err := loadContext(ctx, cmd, appConfig)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !a.advisor.Settings().NotificationsEnabled {
		fmt.Fprintln(out, cli.FormatWarning("Proactive insights are disabled (insights.notifications_enabled)"))
		return nil
	}

	insights := a.advisor.GenerateProactiveInsights(ctx, fc)
	a.analytics.TrackFeatureUsed(ctx, "proactive_insights")
	if len(insights) == 0 {
		fmt.Fprintln(out, cli.FormatSuccess("Nothing to flag right now"))
		return nil
	}
	fmt.Fprintln(out, cli.RenderInsights(insights))
	return nil
}
