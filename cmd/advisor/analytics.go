package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-advisor/internal/cli"
	"github.com/Veraticus/spice-advisor/internal/model"
)

func analyticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Inspect or record usage analytics",
	}
	cmd.AddCommand(analyticsStatsCmd())
	cmd.AddCommand(analyticsEventsCmd())
	cmd.AddCommand(analyticsTrackCmd())
	cmd.AddCommand(analyticsClearCmd())
	return cmd
}

func analyticsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the usage rollup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderStats(a.analytics.GetUsageStats(ctx)))
			return nil
		},
	}
}

func analyticsEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print recent events, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}

			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderEvents(a.analytics.GetRecentEvents(ctx, limit)))
			return nil
		},
	}
	cmd.Flags().IntP("limit", "n", 20, "number of events to show")
	return cmd
}

func analyticsTrackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track <event-type>",
		Short: "Record an analytics event",
		Long: `Record an analytics event. Valid types are chat_open, chat_close,
message_sent, insight_viewed, insight_dismissed and feature_used.

Examples:
  advisor analytics track feature_used --feature export
  advisor analytics track insight_viewed --priority high --category budget`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyticsTrack,
	}

	cmd.Flags().String("feature", "", "feature name (feature_used)")
	cmd.Flags().String("priority", "", "insight priority: low, medium, high")
	cmd.Flags().String("category", "", "insight category")
	cmd.Flags().Duration("duration", 0, "session duration (chat_close)")
	cmd.Flags().Int("count", 0, "message count")

	return cmd
}

func runAnalyticsTrack(cmd *cobra.Command, args []string) error {
	eventType, ok := model.ParseEventType(args[0])
	if !ok {
		return fmt.Errorf("unknown event type %q", args[0])
	}
	meta, err := eventMetadataFromFlags(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	a.analytics.TrackEvent(ctx, eventType, meta)
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Recorded "+string(eventType)))
	return nil
}

// eventMetadataFromFlags returns nil when no metadata flag was set.
func eventMetadataFromFlags(cmd *cobra.Command) (*model.EventMetadata, error) {
	var meta model.EventMetadata
	flags := cmd.Flags()

	meta.FeatureName, _ = flags.GetString("feature")
	meta.InsightCategory, _ = flags.GetString("category")
	meta.MessageCount, _ = flags.GetInt("count")

	var duration time.Duration
	duration, _ = flags.GetDuration("duration")
	if duration < 0 {
		return nil, fmt.Errorf("--duration must not be negative")
	}
	meta.SessionDuration = duration

	if raw, _ := flags.GetString("priority"); raw != "" {
		priority := model.Priority(raw)
		if !priority.IsValid() {
			return nil, fmt.Errorf("invalid priority %q (use low, medium, or high)", raw)
		}
		meta.InsightPriority = priority
	}

	if meta == (model.EventMetadata{}) {
		return nil, nil
	}
	return &meta, nil
}

func analyticsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all events and the rollup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.analytics.ClearAnalytics(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Analytics cleared"))
			return nil
		},
	}
}
