package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-advisor/internal/advisor"
	"github.com/Veraticus/spice-advisor/internal/cli"
	"github.com/Veraticus/spice-advisor/internal/common"
	"github.com/Veraticus/spice-advisor/internal/model"
	"github.com/Veraticus/spice-advisor/internal/tui"
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the advisor",
		Long: `Open an interactive chat with the advisor. The conversation is kept
between runs; use 'advisor history clear' to start over.

Pass --message for a single turn or --plain for a line-based prompt
that works without a full-screen terminal.`,
		RunE: runChat,
	}

	cmd.Flags().StringP("message", "m", "", "send a single message and print the answer")
	cmd.Flags().Bool("plain", false, "use a line-based prompt instead of the full-screen interface")
	addContextFlags(cmd)

	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
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

	message, _ := cmd.Flags().GetString("message")
	plain, _ := cmd.Flags().GetBool("plain")

	switch {
	case strings.TrimSpace(message) != "":
		return chatOnce(ctx, cmd.OutOrStdout(), a, message, fc)
	case plain:
		return chatPlain(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), a, fc)
	default:
		return tui.Run(ctx, tui.Config{
			Chat:    a.advisor,
			Tracker: a.analytics,
			Context: fc,
		})
	}
}

func chatOnce(ctx context.Context, out io.Writer, a *app, message string, fc model.FinancialContext) error {
	answer, err := a.advisor.Chat(ctx, message, fc)
	if err != nil {
		return describeChatError(err)
	}
	a.analytics.TrackMessage(ctx)
	fmt.Fprintln(out, answer)
	return nil
}

// chatPlain runs a read-answer loop over in until EOF, "exit", or an interrupt.
func chatPlain(ctx context.Context, in io.Reader, out io.Writer, a *app, fc model.FinancialContext) error {
	handler := cli.NewInterruptHandler(out, "\nGoodbye!")
	ctx, stop := handler.Watch(ctx)
	defer stop()

	a.analytics.StartChatSession(ctx)
	defer a.analytics.EndChatSession(context.WithoutCancel(ctx))

	fmt.Fprintln(out, cli.FormatTitle(cli.RobotIcon, "Financial advisor"))
	fmt.Fprintln(out, cli.SubtleStyle.Render("Type a question, or 'exit' to leave."))

	reader := cli.NewLineReader(in)
	for {
		fmt.Fprint(out, cli.UserStyle.Render("you › "))
		line, err := reader.ReadLine(ctx)
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, cli.ErrInputCancelled):
			return nil
		case err != nil:
			return fmt.Errorf("failed to read input: %w", err)
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		answer, err := a.advisor.Chat(ctx, line, fc)
		if err != nil {
			if handler.WasInterrupted() {
				return nil
			}
			fmt.Fprintln(out, cli.FormatError(describeChatError(err).Error()))
			continue
		}
		a.analytics.TrackMessage(ctx)
		fmt.Fprintf(out, "%s %s\n\n", cli.AssistantStyle.Render("advisor ›"), answer)
	}
}

func askCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a one-off question without touching the chat history",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
	addContextFlags(cmd)
	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	resp, err := a.advisor.Analyze(ctx, advisor.AnalysisRequest{
		Query:   strings.Join(args, " "),
		Context: fc,
	})
	if err != nil {
		return describeChatError(err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, resp.Answer)
	if len(resp.Insights) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, cli.RenderInsights(resp.Insights))
	}
	fmt.Fprintln(out, cli.SubtleStyle.Render(fmt.Sprintf("%s · %d tokens", resp.Model, resp.TokensUsed)))
	return nil
}

// describeChatError adds a next step to errors the user can fix.
func describeChatError(err error) error {
	var provider *common.ProviderError
	switch {
	case common.IsConfigurationError(err):
		return common.NewUserError("No API key configured. Run: advisor config set --api-key <key>", err)
	case errors.As(err, &provider) && (provider.StatusCode == 401 || provider.StatusCode == 403):
		return common.NewUserError("The provider rejected the API key. Check it with: advisor config show", err)
	default:
		return err
	}
}
