package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-advisor/internal/cli"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear the chat history",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored conversation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderHistory(a.advisor.GetConversation(ctx)))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the stored conversation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			a.advisor.ClearConversation(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Conversation cleared"))
			return nil
		},
	})

	return cmd
}
