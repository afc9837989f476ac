package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-advisor/internal/api"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the advisor and analytics over HTTP",
		Long: `Start the JSON HTTP API used by the dashboard frontend. The listen
address comes from --addr or server.addr in the config file.`,
		RunE: runServe,
	}
	cmd.Flags().String("addr", "", "listen address (default from server.addr)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = appConfig.Server.Addr
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	server, err := api.NewServer(api.Deps{
		Advisor:   a.advisor,
		Analytics: a.analytics,
		Inbox:     a.inbox,
		Logger:    slog.Default(),
	})
	if err != nil {
		return err
	}

	return server.ListenAndServe(ctx, addr)
}
