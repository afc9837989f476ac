package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-advisor/internal/config"
	"github.com/Veraticus/spice-advisor/internal/finctx"
	"github.com/Veraticus/spice-advisor/internal/model"
	"github.com/Veraticus/spice-advisor/internal/ofx"
)

// addContextFlags registers the flags that select a financial context source.
func addContextFlags(cmd *cobra.Command) {
	cmd.Flags().String("context", "", "JSON file holding a financial context")
	cmd.Flags().String("ofx", "", "OFX/QFX statement to summarize into a financial context")
	cmd.MarkFlagsMutuallyExclusive("context", "ofx")
}

// loadContext builds the financial context selected by the command's flags.
// Without either flag an empty context for the configured user is returned.
func loadContext(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (model.FinancialContext, error) {
	contextPath, _ := cmd.Flags().GetString("context")
	ofxPath, _ := cmd.Flags().GetString("ofx")

	switch {
	case contextPath != "":
		fc, err := finctx.LoadFile(config.ExpandPath(contextPath))
		if err != nil {
			return model.FinancialContext{}, err
		}
		if fc.UserID == "" {
			fc.UserID = cfg.Context.UserID
		}
		return fc, nil

	case ofxPath != "":
		stmt, err := ofx.NewParser(slog.Default()).ParseFile(ctx, config.ExpandPath(ofxPath))
		if err != nil {
			return model.FinancialContext{}, fmt.Errorf("failed to import statement: %w", err)
		}
		opts := cfg.BuildOptions()
		opts.Period = stmt.Period
		fc, err := finctx.FromTransactions(stmt.Transactions, opts)
		if err != nil {
			return model.FinancialContext{}, fmt.Errorf("failed to summarize statement: %w", err)
		}
		slog.Debug("Built financial context from statement",
			"accounts", len(stmt.Accounts),
			"transactions", fc.Transactions.Total)
		return fc, nil

	default:
		return model.FinancialContext{UserID: cfg.Context.UserID}, nil
	}
}
