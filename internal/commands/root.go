// Package commands wires the CLI surface onto the core stores, the rule
// engine, and the reporting code.
package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"budget/internal/config"
	"budget/internal/rules"
	"budget/internal/services"
	"budget/internal/storage"
	"budget/internal/suggest"
)

// NewRootCommand creates the root CLI command with all subcommands
// registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "budget",
		Short: "Personal budget tracker with rule-based categorization",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newAddCommand(),
		newListCommand(),
		newImportCommand(),
		newDeleteCommand(),
		newIgnoreCommand(),
		newCategoryCommand(),
		newRuleCommand(),
		newReportCommand(),
	)

	return rootCmd
}

// app bundles everything an invocation needs. Opened per command run and
// closed on every exit path.
type app struct {
	cfg     *config.Config
	store   *storage.Store
	engine  *rules.Engine
	service *services.TransactionService
	gemini  *suggest.Gemini
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	engine := rules.NewEngine(store)

	var suggester suggest.Suggester
	var gemini *suggest.Gemini
	if cfg.AIEnabled() {
		gemini, err = suggest.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			// Suggestions are optional; the core never depends on the oracle.
			slog.WarnContext(ctx, "AI suggestions disabled", "error", err)
		} else {
			suggester = gemini
		}
	}

	return &app{
		cfg:     cfg,
		store:   store,
		engine:  engine,
		service: services.NewTransactionService(store, engine, suggester),
		gemini:  gemini,
	}, nil
}

func (a *app) Close() {
	if a.gemini != nil {
		if err := a.gemini.Close(); err != nil {
			slog.Warn("close gemini client", "error", err)
		}
	}
	if err := a.store.Close(); err != nil {
		slog.Warn("close store", "error", err)
	}
}
