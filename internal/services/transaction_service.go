// Package services orchestrates the stores, the rule engine, and the
// optional suggestion collaborator behind the operations callers use.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"budget/internal/core"
	"budget/internal/rules"
	"budget/internal/storage"
	"budget/internal/suggest"
)

type TransactionService struct {
	store     *storage.Store
	engine    *rules.Engine
	suggester suggest.Suggester // nil when AI suggestions are disabled
}

func NewTransactionService(store *storage.Store, engine *rules.Engine, suggester suggest.Suggester) *TransactionService {
	return &TransactionService{
		store:     store,
		engine:    engine,
		suggester: suggester,
	}
}

// Add persists a transaction. When the caller supplies no category the
// service consults the rule engine first and then, if available, the
// suggestion collaborator; a transaction never stays blank, it falls back
// to the Uncategorized sentinel.
func (s *TransactionService) Add(ctx context.Context, t core.Transaction) (int64, error) {
	if t.Category == "" {
		category, err := s.categorize(ctx, t)
		if err != nil {
			return 0, err
		}
		t.Category = category
	}
	return s.store.AddTransaction(ctx, t)
}

func (s *TransactionService) categorize(ctx context.Context, t core.Transaction) (string, error) {
	amount := t.Amount
	category, ok, err := s.engine.Resolve(ctx, t.Description, &amount)
	if err != nil {
		return "", fmt.Errorf("resolve category: %w", err)
	}
	if ok {
		return category, nil
	}

	if s.suggester == nil {
		return core.Uncategorized, nil
	}

	known, err := s.store.AllCategories(ctx)
	if err != nil {
		return "", fmt.Errorf("list known categories: %w", err)
	}
	suggested, err := s.suggester.Suggest(ctx, t.Description, t.Amount, known)
	if err != nil {
		slog.WarnContext(ctx, "category suggestion failed", "description", t.Description, "error", err)
		return core.Uncategorized, nil
	}
	if suggested == "" {
		return core.Uncategorized, nil
	}
	return suggested, nil
}

// ImportSummary reports the outcome of a bulk import pass.
type ImportSummary struct {
	Imported int
	Skipped  int
	Total    int
}

// Import persists collaborator-parsed transactions through the same
// categorization path as Add. A row that fails to persist is counted and
// logged but does not abort the batch; rows already committed stay
// committed. This is the one tolerated partial failure in the system.
func (s *TransactionService) Import(ctx context.Context, txs []core.Transaction) (ImportSummary, error) {
	summary := ImportSummary{Total: len(txs)}
	for i, t := range txs {
		if _, err := s.Add(ctx, t); err != nil {
			summary.Skipped++
			slog.WarnContext(ctx, "import row skipped",
				"row", i+1, "description", t.Description, "error", err)
			continue
		}
		summary.Imported++
	}
	slog.InfoContext(ctx, "import finished",
		"imported", summary.Imported, "skipped", summary.Skipped, "total", summary.Total)
	return summary, nil
}
