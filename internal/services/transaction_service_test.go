package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"budget/internal/core"
	"budget/internal/rules"
	"budget/internal/storage"
)

type fakeSuggester struct {
	category string
	err      error
	calls    int
}

func (f *fakeSuggester) Suggest(ctx context.Context, description string, amount core.Money, known []string) (string, error) {
	f.calls++
	return f.category, f.err
}

func newTestService(t *testing.T, suggester *fakeSuggester) (*TransactionService, *storage.Store) {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "budget.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	svc := NewTransactionService(s, rules.NewEngine(s), nil)
	if suggester != nil {
		svc = NewTransactionService(s, rules.NewEngine(s), suggester)
	}
	return svc, s
}

func testTx(description, category string) core.Transaction {
	return core.Transaction{
		Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Amount:      core.MustMoney("9.99"),
		Description: description,
		Category:    category,
		Type:        core.Expense,
	}
}

func TestAddKeepsExplicitCategory(t *testing.T) {
	suggester := &fakeSuggester{category: "Wrong"}
	svc, s := newTestService(t, suggester)
	ctx := context.Background()

	_, err := svc.Add(ctx, testTx("netflix.com", "Manual"))
	require.NoError(t, err)

	txs, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Equal(t, "Manual", txs[0].Category)
	require.Zero(t, suggester.calls)
}

func TestAddResolvesThroughRulesFirst(t *testing.T) {
	suggester := &fakeSuggester{category: "Wrong"}
	svc, s := newTestService(t, suggester)
	ctx := context.Background()

	_, err := s.AddRule(ctx, core.Rule{Pattern: "netflix", Category: "Subscriptions", Tolerance: core.DefaultTolerance})
	require.NoError(t, err)

	_, err = svc.Add(ctx, testTx("NETFLIX.COM 123", ""))
	require.NoError(t, err)

	txs, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Equal(t, "Subscriptions", txs[0].Category)
	// The rule decided; the suggester was never consulted.
	require.Zero(t, suggester.calls)
}

func TestAddFallsBackToSuggester(t *testing.T) {
	suggester := &fakeSuggester{category: "Groceries"}
	svc, s := newTestService(t, suggester)
	ctx := context.Background()

	_, err := svc.Add(ctx, testTx("corner shop", ""))
	require.NoError(t, err)

	txs, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Equal(t, "Groceries", txs[0].Category)
	require.Equal(t, 1, suggester.calls)
}

func TestAddSuggesterFailureFallsToUncategorized(t *testing.T) {
	suggester := &fakeSuggester{err: errors.New("api unreachable")}
	svc, s := newTestService(t, suggester)
	ctx := context.Background()

	// A suggestion failure degrades, it never blocks the write.
	_, err := svc.Add(ctx, testTx("corner shop", ""))
	require.NoError(t, err)

	txs, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Equal(t, core.Uncategorized, txs[0].Category)
}

func TestAddWithoutSuggester(t *testing.T) {
	svc, s := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, testTx("corner shop", ""))
	require.NoError(t, err)

	txs, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Equal(t, core.Uncategorized, txs[0].Category)
}

func TestImportCountsSkippedRows(t *testing.T) {
	svc, s := newTestService(t, nil)
	ctx := context.Background()

	batch := []core.Transaction{
		testTx("row one", "Food"),
		{Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Amount: core.MustMoney("5"), Type: core.Expense}, // no description
		testTx("row three", ""),
	}

	summary, err := svc.Import(ctx, batch)
	require.NoError(t, err)
	require.Equal(t, 3, summary.Total)
	require.Equal(t, 2, summary.Imported)
	require.Equal(t, 1, summary.Skipped)

	// Committed rows stay committed despite the skipped one.
	txs, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 2)
}
