package rules

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"budget/internal/core"
	"budget/internal/storage"
)

func openTestEngine(t *testing.T) (*Engine, *storage.Store) {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "budget.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewEngine(s), s
}

func money(s string) *core.Money {
	m := core.MustMoney(s)
	return &m
}

func TestResolvePriorityOrder(t *testing.T) {
	rules := []core.Rule{
		{Pattern: "A", Category: "X", Priority: 5},
		{Pattern: "A", Category: "Y", Priority: 1},
	}

	// Both patterns match; the higher priority wins.
	category, ok := Resolve(rules, "PAYMENT A-123", nil)
	require.True(t, ok)
	require.Equal(t, "X", category)
}

func TestResolveCaseInsensitiveSubstring(t *testing.T) {
	rules := []core.Rule{{Pattern: "NetFlix", Category: "Subscriptions"}}

	category, ok := Resolve(rules, "netflix.com 123", nil)
	require.True(t, ok)
	require.Equal(t, "Subscriptions", category)

	_, ok = Resolve(rules, "spotify.com", nil)
	require.False(t, ok)
}

func TestResolveAmountTolerance(t *testing.T) {
	rules := []core.Rule{{
		Pattern:   "gym",
		Category:  "Health",
		Amount:    money("15.99"),
		Tolerance: core.MustMoney("0.01"),
	}}

	// Boundary is inclusive.
	_, ok := Resolve(rules, "GYM MEMBERSHIP", money("16.00"))
	require.True(t, ok)

	_, ok = Resolve(rules, "GYM MEMBERSHIP", money("16.02"))
	require.False(t, ok)

	// An amount-bearing rule never matches without an amount to compare.
	_, ok = Resolve(rules, "GYM MEMBERSHIP", nil)
	require.False(t, ok)
}

func TestResolveEmptyRuleSet(t *testing.T) {
	_, ok := Resolve(nil, "anything", nil)
	require.False(t, ok)
}

func TestResolveIsDeterministic(t *testing.T) {
	rules := []core.Rule{
		{Pattern: "shop", Category: "Shopping", Priority: 2},
		{Pattern: "shop", Category: "Groceries", Priority: 2},
	}

	first, ok := Resolve(rules, "corner shop", nil)
	require.True(t, ok)
	for i := 0; i < 10; i++ {
		got, ok := Resolve(rules, "corner shop", nil)
		require.True(t, ok)
		require.Equal(t, first, got)
	}
}

func TestApplyToExisting(t *testing.T) {
	e, s := openTestEngine(t)
	ctx := context.Background()

	add := func(description, category string) {
		t.Helper()
		_, err := s.AddTransaction(ctx, core.Transaction{
			Date:        mustDate("2024-03-15"),
			Amount:      core.MustMoney("10"),
			Description: description,
			Category:    category,
			Type:        core.Expense,
		})
		require.NoError(t, err)
	}
	add("netflix.com", "")
	add("netflix.com", core.Uncategorized)
	add("netflix.com", "Entertainment")
	add("greengrocer", "")

	_, err := s.AddRule(ctx, core.Rule{Pattern: "netflix", Category: "Subscriptions", Tolerance: core.DefaultTolerance})
	require.NoError(t, err)

	// Default policy only touches blank and sentinel categories.
	updated, total, err := e.ApplyToExisting(ctx, OverwriteEmpty)
	require.NoError(t, err)
	require.EqualValues(t, 4, total)
	require.EqualValues(t, 2, updated)

	txs, err := s.ListAll(ctx)
	require.NoError(t, err)
	byDesc := make(map[string][]string)
	for _, tr := range txs {
		byDesc[tr.Description] = append(byDesc[tr.Description], tr.Category)
	}
	require.ElementsMatch(t, []string{"Subscriptions", "Subscriptions", "Entertainment"}, byDesc["netflix.com"])
	require.Equal(t, []string{""}, byDesc["greengrocer"])

	// A second run with nothing changed is a no-op.
	updated, _, err = e.ApplyToExisting(ctx, OverwriteEmpty)
	require.NoError(t, err)
	require.Zero(t, updated)

	// OverwriteAll also flips the manually categorized row.
	updated, _, err = e.ApplyToExisting(ctx, OverwriteAll)
	require.NoError(t, err)
	require.EqualValues(t, 1, updated)
}

func TestApplyToExistingRegistersCategories(t *testing.T) {
	e, s := openTestEngine(t)
	ctx := context.Background()

	_, err := s.AddTransaction(ctx, core.Transaction{
		Date:        mustDate("2024-03-15"),
		Amount:      core.MustMoney("9.99"),
		Description: "spotify premium",
		Type:        core.Expense,
	})
	require.NoError(t, err)
	_, err = s.AddRule(ctx, core.Rule{Pattern: "spotify", Category: "Music", Tolerance: core.DefaultTolerance})
	require.NoError(t, err)

	_, _, err = e.ApplyToExisting(ctx, OverwriteEmpty)
	require.NoError(t, err)

	names, err := s.AllCategories(ctx)
	require.NoError(t, err)
	require.Contains(t, names, "Music")
}

func mustDate(s string) (t time.Time) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
