package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"budget/internal/core"
)

func TestAddAndListRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := tx("2024-03-15", "50.25", "Grocery run", "Groceries", core.Expense)
	id, err := s.AddTransaction(ctx, in)
	require.NoError(t, err)
	require.Positive(t, id)

	txs, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)

	got := txs[0]
	require.Equal(t, id, got.ID)
	require.True(t, got.Date.Equal(in.Date), "date %v != %v", got.Date, in.Date)
	require.True(t, got.Amount.Equal(in.Amount))
	require.Equal(t, in.Description, got.Description)
	require.Equal(t, in.Category, got.Category)
	require.Equal(t, in.Type, got.Type)
	require.False(t, got.Ignored)
}

func TestAddRejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	bad := tx("2024-03-15", "50", "", "Groceries", core.Expense)
	_, err := s.AddTransaction(ctx, bad)
	require.ErrorIs(t, err, core.ErrEmptyDescription)

	// Nothing may be written when validation fails.
	txs, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Empty(t, txs)
}

func TestMonthWindowBoundaries(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, in := range []core.Transaction{
		tx("2023-12-31", "10", "new year's eve", "Fun", core.Expense),
		tx("2024-01-01", "20", "new year's day", "Fun", core.Expense),
		tx("2024-01-31", "30", "end of january", "Fun", core.Expense),
		tx("2024-02-01", "40", "start of february", "Fun", core.Expense),
	} {
		_, err := s.AddTransaction(ctx, in)
		require.NoError(t, err)
	}

	jan, err := s.ListForMonth(ctx, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, jan, 2)
	require.Equal(t, "new year's day", jan[0].Description)
	require.Equal(t, "end of january", jan[1].Description)

	dec, err := s.ListForMonth(ctx, time.Date(2023, 12, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, dec, 1)
	require.Equal(t, "new year's eve", dec[0].Description)
}

func TestYearWindowIsUnionOfMonths(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	dates := []string{"2024-01-05", "2024-06-15", "2024-12-31", "2023-12-31", "2025-01-01"}
	for i, d := range dates {
		_, err := s.AddTransaction(ctx, tx(d, "10", "spend", "Misc", core.Expense))
		require.NoError(t, err, "transaction %d", i)
	}

	year, err := s.ListForYear(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, year, 3)

	// Every month window of 2024 together must equal the year window.
	var monthly []core.Transaction
	for m := time.January; m <= time.December; m++ {
		txs, err := s.ListForMonth(ctx, time.Date(2024, m, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		monthly = append(monthly, txs...)
	}
	require.Equal(t, len(year), len(monthly))
	for i := range year {
		require.Equal(t, year[i].ID, monthly[i].ID)
	}
}

func TestUpdateCategory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.AddTransaction(ctx, tx("2024-03-15", "9.99", "netflix.com", "", core.Expense))
	require.NoError(t, err)

	require.NoError(t, s.UpdateCategory(ctx, id, "Subscriptions"))

	txs, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Equal(t, "Subscriptions", txs[0].Category)

	// The reassigned name must now be a known category.
	names, err := s.AllCategories(ctx)
	require.NoError(t, err)
	require.Contains(t, names, "Subscriptions")

	err = s.UpdateCategory(ctx, id+100, "Anything")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateCategoryByMatchComparesAmountsNumerically(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	_, err := s.AddTransaction(ctx, core.Transaction{
		Date: date, Amount: core.MustMoney("16.00"), Description: "gym", Type: core.Expense,
	})
	require.NoError(t, err)

	// 16.0 and 16.00 are the same value; the match must succeed.
	err = s.UpdateCategoryByMatch(ctx, date, core.MustMoney("16.0"), "gym", core.Expense, "Health")
	require.NoError(t, err)

	txs, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Equal(t, "Health", txs[0].Category)

	err = s.UpdateCategoryByMatch(ctx, date, core.MustMoney("16.01"), "gym", core.Expense, "Health")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestUpdateCategoryBulk(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.AddTransaction(ctx, tx("2024-03-15", "5", "snack", "Food", core.Expense))
		require.NoError(t, err)
	}
	_, err := s.AddTransaction(ctx, tx("2024-03-15", "5", "bus", "Transport", core.Expense))
	require.NoError(t, err)

	moved, err := s.UpdateCategoryBulk(ctx, "Food", "Groceries")
	require.NoError(t, err)
	require.EqualValues(t, 3, moved)

	moved, err = s.UpdateCategoryBulk(ctx, "Food", "Groceries")
	require.NoError(t, err)
	require.Zero(t, moved)
}

func TestSetIgnored(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.AddTransaction(ctx, tx("2024-03-15", "500", "transfer to savings", "Misc", core.Expense))
	require.NoError(t, err)

	require.NoError(t, s.SetIgnored(ctx, id, true))
	txs, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.True(t, txs[0].Ignored)

	require.NoError(t, s.SetIgnored(ctx, id, false))
	txs, err = s.ListAll(ctx)
	require.NoError(t, err)
	require.False(t, txs[0].Ignored)

	require.ErrorIs(t, s.SetIgnored(ctx, id+100, true), core.ErrNotFound)
}

func TestDeleteTransaction(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.AddTransaction(ctx, tx("2024-03-15", "5", "snack", "Food", core.Expense))
	require.NoError(t, err)

	n, err := s.DeleteTransaction(ctx, id)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	// Deleting again is a no-op with a zero count, not an error.
	n, err = s.DeleteTransaction(ctx, id)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestDeleteByMatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	dup := core.Transaction{
		Date: date, Amount: core.MustMoney("12.50"), Description: "lunch",
		Category: "Food", Type: core.Expense,
	}
	_, err := s.AddTransaction(ctx, dup)
	require.NoError(t, err)
	_, err = s.AddTransaction(ctx, dup)
	require.NoError(t, err)
	_, err = s.AddTransaction(ctx, tx("2024-03-15", "12.50", "lunch", "Work", core.Expense))
	require.NoError(t, err)

	// Both duplicates go; the Work-categorized twin stays.
	n, err := s.DeleteByMatch(ctx, date, core.MustMoney("12.5"), "lunch", "Food", core.Expense)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	txs, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, "Work", txs[0].Category)
}
