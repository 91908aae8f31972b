package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"budget/internal/core"
)

const transactionColumns = "id, date, amount, description, category, transaction_type, ignored"

// AddTransaction validates and inserts a transaction, returning the
// store-assigned id. A previously-unseen category is registered in the
// category table in the same transaction, so the two tables never disagree
// about categories in use.
func (s *Store) AddTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := s.execTx(ctx, func(tx *sql.Tx) error {
		if err := ensureCategoryTx(tx, t.Category); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (date, amount, description, category, transaction_type, ignored)
			VALUES (?, ?, ?, ?, ?, ?)`,
			formatDate(t.Date), t.Amount.String(), t.Description, t.Category, string(t.Type), boolToInt(t.Ignored))
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("read inserted transaction id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "transaction added",
		"id", id, "description", t.Description, "amount", t.Amount.String(), "category", t.Category)
	return id, nil
}

// ListAll returns every transaction, most recent first. This is display
// order; aggregation callers must not rely on it.
func (s *Store) ListAll(ctx context.Context) ([]core.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		ORDER BY date DESC, id DESC`)
}

// ListForMonth returns the transactions in the month containing anyDate,
// as the half-open window [first of month, first of next month), ordered
// ascending. AddDate handles the December to January rollover.
func (s *Store) ListForMonth(ctx context.Context, anyDate time.Time) ([]core.Transaction, error) {
	start := time.Date(anyDate.Year(), anyDate.Month(), 1, 0, 0, 0, 0, anyDate.Location())
	end := start.AddDate(0, 1, 0)
	return s.listWindow(ctx, start, end)
}

// ListForYear returns the transactions in [Jan 1 year, Jan 1 year+1),
// ordered ascending.
func (s *Store) ListForYear(ctx context.Context, year int) ([]core.Transaction, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	return s.listWindow(ctx, start, end)
}

func (s *Store) listWindow(ctx context.Context, start, end time.Time) ([]core.Transaction, error) {
	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE date >= ? AND date < ?
		ORDER BY date, id`,
		formatDate(start), formatDate(end))
}

// UpdateCategory reassigns the transaction's category, registering the new
// category name if it was never seen before.
func (s *Store) UpdateCategory(ctx context.Context, id int64, category string) error {
	return s.execTx(ctx, func(tx *sql.Tx) error {
		if err := ensureCategoryTx(tx, category); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `UPDATE transactions SET category = ? WHERE id = ?`, category, id)
		if err != nil {
			return fmt.Errorf("update transaction category: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update transaction category: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("update transaction %d: %w", id, core.ErrNotFound)
		}
		return nil
	})
}

// UpdateCategoryByMatch reassigns the category of every transaction whose
// (date, amount, description, type) tuple matches. Amounts compare on the
// exact decimal value, not the stored text, so "16.0" matches "16.00".
// Returns core.ErrNotFound when nothing matches; it never silently
// succeeds on zero rows.
func (s *Store) UpdateCategoryByMatch(ctx context.Context, date time.Time, amount core.Money, description string, typ core.TransactionType, category string) error {
	return s.execTx(ctx, func(tx *sql.Tx) error {
		ids, err := matchTransactionIDs(ctx, tx, date, amount, description, "", typ, false)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return fmt.Errorf("update by match %q: %w", description, core.ErrNotFound)
		}
		if err := ensureCategoryTx(tx, category); err != nil {
			return err
		}
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx, `UPDATE transactions SET category = ? WHERE id = ?`, category, id); err != nil {
				return fmt.Errorf("update matched transaction %d: %w", id, err)
			}
		}
		return nil
	})
}

// UpdateCategoryBulk moves every transaction in oldCategory to newCategory
// and returns the number of rows moved.
func (s *Store) UpdateCategoryBulk(ctx context.Context, oldCategory, newCategory string) (int64, error) {
	var moved int64
	err := s.execTx(ctx, func(tx *sql.Tx) error {
		if err := ensureCategoryTx(tx, newCategory); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `UPDATE transactions SET category = ? WHERE category = ?`, newCategory, oldCategory)
		if err != nil {
			return fmt.Errorf("bulk update category: %w", err)
		}
		moved, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("bulk update category: %w", err)
		}
		return nil
	})
	return moved, err
}

// SetIgnored toggles the ignored flag, which excludes the transaction from
// all aggregates while keeping it stored for display and audit.
func (s *Store) SetIgnored(ctx context.Context, id int64, ignored bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE transactions SET ignored = ? WHERE id = ?`, boolToInt(ignored), id)
	if err != nil {
		return fmt.Errorf("set transaction ignored: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set transaction ignored: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("set ignored on transaction %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// DeleteTransaction removes one transaction and reports the affected row
// count so callers can detect a no-op deletion.
func (s *Store) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete transaction: %w", err)
	}
	slog.InfoContext(ctx, "transaction deleted", "id", id, "rows", n)
	return n, nil
}

// DeleteByMatch removes the transactions matching the full attribute tuple
// and returns how many rows were removed.
func (s *Store) DeleteByMatch(ctx context.Context, date time.Time, amount core.Money, description, category string, typ core.TransactionType) (int64, error) {
	var deleted int64
	err := s.execTx(ctx, func(tx *sql.Tx) error {
		ids, err := matchTransactionIDs(ctx, tx, date, amount, description, category, typ, true)
		if err != nil {
			return err
		}
		for _, id := range ids {
			res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
			if err != nil {
				return fmt.Errorf("delete matched transaction %d: %w", id, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("delete matched transaction %d: %w", id, err)
			}
			deleted += n
		}
		return nil
	})
	return deleted, err
}

// matchTransactionIDs selects candidates on the indexed columns and then
// compares amounts numerically in the decimal domain.
func matchTransactionIDs(ctx context.Context, tx *sql.Tx, date time.Time, amount core.Money, description, category string, typ core.TransactionType, matchCategory bool) ([]int64, error) {
	query := `SELECT id, amount FROM transactions WHERE date = ? AND description = ? AND transaction_type = ?`
	args := []any{formatDate(date), description, string(typ)}
	if matchCategory {
		query += ` AND category = ?`
		args = append(args, category)
	}

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select matching transactions: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		var amountStr string
		if err := rows.Scan(&id, &amountStr); err != nil {
			return nil, fmt.Errorf("scan matching transaction: %w", err)
		}
		stored, err := core.MoneyFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", amountStr, err)
		}
		if stored.Equal(amount) {
			ids = append(ids, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matching transactions: %w", err)
	}
	return ids, nil
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		t         core.Transaction
		dateStr   string
		amountStr string
		typStr    string
		ignored   int
	)
	if err := rows.Scan(&t.ID, &dateStr, &amountStr, &t.Description, &t.Category, &typStr, &ignored); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	date, err := parseDate(dateStr)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.MoneyFromString(amountStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored amount %q: %w", amountStr, err)
	}

	t.Date = date
	t.Amount = amount
	t.Type = core.TransactionType(typStr)
	t.Ignored = ignored != 0
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
