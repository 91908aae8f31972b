package storage

import (
	"context"
	"database/sql"
	"fmt"

	"budget/internal/core"
)

// ApplyCategorization walks every stored transaction inside one database
// transaction and reassigns the category of each row for which decide
// returns a replacement. The whole pass commits as a single durable batch:
// a mid-run failure rolls everything back, so a caller's retry never sees
// a half-applied pass. Returns how many rows changed and how many were
// examined.
func (s *Store) ApplyCategorization(ctx context.Context, decide func(core.Transaction) (string, bool)) (updated, total int64, err error) {
	err = s.execTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions ORDER BY id`)
		if err != nil {
			return fmt.Errorf("query transactions for rule application: %w", err)
		}

		var txs []core.Transaction
		for rows.Next() {
			t, err := scanTransaction(rows)
			if err != nil {
				rows.Close()
				return err
			}
			txs = append(txs, t)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("iterate transactions for rule application: %w", err)
		}
		rows.Close()

		total = int64(len(txs))
		for _, t := range txs {
			category, ok := decide(t)
			if !ok {
				continue
			}
			if err := ensureCategoryTx(tx, category); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `UPDATE transactions SET category = ? WHERE id = ?`, category, t.ID); err != nil {
				return fmt.Errorf("recategorize transaction %d: %w", t.ID, err)
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return updated, total, nil
}
