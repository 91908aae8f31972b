package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"budget/internal/core"
)

// AddRule validates and stores a categorization rule. A rule is identified
// by its (pattern, category) pair; inserting a second rule with the same
// pair fails with core.ErrDuplicateRule. Editing a rule is delete+recreate.
func (s *Store) AddRule(ctx context.Context, r core.Rule) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := s.execTx(ctx, func(tx *sql.Tx) error {
		var count int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM categorization_rules WHERE pattern = ? AND category = ?`,
			r.Pattern, r.Category).Scan(&count)
		if err != nil {
			return fmt.Errorf("check rule identity: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("rule (%q, %q): %w", r.Pattern, r.Category, core.ErrDuplicateRule)
		}

		var amount any
		if r.Amount != nil {
			amount = r.Amount.String()
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO categorization_rules (pattern, category, amount, amount_tolerance, priority)
			VALUES (?, ?, ?, ?, ?)`,
			r.Pattern, r.Category, amount, r.Tolerance.String(), r.Priority)
		if err != nil {
			return fmt.Errorf("insert rule: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("read inserted rule id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "rule added",
		"id", id, "pattern", r.Pattern, "category", r.Category, "priority", r.Priority)
	return id, nil
}

// Rules returns all rules in evaluation order: priority descending, then
// insertion order (id ascending) as the deterministic tiebreak.
func (s *Store) Rules(ctx context.Context) ([]core.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pattern, category, amount, amount_tolerance, priority
		FROM categorization_rules
		ORDER BY priority DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var rules []core.Rule
	for rows.Next() {
		var (
			r         core.Rule
			amountStr sql.NullString
			tolStr    string
		)
		if err := rows.Scan(&r.ID, &r.Pattern, &r.Category, &amountStr, &tolStr, &r.Priority); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		if amountStr.Valid {
			amount, err := core.MoneyFromString(amountStr.String)
			if err != nil {
				return nil, fmt.Errorf("parse stored rule amount %q: %w", amountStr.String, err)
			}
			r.Amount = &amount
		}
		tol, err := core.MoneyFromString(tolStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored rule tolerance %q: %w", tolStr, err)
		}
		r.Tolerance = tol
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return rules, nil
}

// DeleteRule removes the rule identified by (pattern, category) and
// reports the affected row count.
func (s *Store) DeleteRule(ctx context.Context, pattern, category string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM categorization_rules WHERE pattern = ? AND category = ?`, pattern, category)
	if err != nil {
		return 0, fmt.Errorf("delete rule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete rule: %w", err)
	}
	return n, nil
}
