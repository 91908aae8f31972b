package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"budget/internal/core"
)

// EnsureCategory registers a category name if it was never seen before.
// Registering an existing name is a no-op; empty names are ignored.
func (s *Store) EnsureCategory(ctx context.Context, name string) error {
	return s.execTx(ctx, func(tx *sql.Tx) error {
		return ensureCategoryTx(tx, name)
	})
}

func ensureCategoryTx(tx *sql.Tx, name string) error {
	if name == "" {
		return nil
	}
	if _, err := tx.Exec(`INSERT OR IGNORE INTO categories (name) VALUES (?)`, name); err != nil {
		return fmt.Errorf("ensure category %q: %w", name, err)
	}
	return nil
}

// SetBudgetGoal sets or replaces the monthly budget goal for a category,
// creating the category row when needed.
func (s *Store) SetBudgetGoal(ctx context.Context, name string, goal core.Money) error {
	if name == "" {
		return core.ErrEmptyCategory
	}
	if !goal.IsPositive() {
		return core.ErrInvalidBudgetGoal
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (name, budget_goal) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET budget_goal = excluded.budget_goal`,
		name, goal.String())
	if err != nil {
		return fmt.Errorf("set budget goal for %q: %w", name, err)
	}
	return nil
}

// BudgetGoals returns every configured goal keyed by category name.
func (s *Store) BudgetGoals(ctx context.Context) (map[string]core.Money, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, budget_goal FROM categories WHERE budget_goal IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("query budget goals: %w", err)
	}
	defer rows.Close()

	goals := make(map[string]core.Money)
	for rows.Next() {
		var name, goalStr string
		if err := rows.Scan(&name, &goalStr); err != nil {
			return nil, fmt.Errorf("scan budget goal: %w", err)
		}
		goal, err := core.MoneyFromString(goalStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored budget goal %q: %w", goalStr, err)
		}
		goals[name] = goal
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budget goals: %w", err)
	}
	return goals, nil
}

// BudgetGoal returns the goal for one category, or nil when unset or the
// category does not exist.
func (s *Store) BudgetGoal(ctx context.Context, name string) (*core.Money, error) {
	var goalStr sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT budget_goal FROM categories WHERE name = ?`, name).Scan(&goalStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query budget goal for %q: %w", name, err)
	}
	if !goalStr.Valid {
		return nil, nil
	}
	goal, err := core.MoneyFromString(goalStr.String)
	if err != nil {
		return nil, fmt.Errorf("parse stored budget goal %q: %w", goalStr.String, err)
	}
	return &goal, nil
}

// SetTags sets the category's tags, creating the row when needed. A blank
// tags value leaves previously saved tags untouched.
func (s *Store) SetTags(ctx context.Context, name, tags string) error {
	if name == "" {
		return core.ErrEmptyCategory
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (name, budget_goal, tags) VALUES (?, NULL, ?)
		ON CONFLICT(name) DO UPDATE SET
			tags = CASE WHEN excluded.tags != '' THEN excluded.tags ELSE categories.tags END`,
		name, tags)
	if err != nil {
		return fmt.Errorf("set tags for %q: %w", name, err)
	}
	return nil
}

// Tags returns the non-empty tags keyed by category name.
func (s *Store) Tags(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, COALESCE(tags, '') FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("query category tags: %w", err)
	}
	defer rows.Close()

	tags := make(map[string]string)
	for rows.Next() {
		var name, t string
		if err := rows.Scan(&name, &t); err != nil {
			return nil, fmt.Errorf("scan category tags: %w", err)
		}
		if t != "" {
			tags[name] = t
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category tags: %w", err)
	}
	return tags, nil
}

// AllCategories returns the union of names in the category table and
// distinct category values on transactions, sorted. A category exists
// implicitly from usage alone, before ever being configured.
func (s *Store) AllCategories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT category FROM transactions WHERE category != ''
		UNION
		SELECT name FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("query all categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category names: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Categories returns the configured category rows with goals and tags.
// Implicit categories (present only on transactions) are not included;
// use AllCategories for the full name set.
func (s *Store) Categories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, budget_goal, COALESCE(tags, '') FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var (
			c       core.Category
			goalStr sql.NullString
		)
		if err := rows.Scan(&c.Name, &goalStr, &c.Tags); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if goalStr.Valid {
			goal, err := core.MoneyFromString(goalStr.String)
			if err != nil {
				return nil, fmt.Errorf("parse stored budget goal %q: %w", goalStr.String, err)
			}
			c.BudgetGoal = &goal
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return cats, nil
}

// DeleteCategory removes the category row. Transactions referencing the
// name are left untouched; the name remains visible through AllCategories
// for as long as any transaction uses it.
func (s *Store) DeleteCategory(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE name = ?`, name)
	if err != nil {
		return 0, fmt.Errorf("delete category %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete category %q: %w", name, err)
	}
	return n, nil
}
