// Package rules resolves transaction categories from the stored,
// prioritized pattern/amount rule set. Resolution is deterministic: rules
// evaluate by priority descending with insertion order as the tiebreak, so
// repeated calls over an unchanged rule set always agree.
package rules

import (
	"context"
	"log/slog"
	"strings"

	"budget/internal/core"
	"budget/internal/storage"
)

// OverwritePolicy selects which transactions a bulk application pass may
// recategorize.
type OverwritePolicy int

const (
	// OverwriteEmpty recategorizes only transactions whose category is
	// blank or the Uncategorized sentinel.
	OverwriteEmpty OverwritePolicy = iota
	// OverwriteAll recategorizes every transaction a rule matches.
	OverwriteAll
)

type Engine struct {
	store *storage.Store
}

func NewEngine(store *storage.Store) *Engine {
	return &Engine{store: store}
}

// Resolve loads the rule set and returns the category for the first
// matching rule, or ok=false when nothing matches. It never guesses.
func (e *Engine) Resolve(ctx context.Context, description string, amount *core.Money) (string, bool, error) {
	ruleSet, err := e.store.Rules(ctx)
	if err != nil {
		return "", false, err
	}
	category, ok := Resolve(ruleSet, description, amount)
	return category, ok, nil
}

// Resolve is the pure matching algorithm over rules already in evaluation
// order. A rule matches when its pattern is a case-insensitive substring
// of the description and, if the rule carries an amount, the transaction
// amount is within the rule's tolerance (boundary inclusive).
func Resolve(ruleSet []core.Rule, description string, amount *core.Money) (string, bool) {
	desc := strings.ToLower(description)
	for _, r := range ruleSet {
		if !strings.Contains(desc, strings.ToLower(r.Pattern)) {
			continue
		}
		if r.Amount != nil {
			if amount == nil || !amount.WithinTolerance(*r.Amount, r.Tolerance) {
				continue
			}
		}
		return r.Category, true
	}
	return "", false
}

// ApplyToExisting resolves a category for every stored transaction and
// updates the rows selected by policy whose resolved category differs from
// the current one. The pass commits as one batch and is idempotent: a
// second run with no intervening rule or transaction changes updates zero
// rows. Returns (updated, total) for observability.
func (e *Engine) ApplyToExisting(ctx context.Context, policy OverwritePolicy) (updated, total int64, err error) {
	ruleSet, err := e.store.Rules(ctx)
	if err != nil {
		return 0, 0, err
	}

	updated, total, err = e.store.ApplyCategorization(ctx, func(t core.Transaction) (string, bool) {
		if policy == OverwriteEmpty && t.Category != "" && t.Category != core.Uncategorized {
			return "", false
		}
		amount := t.Amount
		category, ok := Resolve(ruleSet, t.Description, &amount)
		if !ok || category == t.Category {
			return "", false
		}
		return category, true
	})
	if err != nil {
		return 0, 0, err
	}

	slog.InfoContext(ctx, "rules applied to existing transactions",
		"updated", updated, "total", total, "rules", len(ruleSet))
	return updated, total, nil
}
