package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	// Uncategorized is the sentinel category assigned when neither the
	// caller, the rule engine, nor the suggestion collaborator produced one.
	Uncategorized = "Uncategorized"
)

type (
	TransactionType string

	Transaction struct {
		ID          int64
		Date        time.Time
		Amount      Money // always non-negative; sign lives in Type
		Description string
		Category    string
		Type        TransactionType
		Ignored     bool
	}

	Category struct {
		Name       string
		BudgetGoal *Money // nil when no goal is configured
		Tags       string // free-form comma-separated labels
	}

	Rule struct {
		ID        int64
		Pattern   string
		Category  string
		Amount    *Money // nil when the rule matches on pattern alone
		Tolerance Money
		Priority  int
	}
)

var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrEmptyDescription       = errors.New("empty description")
	ErrEmptyPattern           = errors.New("empty pattern")
	ErrEmptyCategory          = errors.New("empty category")
	ErrInvalidBudgetGoal      = errors.New("budget goal must be positive")
	ErrDuplicateRule          = errors.New("rule already exists for pattern and category")
	ErrInvalidTransactionType = errors.New("transaction type must be income or expense")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// IsExpense reports whether the transaction counts against spending totals.
func (t Transaction) IsExpense() bool { return t.Type == Expense }

func (t Transaction) IsIncome() bool { return t.Type == Income }

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return errors.New("date cannot be zero")
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if !t.Type.Valid() {
		return ErrInvalidTransactionType
	}
	return nil
}

func (r Rule) Validate() error {
	if strings.TrimSpace(r.Pattern) == "" {
		return ErrEmptyPattern
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if r.Amount != nil && r.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if r.Tolerance.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// incomeTags are the tag values that mark a category's budget goal as an
// income target rather than an expense target.
var incomeTags = []string{"income", "revenue"}

// HasIncomeTag reports whether the category's tags contain an income-like
// label, matched case-insensitively against each comma-separated entry.
func (c Category) HasIncomeTag() bool {
	return TagsContainIncome(c.Tags)
}

func TagsContainIncome(tags string) bool {
	for _, tag := range strings.Split(tags, ",") {
		tag = strings.ToLower(strings.TrimSpace(tag))
		for _, income := range incomeTags {
			if tag == income {
				return true
			}
		}
	}
	return false
}
