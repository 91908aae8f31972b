// Package suggest is the AI-suggestion collaborator: an external oracle
// consulted only when no categorization rule matches. The core never
// depends on its availability; a nil Suggester simply turns the feature
// off.
package suggest

import (
	"context"

	"budget/internal/core"
)

// Suggester proposes a category for a transaction given its description,
// amount, and the set of known categories. Implementations must return
// either one of the known categories or core.Uncategorized.
type Suggester interface {
	Suggest(ctx context.Context, description string, amount core.Money, known []string) (string, error)
}
