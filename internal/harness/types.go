package harness

import (
	"github.com/roach88/lift/internal/expression"
	"github.com/roach88/lift/internal/migration"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when the expect clause and every assertion match.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Decision is the force gate outcome of a check scenario.
	Decision string `json:"decision,omitempty"`

	// Migration is set by check scenarios.
	Migration *migration.Migration `json:"-"`

	// Expression is set by compile scenarios that translate successfully.
	Expression expression.Expression `json:"-"`

	// Err is the translation error of a compile scenario, if any.
	Err error `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
