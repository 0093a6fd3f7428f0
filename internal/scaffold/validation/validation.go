// Package validation checks a scaffold request before anything is written.
// Rules are small and composable; a Validator runs them together and joins
// every failure with errors.Join.
package validation

import (
	"errors"
	"fmt"

	"github.com/artisanexperiences/kiln/internal/scaffold/types"
)

// Rule defines a single validation rule applied to a ScaffoldRequest.
type Rule interface {
	// Validate returns an error if the request breaks the rule, nil otherwise.
	Validate(req types.ScaffoldRequest) error
}

// Validator aggregates multiple rules and validates them together.
type Validator struct {
	// Subject names what is being validated, for error context.
	Subject string

	Rules []Rule
}

func NewValidator(subject string) *Validator {
	return &Validator{
		Subject: subject,
		Rules:   make([]Rule, 0),
	}
}

func (v *Validator) AddRule(rule Rule) *Validator {
	v.Rules = append(v.Rules, rule)
	return v
}

// Validate runs every rule and returns all failures joined together.
// Returns nil if all rules pass.
func (v *Validator) Validate(req types.ScaffoldRequest) error {
	if len(v.Rules) == 0 {
		return nil
	}

	var errs []error
	for _, rule := range v.Rules {
		if err := rule.Validate(req); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("validating %s: %w", v.Subject, errors.Join(errs...))
	}

	return nil
}

// ValidateFirst fails fast on the first validation error.
func (v *Validator) ValidateFirst(req types.ScaffoldRequest) error {
	for _, rule := range v.Rules {
		if err := rule.Validate(req); err != nil {
			return fmt.Errorf("validating %s: %w", v.Subject, err)
		}
	}
	return nil
}
