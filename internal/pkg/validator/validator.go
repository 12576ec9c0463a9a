// Package validator wraps go-playground/validator with the tags walletscope
// needs for its configuration and chain definitions, and flattens failures
// into a single error chain rooted at ErrValidationFailed.
package validator

import (
	"errors"
	"fmt"
	"regexp"

	gvalidator "github.com/go-playground/validator/v10"
)

// ErrValidationFailed is the first error in the chain returned by Validate.
var ErrValidationFailed = errors.New("struct validation failed")

// validator is the shared instance, built once on package load.
var validator *gvalidator.Validate

// errStringFormat describes a single failed field.
//
// Example: "'ChainID': value 'Osmosis!' does not meet the requirements for the 'chainid' validation"
const errStringFormat = "'%s': value '%v' does not meet the requirements for the '%s' validation"

// chainIDPattern matches registry identifiers such as "ethereum" or "cosmos-hub".
var chainIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,63}$`)

func init() {
	validator = gvalidator.New(gvalidator.WithRequiredStructEnabled())

	// Registration only fails for empty tags or nil funcs.
	_ = validator.RegisterValidation("chainid", func(fl gvalidator.FieldLevel) bool {
		return chainIDPattern.MatchString(fl.Field().String())
	})
}

func formatError(err error) error {
	var validationErrors gvalidator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := []error{ErrValidationFailed}
	for _, validationErr := range validationErrors {
		errs = append(errs, fmt.Errorf(errStringFormat,
			validationErr.Field(),
			validationErr.Value(),
			validationErr.Tag(),
		))
	}

	return errors.Join(errs...)
}

// Validate checks v against its `validate` struct tags. Besides the stock
// tags, "chainid" accepts lowercase registry identifiers.
func Validate(v any) error {
	if err := validator.Struct(v); err != nil {
		return formatError(err)
	}

	return nil
}

// Var validates a single value against a tag expression, e.g. Var(u, "required,url").
func Var(v any, tag string) error {
	if err := validator.Var(v, tag); err != nil {
		return formatError(err)
	}

	return nil
}
