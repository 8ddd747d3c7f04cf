package offer

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors wrapped by InputError and ConfigurationError.
var (
	ErrMissingEvaluationTime = errors.New("evaluation time required")
	ErrInvalidLineItem       = errors.New("invalid line item")
	ErrDuplicateLineItem     = errors.New("duplicate line item")
	ErrInvalidConfiguration  = errors.New("invalid offer configuration")
)

// ConfigurationError reports an offer whose criteria or rule configuration is
// internally inconsistent. Only the offending offer is skipped.
type ConfigurationError struct {
	OfferID int64
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("offer %d: %s", e.OfferID, e.Reason)
}

// Unwrap allows errors.Is(err, ErrInvalidConfiguration).
func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// InputError reports malformed evaluation input. It aborts the whole call.
type InputError struct {
	LineID string
	Err    error
}

func (e *InputError) Error() string {
	if e.LineID == "" {
		return fmt.Sprintf("invalid input: %s", e.Err)
	}
	return fmt.Sprintf("invalid input: line %q: %s", e.LineID, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func configErr(id int64, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{OfferID: id, Reason: fmt.Sprintf(format, args...)}
}
