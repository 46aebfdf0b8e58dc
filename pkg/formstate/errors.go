package formstate

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidPath is returned for paths that are empty or nested deeper
	// than section.field.
	ErrInvalidPath = errors.New("formstate: invalid field path")
	// ErrValidation matches *ValidationError through errors.Is.
	ErrValidation = errors.New("formstate: validation failed")
	// ErrNilForm is returned by helpers that receive a nil form.
	ErrNilForm = errors.New("formstate: form is nil")
)

// ValidationError carries the error snapshot produced by a failed
// ValidateAll during Submit.
type ValidationError struct {
	Errors ErrorMap
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Errors) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Errors))
	for p := range e.Errors {
		keys = append(keys, p.String())
	}
	sort.Strings(keys)
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(keys, ", "))
}

// Is reports ErrValidation equivalence.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
