package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInvalidRequest = errors.New("invalid request")

var (
	ErrEmptyPatch    = fmt.Errorf("%w: no fields to update", ErrInvalidRequest)
	ErrUnknownColumn = fmt.Errorf("%w: unknown column", ErrInvalidRequest)
	ErrInvalidID     = fmt.Errorf("%w: invalid product id", ErrInvalidRequest)
)

// ValidationError collects per-field messages for a rejected body.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}

	return "invalid request: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}
