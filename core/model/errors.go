package model

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is returned when simulation inputs are rejected.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ConfigError names the field that failed validation.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s (got %v)", ErrInvalidConfiguration, e.Field, e.Reason, e.Value)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }

func invalid(field string, value any, reason string) error {
	return &ConfigError{Field: field, Value: value, Reason: reason}
}
