package study

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the sentinel wrapped by every ConfigError
var ErrConfiguration = errors.New("configuration error")

// ErrAlreadyStarted is returned by Begin/Start outside the idle state
var ErrAlreadyStarted = errors.New("study already started")

// ConfigError reports a setting that blocks the study from starting
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrConfiguration
func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

func configErr(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
