package errorutils

import (
	"fmt"
	"strings"
)

// ConfigurationError reports an invalid runner or client configuration.
// It is raised before any dispatch begins and is never retried.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (ce *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", ce.Field, ce.Reason)
}

func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{
		Field:  field,
		Reason: reason,
	}
}

// ServerNotReadyError reports that the inference server failed its
// liveness/readiness checks at client construction time.
type ServerNotReadyError struct {
	URL    string
	Errors []string
}

func (se *ServerNotReadyError) Error() string {
	return fmt.Sprintf("inference server check failed for %s: %s", se.URL, strings.Join(se.Errors, "; "))
}

func NewServerNotReadyError(url string, errors []string) *ServerNotReadyError {
	return &ServerNotReadyError{
		URL:    url,
		Errors: errors,
	}
}
