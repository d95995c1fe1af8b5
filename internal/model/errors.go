package model

import "fmt"

// ConfigurationError marks an operator-fixable setup problem (unknown driver
// key, missing vendor credentials). It is raised eagerly at construction or
// resolution time and never downgraded into a delivery failure.
type ConfigurationError struct {
	Component string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Component, e.Reason)
}

// NewConfigurationError builds a ConfigurationError for the given component.
func NewConfigurationError(component, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Component: component, Reason: fmt.Sprintf(format, args...)}
}
