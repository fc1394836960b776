// Package domain provides the data model and error types of the evaluation
// pipeline.
package domain

import (
	"errors"
	"fmt"
)

// ErrPipelineNotLoaded is returned when an action is processed before any
// configuration load succeeded.
var ErrPipelineNotLoaded = errors.New("pipeline not loaded")

// ConfigurationErrorKind categorizes a ConfigurationError.
type ConfigurationErrorKind string

const (
	// ConfigErrorUnknownType means no factory is registered for the descriptor type.
	ConfigErrorUnknownType ConfigurationErrorKind = "unknown_type"

	// ConfigErrorDuplicateID means two descriptors share an identifier.
	ConfigErrorDuplicateID ConfigurationErrorKind = "duplicate_id"

	// ConfigErrorMalformed means the descriptor or pipeline settings are invalid.
	ConfigErrorMalformed ConfigurationErrorKind = "malformed"

	// ConfigErrorInstantiation means the factory rejected the descriptor.
	ConfigErrorInstantiation ConfigurationErrorKind = "instantiation"

	// ConfigErrorSource means the configuration source could not be read.
	ConfigErrorSource ConfigurationErrorKind = "source"
)

// ConfigurationError is returned when a pipeline cannot be built. It is
// always fatal for the load that produced it.
type ConfigurationError struct {
	Kind     ConfigurationErrorKind
	PluginID string
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.PluginID != "" {
		return fmt.Sprintf("configuration error (%s) for plugin %s: %s", e.Kind, e.PluginID, msg)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Kind, msg)
}

// Unwrap returns the underlying error.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError creates a configuration error.
func NewConfigurationError(kind ConfigurationErrorKind, pluginID string, err error) *ConfigurationError {
	return &ConfigurationError{Kind: kind, PluginID: pluginID, Err: err}
}

// IsConfigurationError returns true if err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// DuplicateIdentifierError is returned when a plugin identifier is
// registered twice within one load.
type DuplicateIdentifierError struct {
	PluginID string
}

// Error implements the error interface.
func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("plugin %s already registered", e.PluginID)
}

// PluginEvaluationError is returned by a plugin that cannot process the
// action or context it was given. The aggregator records it and moves on.
type PluginEvaluationError struct {
	PluginID string
	Reason   string
	Err      error
}

// Error implements the error interface.
func (e *PluginEvaluationError) Error() string {
	reason := e.Reason
	if reason == "" && e.Err != nil {
		reason = e.Err.Error()
	} else if e.Err != nil {
		reason = reason + ": " + e.Err.Error()
	}
	if e.PluginID == "" {
		return "plugin evaluation failed: " + reason
	}
	return fmt.Sprintf("plugin %s evaluation failed: %s", e.PluginID, reason)
}

// Unwrap returns the underlying error.
func (e *PluginEvaluationError) Unwrap() error {
	return e.Err
}

// EvaluationErrorf creates a PluginEvaluationError with a formatted reason.
// Plugins leave PluginID empty; the aggregator fills it in.
func EvaluationErrorf(format string, args ...any) *PluginEvaluationError {
	return &PluginEvaluationError{Reason: fmt.Sprintf(format, args...)}
}

// MissingAttribute reports a required action attribute that is absent.
func MissingAttribute(name string) *PluginEvaluationError {
	return EvaluationErrorf("missing required attribute %q", name)
}

// MissingContext reports a required context key that is absent.
func MissingContext(name string) *PluginEvaluationError {
	return EvaluationErrorf("missing required context key %q", name)
}

// IsPluginEvaluationError returns true if err is or wraps a PluginEvaluationError.
func IsPluginEvaluationError(err error) bool {
	var pe *PluginEvaluationError
	return errors.As(err, &pe)
}
