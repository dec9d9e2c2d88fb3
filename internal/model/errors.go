package model

import (
	"errors"
	"fmt"
)

// HTTPError wraps an HTTP status code returned by the model API.
type HTTPError struct {
	StatusCode int
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ConfigurationError is a pre-flight failure: a missing credential or an
// unreadable instruction file. No model call may be attempted while one is
// outstanding.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// TransientServiceError reports that a completion request could not be
// completed (network, auth, quota, malformed response). Callers retry by
// advancing the pipeline again.
type TransientServiceError struct {
	Op  string
	Err error
}

func (e *TransientServiceError) Error() string {
	return fmt.Sprintf("model service: %s: %v", e.Op, e.Err)
}

func (e *TransientServiceError) Unwrap() error {
	return e.Err
}

// AssemblyError reports that the finished document could not be written.
// Stage results stay in the session so assembly can be retried on its own.
type AssemblyError struct {
	Path string
	Err  error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assemble %s: %v", e.Path, e.Err)
}

func (e *AssemblyError) Unwrap() error {
	return e.Err
}

// ErrMissingCredential is wrapped by the ConfigurationError raised when no API key is set.
var ErrMissingCredential = errors.New("API key not found; set OPENAI_API_KEY")

// IsTransient reports whether err came from the model service.
func IsTransient(err error) bool {
	var te *TransientServiceError
	return errors.As(err, &te)
}

// IsConfiguration reports whether err is a pre-flight configuration failure.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
