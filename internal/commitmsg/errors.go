package commitmsg

import (
	"errors"
	"fmt"

	"github.com/huimingz/commitflow/internal/config"
)

var (
	// ErrNoChanges is returned when nothing is staged.
	ErrNoChanges = errors.New("no staged changes found")

	// ErrInFlight is returned when a generation is requested while another
	// one is still running.
	ErrInFlight = errors.New("commit message generation already in progress")

	// ErrEmptyMessage is returned when asked to commit a blank message.
	ErrEmptyMessage = errors.New("message cannot be empty")
)

// ConfigurationError reports a missing or invalid setting. It is raised
// before any request is sent.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Field, e.Reason)
}

// ProviderError reports a failed completion. Message is the provider's own
// message, unaltered.
type ProviderError struct {
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// CheckModel validates a model configuration and reports problems as a
// ConfigurationError.
func CheckModel(m *config.ModelConfig) error {
	if m == nil {
		return &ConfigurationError{Field: "model", Reason: "is not configured"}
	}
	if err := m.Validate(); err != nil {
		return AsConfigurationError(err)
	}
	return nil
}

// AsConfigurationError converts a configuration lookup failure. Errors that
// carry no field are returned unchanged.
func AsConfigurationError(err error) error {
	if err == nil {
		return nil
	}
	var fe *config.FieldError
	if errors.As(err, &fe) {
		return &ConfigurationError{Field: fe.Field, Reason: fe.Reason}
	}
	return err
}
