package cad

import (
	"errors"
	"fmt"
)

// ErrInvalidState is matched by every StateError.
var ErrInvalidState = errors.New("invalid composer state")

// ConfigurationError reports export options the engine cannot honor.
type ConfigurationError struct {
	Field string
	Value string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unsupported %s: %q", e.Field, e.Value)
}

// StateError reports a composer step called out of order.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: not allowed in state %s", e.Op, e.State)
}

// Is makes errors.Is(err, ErrInvalidState) true for any StateError.
func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}
