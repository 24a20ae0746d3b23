package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyScript is returned when the initial data carries no script.
var ErrEmptyScript = errors.New("script must not be empty")

// ErrorEnvelope is the body returned when a handler fails internally.
type ErrorEnvelope struct {
	Message string `json:"message"`
}

// NewErrorEnvelope wraps err in the envelope served to clients.
func NewErrorEnvelope(err error) ErrorEnvelope {
	return ErrorEnvelope{Message: fmt.Sprintf("An error occurred: %v", err)}
}
