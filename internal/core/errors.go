package core

import "errors"

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates an unknown user or a user without chat history.
	ErrNotFound = errors.New("not found")

	// ErrProcessing is returned when a chat turn cannot be completed.
	ErrProcessing = errors.New("chat processing failed")

	ErrUsernameTaken      = &ValidationError{Detail: "Username already taken"}
	ErrInvalidCredentials = &ValidationError{Detail: "Invalid username or password"}
)

// ValidationError is a user-correctable request problem.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return e.Detail
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
