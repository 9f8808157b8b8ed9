package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Sentinel errors surfaced by the workflow services
var (
	ErrWorkflowNotFound      = errors.New("workflow not found")
	ErrLogNotFound           = errors.New("workflow log not found")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrUnknownBookingStatus  = errors.New("booking status has no trigger action")
	ErrInvalidTransition     = errors.New("invalid workflow log transition")
	ErrDispatcherUnavailable = errors.New("dispatcher unavailable")
)

// errNotLeased marks a dispatch that stopped before the entry was sent
var errNotLeased = errors.New("entry is not available for dispatch")

// FieldError is one rejected field of a workflow definition
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError rejects a malformed workflow definition; nothing is persisted
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}

// newValidationError converts validator output into a ValidationError
func newValidationError(err error) *ValidationError {
	verr := &ValidationError{}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			verr.add(fe.Namespace(), describeTag(fe))
		}
		return verr
	}
	verr.add("request", err.Error())
	return verr
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "email":
		return "must be a valid email"
	}
	return fmt.Sprintf("failed %q", fe.Tag())
}

// IsValidationError reports whether err should map to HTTP 400
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) || errors.Is(err, ErrUnknownBookingStatus)
}

// IsNotFound reports whether err should map to HTTP 404
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrLogNotFound) ||
		errors.Is(err, ErrBookingNotFound)
}

// IsConflict reports whether err should map to HTTP 409
func IsConflict(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}

// DispatchError is a provider-side send failure. Details is passed through untyped.
type DispatchError struct {
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *DispatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}
