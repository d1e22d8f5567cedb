package serverutils

import "github.com/gofiber/fiber/v2"

// ApiError carries the failure taxonomy through the service layer so the
// error middleware can map it onto an HTTP status. Validation and
// authentication failures are raised before any database call; database
// failures keep the driver's message but are otherwise opaque.
type ApiError struct {
	Status  int
	Message string
	cause   error
}

func (e *ApiError) Error() string {
	return e.Message
}

func (e *ApiError) Unwrap() error {
	return e.cause
}

func NewValidationError(message string) *ApiError {
	return &ApiError{Status: fiber.StatusBadRequest, Message: message}
}

func NewUnauthorizedError(message string) *ApiError {
	return &ApiError{Status: fiber.StatusUnauthorized, Message: message}
}

// NewNotFoundError covers rows that do not resolve under the caller's
// ownership scope; it never distinguishes "exists but not yours".
func NewNotFoundError(message string) *ApiError {
	return &ApiError{Status: fiber.StatusNotFound, Message: message}
}

func NewConflictError(message string) *ApiError {
	return &ApiError{Status: fiber.StatusConflict, Message: message}
}

// NewGatewayError wraps a persistence failure. Not retried anywhere; the
// caller decides whether to repeat the action.
func NewGatewayError(err error) *ApiError {
	return &ApiError{Status: fiber.StatusBadGateway, Message: err.Error(), cause: err}
}
