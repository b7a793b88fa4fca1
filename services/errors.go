// services/errors.go
package services

import "errors"

// ServiceError is a client-facing error: its code and message are
// surfaced verbatim to the caller as a 400, unlike internal errors
// which collapse into a generic 500.
type ServiceError struct {
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return e.Code + ": " + e.Message
}

func validationError(message string) *ServiceError {
	return &ServiceError{Code: "VALIDATION_ERROR", Message: message}
}

// GetServiceError unwraps err into a ServiceError, or nil.
func GetServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}

func IsValidationError(err error) bool {
	svcErr := GetServiceError(err)
	return svcErr != nil && svcErr.Code == "VALIDATION_ERROR"
}

// ErrNotFound marks missing entities (bet id, comment id); handlers map
// it to 404.
var ErrNotFound = errors.New("not found")
