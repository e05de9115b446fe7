package services

import (
	"errors"
	"net/http"
)

// ErrVersionConflict is returned by an IssueStore when a save loses the
// optimistic concurrency race. Services retry on it; past the retry budget
// it surfaces as a CONFLICT ServiceError.
var ErrVersionConflict = errors.New("issue version conflict")

// ServiceError is a business-rule failure carrying a stable machine code and
// the HTTP status it maps to at the boundary.
type ServiceError struct {
	Code    string
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// AsServiceError unwraps err into a ServiceError, or nil.
func AsServiceError(err error) *ServiceError {
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return nil
}

func notFound(message string) *ServiceError {
	return &ServiceError{Code: "NOT_FOUND", Status: http.StatusNotFound, Message: message}
}

func invalidArgument(message string) *ServiceError {
	return &ServiceError{Code: "INVALID_ARGUMENT", Status: http.StatusBadRequest, Message: message}
}

func forbidden(message string) *ServiceError {
	return &ServiceError{Code: "FORBIDDEN", Status: http.StatusForbidden, Message: message}
}

func invalidRole(message string) *ServiceError {
	return &ServiceError{Code: "INVALID_ROLE", Status: http.StatusBadRequest, Message: message}
}

func conflict(message string) *ServiceError {
	return &ServiceError{Code: "CONFLICT", Status: http.StatusConflict, Message: message}
}
