package errs

import (
	"errors"
	"fmt"
)

var ErrExternalService = errors.New("external service failure")

// ExternalServiceError wraps a failure of a collaborator (database, cache, bus).
// Both the sentinel and the underlying cause are reachable through errors.Is.
type ExternalServiceError struct {
	Service string
	Cause   error
}

func NewExternalServiceError(service string, cause error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Cause: cause}
}

func (e *ExternalServiceError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrExternalService, e.Service), e.Cause)
}

func (e *ExternalServiceError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrExternalService}
	}
	return []error{ErrExternalService, e.Cause}
}
