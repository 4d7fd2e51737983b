// Package errs provides standardized error types for the dispatch engine.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package covers the error taxonomy of the order lifecycle:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: malformed input
//   - ObjectNotFoundError: unknown order, courier or supply node
//   - StateConflictError: illegal transition or a lost conditional write
//   - ForbiddenError: an actor operating on an order that is not its own
//   - ExternalServiceError: repository, directory or bus failure
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method so errors.Is matches the sentinel
//
// Callers branch with errors.Is on the sentinels, for example to tell
// "try another order" (ErrForbidden) from "try again" (ErrStateConflict).
package errs
