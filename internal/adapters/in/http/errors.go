package http

import (
	"errors"
	"net/http"

	"dispatch/internal/pkg/errs"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// statusOf maps the error taxonomy onto HTTP status codes.
func statusOf(err error) int {
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrStateConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrExternalService):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PartialCheckoutResponse reports a checkout that failed after some orders
// were already placed.
type PartialCheckoutResponse struct {
	ErrorResponse
	Placed []OrderResponse `json:"placed"`
}

func (s *Server) fail(c echo.Context, err error) error {
	body := s.errorBody(c, err)
	return c.JSON(body.Code, body)
}

func (s *Server) failPartial(c echo.Context, err error, placed []OrderResponse) error {
	body := s.errorBody(c, err)
	return c.JSON(body.Code, PartialCheckoutResponse{ErrorResponse: body, Placed: placed})
}

func (s *Server) errorBody(c echo.Context, err error) ErrorResponse {
	status := statusOf(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
		message = http.StatusText(status)
	}
	return ErrorResponse{Code: status, Message: message}
}
