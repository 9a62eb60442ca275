package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"fulfillment/internal/core/domain/model/agent"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// errorResponse maps an error to its status code and body. Unknown errors
// become a 500 without leaking details.
func errorResponse(err error) (int, Error) {
	var httpErr *echo.HTTPError
	code := http.StatusInternalServerError

	switch {
	case errors.As(err, &httpErr):
		code = httpErr.Code
		if httpErr.Internal != nil && code >= http.StatusInternalServerError {
			return code, Error{Code: code, Message: http.StatusText(code)}
		}
		return code, Error{Code: code, Message: fmt.Sprint(httpErr.Message)}
	case errors.Is(err, errs.ErrObjectNotFound):
		code = http.StatusNotFound
	case errors.Is(err, order.ErrAlreadyAssigned),
		errors.Is(err, order.ErrNoPendingRequest),
		errors.Is(err, errs.ErrVersionIsInvalid),
		errors.Is(err, agent.ErrEmailAlreadyRegistered):
		code = http.StatusConflict
	case errors.Is(err, order.ErrInvalidTransition):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrUnauthorized):
		code = http.StatusUnauthorized
	case errors.Is(err, errs.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		code = http.StatusBadRequest
	default:
		return code, Error{Code: code, Message: "internal server error"}
	}
	return code, Error{Code: code, Message: err.Error()}
}

// NewErrorHandler writes errors returned by handlers as Error bodies.
func NewErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := errorResponse(err)
		if code >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method, "path", c.Path(), "error", err)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, body)
		}
		if writeErr != nil {
			logger.ErrorContext(c.Request().Context(), "failed to write error response", "error", writeErr)
		}
	}
}
