package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fulfillment/internal/adapters/in/http/openapi"
	"fulfillment/internal/core/domain/model/identity"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

const callerKey = "caller"

// RequestObserver records served requests, normally *metrics.Metrics.
type RequestObserver interface {
	ObserveRequest(method, path string, status int, seconds float64)
}

// Authenticate resolves an optional bearer token into the caller identity.
// Requests without a token are anonymous; a token that does not verify is
// rejected even on public routes.
func Authenticate(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(c)
			}

			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return errs.NewUnauthorizedError("malformed authorization header")
			}

			caller, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				return err
			}
			c.Set(callerKey, caller)
			return next(c)
		}
	}
}

// Caller returns the identity set by Authenticate, nil for anonymous requests.
func Caller(c echo.Context) identity.Identity {
	caller, _ := c.Get(callerKey).(identity.Identity)
	return caller
}

// ValidateRequests rejects documented requests whose parameters or body do not
// match the API description.
func ValidateRequests(validator *openapi.Validator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			matched, err := validator.Validate(c.Request())
			if matched && err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			return next(c)
		}
	}
}

// LogRequests logs every request and reports it to observer.
func LogRequests(logger *slog.Logger, observer RequestObserver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Render now so that the status below is the one sent.
				c.Error(err)
			}

			elapsed := time.Since(start)
			req := c.Request()
			status := c.Response().Status
			path := c.Path()
			if path == "" {
				path = "unmatched"
			}

			if observer != nil {
				observer.ObserveRequest(req.Method, path, status, elapsed.Seconds())
			}

			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(req.Context(), level, "http request",
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.String("route", path),
				slog.Int("status", status),
				slog.Duration("duration", elapsed),
				slog.String("remote_ip", c.RealIP()),
			)
			return nil
		}
	}
}
