package presenter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"

	"github.com/totegamma/daybook/internal/domain"
)

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func Created(c echo.Context, payload any) error {
	return c.JSON(http.StatusCreated, payload)
}

func NoContent(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// Error maps a usecase error onto its HTTP status.
func Error(c echo.Context, err error) error {
	var validation domain.ValidationError
	var notFound domain.NotFoundError

	switch {
	case errors.As(err, &validation):
		return Validation(c, validation)
	case errors.As(err, &notFound):
		return NotFound(c, notFound.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		return Unauthorized(c)
	default:
		return InternalError(c, err)
	}
}

func Validation(c echo.Context, err domain.ValidationError) error {
	msg := err.Message
	if msg == "" {
		msg = "validation failed"
	}
	slog.DebugContext(
		c.Request().Context(), "Bad request",
		slog.String("error", err.Error()),
		slog.String("module", "presenter"),
	)
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg, Fields: err.Fields})
}

func BadRequest(c echo.Context, err error) error {
	return BadRequestMessage(c, err.Error())
}

func BadRequestMessage(c echo.Context, msg string) error {
	slog.DebugContext(
		c.Request().Context(), "Bad request",
		slog.String("error", msg),
		slog.String("module", "presenter"),
	)
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

func Unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
}

func NotFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, errorResponse{Error: msg})
}

// InternalError reports err and answers with a generic message. Causes never reach the client.
func InternalError(c echo.Context, err error) error {
	ctx := c.Request().Context()

	msg := "internal error"
	cause := err
	var internal domain.InternalError
	if errors.As(err, &internal) {
		if internal.Message != "" {
			msg = internal.Message
		}
		if internal.Cause != nil {
			cause = internal.Cause
		}
	}

	slog.ErrorContext(
		ctx, msg,
		slog.String("error", cause.Error()),
		slog.String("path", c.Path()),
		slog.String("module", "presenter"),
	)

	hub := sentry.CurrentHub().Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("method", c.Request().Method)
		scope.SetTag("route", c.Path())
		scope.SetRequest(c.Request())
		hub.CaptureException(cause)
	})

	return c.JSON(http.StatusInternalServerError, errorResponse{Error: msg})
}
