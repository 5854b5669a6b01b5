package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/daybook/internal/domain"
	"github.com/totegamma/daybook/internal/present/rest/presenter"
)

var tracer = otel.Tracer("auth")

// IdentifyUser attaches the requester id carried by the identity header to the request context.
// Authentication happens upstream; requests without the header pass through anonymous.
func IdentifyUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyUser")
		defer span.End()

		userID := strings.TrimSpace(c.Request().Header.Get(domain.RequesterIdHeader))
		if userID == "" {
			span.RecordError(fmt.Errorf("missing %s header", domain.RequesterIdHeader))
		} else {
			ctx = context.WithValue(ctx, domain.RequesterIdCtxKey, userID)
			span.SetAttributes(attribute.String("RequesterId", userID))
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// RequireUser rejects anonymous requests.
func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := RequesterID(c.Request().Context()); !ok {
			return presenter.Error(c, domain.ErrUnauthenticated)
		}
		return next(c)
	}
}

func RequesterID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(domain.RequesterIdCtxKey).(string)
	return userID, ok && userID != ""
}
