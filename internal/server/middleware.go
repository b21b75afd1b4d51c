package server

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"discovrr/internal/models"
	"discovrr/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
)

// TracingMiddleware opens a server span per request and exposes its trace id
// as X-Trace-ID.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		span, ctx := observability.StartRequestSpan(c.UserContext(),
			propagation.HeaderCarrier(c.GetReqHeaders()), c.Method(), c.Path(),
			attribute.String("http.user_agent", c.Get("User-Agent")),
			observability.AttrRequestID.String(fmt.Sprintf("%v", c.Locals("requestid"))),
		)
		if traceID := span.TraceID(); traceID != "" {
			c.Locals("traceID", traceID)
			c.Set("X-Trace-ID", traceID)
		}
		c.SetUserContext(ctx)

		err := c.Next()

		profileID, _ := c.Locals("profileID").(string)
		span.Finish(c.Response().StatusCode(), profileID, err)
		return err
	}
}

// ContextMiddleware carries the request id into the request context as the
// correlation id, so thunk and repository logs line up with the request.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := c.Locals("requestid").(string)
		if id == "" {
			id = observability.GenerateCorrelationID()
		}
		c.SetUserContext(observability.WithCorrelationID(c.UserContext(), id))
		return c.Next()
	}
}

// StructuredLogger returns a Fiber middleware for logging requests using slog
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		fields := []any{
			slog.Int("status", c.Response().StatusCode()),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Duration("latency", time.Since(start)),
			slog.String("correlation_id", observability.ExtractCorrelationID(c.UserContext())),
		}
		if err != nil {
			fields = append(fields, slog.String("error", err.Error()))
			observability.GlobalLogger.ErrorContext(c.UserContext(), "request failed", fields...)
		} else {
			observability.GlobalLogger.InfoContext(c.UserContext(), "request processed", fields...)
		}
		return err
	}
}

// AuthRequired admits requests carrying the bearer token of the session the
// store currently holds. The token must also verify against the signing
// secret, so an expired session is refused before any action runs.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return respondError(c, models.NewUnauthorizedError("Authorization header required"))
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return respondError(c, models.NewUnauthorizedError("Invalid authorization header format"))
		}
		tokenString := parts[1]

		token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return respondError(c, models.NewUnauthorizedError("Invalid or expired token"))
		}

		auth := s.d.State().Auth
		if auth.User == nil || auth.SessionID != tokenString {
			return respondError(c, models.NewUnauthorizedError("Token does not match the active session"))
		}

		c.Locals("profileID", auth.User.ProfileID)
		return c.Next()
	}
}
