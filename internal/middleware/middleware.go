package middleware

import (
	"Coffee-Shop-Backend/domain"
	"Coffee-Shop-Backend/internal/api/presenters"
	"Coffee-Shop-Backend/pkg/jwt"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const ClaimsKey = "claims"

type (
	Middleware interface {
		CORSMiddleware() fiber.Handler
		RequestIDMiddleware() fiber.Handler
		RecoverMiddleware() fiber.Handler
		LoggerMiddleware(output io.Writer) fiber.Handler
		LimiterMiddleware(limit int, expiration time.Duration, storage fiber.Storage) fiber.Handler
		AuthMiddleware(jwtService jwt.JWTService, permission string) fiber.Handler
	}

	middleware struct {
		allowOrigins string
		logger       *zap.Logger
	}
)

func NewMiddleware(allowOrigins string, logger *zap.Logger) Middleware {
	return &middleware{
		allowOrigins: allowOrigins,
		logger:       logger,
	}
}

func (m *middleware) CORSMiddleware() fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: m.allowOrigins,
		AllowHeaders: "Content-Type, Authorization",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
	})
}

func (m *middleware) RequestIDMiddleware() fiber.Handler {
	return requestid.New(requestid.Config{
		Generator: uuid.NewString,
	})
}

func (m *middleware) RecoverMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			m.logger.Error("panic recovered",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Any("panic", e),
			)
		},
	})
}

func (m *middleware) LoggerMiddleware(output io.Writer) fiber.Handler {
	return logger.New(logger.Config{
		Format:     "${time} | ${locals:requestid} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "UTC",
		Output:     output,
	})
}

func (m *middleware) LimiterMiddleware(limit int, expiration time.Duration, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: expiration,
		Storage:    storage,
		LimitReached: func(c *fiber.Ctx) error {
			return presenters.ErrorResponse(c, fiber.StatusTooManyRequests, domain.MessageTooManyRequests)
		},
	})
}

// AuthMiddleware rejects the request unless it carries a valid bearer token
// holding permission. The verified claims are stored under ClaimsKey.
func (m *middleware) AuthMiddleware(jwtService jwt.JWTService, permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := jwt.TokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return m.reject(c, permission, err)
		}

		claims, err := jwtService.VerifyToken(c.Context(), token)
		if err != nil {
			return m.reject(c, permission, err)
		}

		if err := jwtService.CheckPermission(claims, permission); err != nil {
			return m.reject(c, permission, err)
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

func (m *middleware) reject(c *fiber.Ctx, permission string, err error) error {
	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		authErr = domain.NewUnauthorizedError(domain.MessageFailedParseToken, err)
	}
	m.logger.Warn("request rejected",
		zap.String("path", c.Path()),
		zap.String("permission", permission),
		zap.Int("status", authErr.StatusCode()),
		zap.Error(err),
	)
	return presenters.AuthErrorResponse(c, authErr)
}

// ClaimsFromContext returns the claims stored by AuthMiddleware.
func ClaimsFromContext(c *fiber.Ctx) (*jwt.AuthClaims, error) {
	claims, ok := c.Locals(ClaimsKey).(*jwt.AuthClaims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("no claims in request context")
	}
	return claims, nil
}
