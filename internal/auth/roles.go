package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/domain"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// RequireIdentity rejects requests that reached a handler without an
// authenticated caller.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := IdentityFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequirePasswordProvider limits a route to accounts that sign in with a
// password, such as changing that password.
func RequirePasswordProvider() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !identity.HasProvider(domain.ProviderIDPassword) {
			return apperrors.NewForbidden("password sign-in not enabled for this account")
		}
		return c.Next()
	}
}
