package userauth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const localsUserKey = "auth_user"

// RequireAccessToken guards a route group behind bearer access tokens. The
// verifier runs on every request; a revoked or expired token is rejected the
// moment it is presented again. The authorized account is stored in the
// request locals and the user context for downstream handlers.
func RequireAccessToken(verifier *MissionVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		user, err := verifier.Verify(c.Context(), token)
		if err != nil {
			if IsStoreUnavailable(err) {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "internal error",
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid bearer token",
			})
		}

		c.Locals(localsUserKey, user)
		c.SetUserContext(WithContext(c.UserContext(), user))

		return c.Next()
	}
}

// UserFromLocals returns the account stored by RequireAccessToken.
func UserFromLocals(c *fiber.Ctx) (*User, bool) {
	user, ok := c.Locals(localsUserKey).(*User)
	return user, ok
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
