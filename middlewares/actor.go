package middlewares

import (
	"marketpay/helpers"

	"github.com/gofiber/fiber/v2"
)

const (
	RoleSeller      = "seller"
	RoleProvider    = "provider"
	RoleAffiliate   = "affiliate"
	RoleConciliator = "conciliator"
	RoleValidator   = "validator"
	RoleAdmin       = "admin"
)

func Actor(c *fiber.Ctx) (id string, role string) {
	id, _ = c.Locals("actorId").(string)
	role, _ = c.Locals("actorRole").(string)
	return id, role
}

// RequireRole gates a route group to the given roles. Ownership checks
// stay in the workflow layer; this only filters by verified role.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, role := Actor(c)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return helpers.JSONError(c, fiber.StatusForbidden, "ROLE_NOT_PERMITTED")
	}
}
