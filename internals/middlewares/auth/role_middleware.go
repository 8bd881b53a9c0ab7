package auth

import (
	"github.com/gofiber/fiber/v2"

	"laboissim_backend/internals/constants"
)

// AdminOnly rejects requests whose actor is not an admin. Runs after
// AuthMiddleware.
func AdminOnly() fiber.Handler {
	return OnlyRoles(constants.RoleErrorAdmin("this resource"), constants.AdminOnly...)
}

// OnlyRoles allows only the named roles through. A platform superuser
// passes regardless of the stored role (admin always wins).
func OnlyRoles(customMessage string, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFromLocals(c)
		if actor.IsAdmin() {
			return c.Next()
		}
		if actor.Authenticated {
			for _, allowed := range roles {
				if actor.Role == allowed {
					return c.Next()
				}
			}
		}
		if customMessage == "" {
			customMessage = "Forbidden: you are not authorized to access this resource"
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": customMessage,
		})
	}
}
