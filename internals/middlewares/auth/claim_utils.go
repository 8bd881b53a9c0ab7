package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"laboissim_backend/internals/policy"
)

// extractUserID prefers "sub", falls back to "id".
func extractUserID(claims jwt.MapClaims) (uuid.UUID, error) {
	for _, key := range []string{"sub", "id"} {
		if raw, ok := claims[key].(string); ok {
			if id, err := uuid.Parse(strings.TrimSpace(raw)); err == nil {
				return id, nil
			}
		}
	}
	return uuid.Nil, errors.New("no user id claim")
}

// ActorFromLocals returns the actor placed by the auth middleware, or
// the anonymous actor when the request never passed through it.
func ActorFromLocals(c *fiber.Ctx) policy.Actor {
	if a, ok := c.Locals("actor").(policy.Actor); ok {
		return a
	}
	return policy.Anonymous
}
