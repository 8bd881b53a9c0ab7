package auth

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"laboissim_backend/internals/configs"
	authRepo "laboissim_backend/internals/features/users/auth/repository"
	userModel "laboissim_backend/internals/features/users/user/model"
	userService "laboissim_backend/internals/features/users/user/service"
	helper "laboissim_backend/internals/helpers"
	"laboissim_backend/internals/policy"
)

// AuthMiddleware requires a valid, non-blacklisted access token and
// stashes the normalized actor in Locals for the controllers.
func AuthMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := extractAccessToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		blacklisted, err := authRepo.IsTokenBlacklisted(db, tokenString)
		if err != nil {
			log.Printf("[ERROR] blacklist lookup: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
		}
		if blacklisted {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token is blacklisted")
		}

		claims, err := parseAccessClaims(tokenString)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		userID, err := extractUserID(claims)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Invalid or missing user ID")
		}

		actor, err := resolveActor(c, db, userID)
		if err != nil {
			return err
		}

		helper.SetRawAccessToken(c, tokenString)
		c.Locals("user_id", userID.String())
		c.Locals("user_role", actor.Role)
		c.Locals("actor", actor)
		return c.Next()
	}
}

// OptionalAuthMiddleware resolves an actor when a valid token is
// present and falls back to the anonymous actor otherwise. Used on the
// public routes where visibility depends on who is asking.
func OptionalAuthMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("actor", policy.Anonymous)

		tokenString, err := extractAccessToken(c)
		if err != nil {
			return c.Next()
		}
		if blacklisted, err := authRepo.IsTokenBlacklisted(db, tokenString); err != nil || blacklisted {
			return c.Next()
		}
		claims, err := parseAccessClaims(tokenString)
		if err != nil {
			return c.Next()
		}
		userID, err := extractUserID(claims)
		if err != nil {
			return c.Next()
		}
		actor, rerr := resolveActor(c, db, userID)
		if rerr != nil {
			return c.Next()
		}

		helper.SetRawAccessToken(c, tokenString)
		c.Locals("user_id", userID.String())
		c.Locals("user_role", actor.Role)
		c.Locals("actor", actor)
		return c.Next()
	}
}

func resolveActor(c *fiber.Ctx, db *gorm.DB, userID uuid.UUID) (policy.Actor, error) {
	var user userModel.UserModel
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return policy.Anonymous, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - User not found")
		}
		return policy.Anonymous, fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
	}
	if !user.IsActive {
		return policy.Anonymous, fiber.NewError(fiber.StatusForbidden, "Account is deactivated")
	}
	profiles := userService.NewProfileService(db)
	return profiles.ActorFor(c.Context(), &user), nil
}

func extractAccessToken(c *fiber.Ctx) (string, error) {
	if raw := helper.GetRawAccessToken(c); raw != "" {
		return raw, nil
	}
	return "", errors.New("Unauthorized - No token provided")
}

func parseAccessClaims(tokenString string) (jwt.MapClaims, error) {
	secretKey := strings.TrimSpace(configs.JWTSecret)
	if secretKey == "" {
		return nil, errors.New("Missing JWT Secret")
	}

	claims := jwt.MapClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true}
	if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	}); err != nil {
		return nil, errors.New("Unauthorized - Token parse error")
	}

	if err := validateTokenExpiry(claims, 30*time.Second); err != nil {
		return nil, errors.New("Unauthorized - Token expired")
	}
	return claims, nil
}

func validateTokenExpiry(claims jwt.MapClaims, leeway time.Duration) error {
	exp, ok := claims["exp"].(float64)
	if !ok {
		return errors.New("missing exp claim")
	}
	if time.Now().After(time.Unix(int64(exp), 0).Add(leeway)) {
		return errors.New("token expired")
	}
	return nil
}
