package service

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"

	authModel "laboissim_backend/internals/features/users/auth/model"
	authRepo "laboissim_backend/internals/features/users/auth/repository"
	helper "laboissim_backend/internals/helpers"
)

// RefreshToken rotates the refresh token: the presented token must be
// known and active, the old row is revoked, and a fresh pair is issued.
// POST /api/auth/refresh-token
func RefreshToken(db *gorm.DB, c *fiber.Ctx) error {
	refreshCookie := strings.TrimSpace(c.Cookies("refresh_token"))
	if refreshCookie == "" {
		return helper.Error(c, fiber.StatusUnauthorized, "Refresh token missing")
	}

	refreshSecret, err := getRefreshSecret()
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, err.Error())
	}

	tok, err := jwt.Parse(refreshCookie, func(t *jwt.Token) (any, error) {
		return []byte(refreshSecret), nil
	})
	if err != nil || !tok.Valid {
		return helper.Error(c, fiber.StatusUnauthorized, "Refresh token invalid")
	}
	claims, _ := tok.Claims.(jwt.MapClaims)
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Refresh token invalid")
	}

	hash := computeRefreshHash(refreshCookie, refreshSecret)
	if _, err := authRepo.FindActiveRefreshTokenByHash(db, hash); err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Refresh token unknown or revoked")
	}

	userFull, err := authRepo.FindUserByID(db, userID)
	if err != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "User not found")
	}
	if !userFull.IsActive {
		return helper.Error(c, fiber.StatusForbidden, "Account is deactivated")
	}

	// rotate: revoke the presented token before issuing the new pair
	if err := authRepo.RevokeRefreshTokenByHash(db, hash); err != nil {
		log.Printf("[refresh] revoke old token: %v", err)
	}

	return issueTokens(c, db, *userFull)
}

// CleanupExpiredAuthRows sweeps expired refresh tokens and blacklist
// entries. Called from the scheduler.
func CleanupExpiredAuthRows(db *gorm.DB) {
	if n, err := authRepo.CleanupExpiredRefreshTokens(db); err != nil {
		log.Printf("[cleanup] refresh tokens: %v", err)
	} else if n > 0 {
		log.Printf("[cleanup] removed %d expired refresh tokens", n)
	}
	if n, err := authRepo.CleanupExpiredBlacklist(db); err != nil {
		log.Printf("[cleanup] blacklist: %v", err)
	} else if n > 0 {
		log.Printf("[cleanup] removed %d expired blacklist rows", n)
	}
}

// RevokeAllForUser revokes every active refresh token a user holds.
// Called on account deactivation and after a password change.
func RevokeAllForUser(db *gorm.DB, userID uuid.UUID) error {
	return db.Model(&authModel.RefreshTokenModel{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", nowUTC()).Error
}
