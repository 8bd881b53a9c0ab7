package service

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	authModel "laboissim_backend/internals/features/users/auth/model"
	userModel "laboissim_backend/internals/features/users/user/model"
)

func openAuthTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&userModel.UserModel{},
		&userModel.UserProfileModel{},
		&authModel.RefreshTokenModel{},
		&authModel.TokenBlacklistModel{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func changePasswordApp(db *gorm.DB, userID uuid.UUID) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID.String())
		return c.Next()
	})
	app.Post("/change-password", func(c *fiber.Ctx) error {
		return ChangePassword(db, c)
	})
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return resp.StatusCode
}

func TestChangePassword(t *testing.T) {
	db := openAuthTestDB(t)

	hash, err := HashPassword("old-password-1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := userModel.UserModel{UserName: "pierre", Email: "pierre@lab.test", Password: hash, IsActive: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	rt := authModel.RefreshTokenModel{
		UserID:    user.ID,
		Token:     []byte("hash-of-refresh"),
		ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
	}
	if err := db.Create(&rt).Error; err != nil {
		t.Fatalf("seed refresh token: %v", err)
	}
	app := changePasswordApp(db, user.ID)

	if got := postJSON(t, app, "/change-password", `{"old_password":"wrong","new_password":"new-password-1"}`); got != fiber.StatusUnauthorized {
		t.Errorf("wrong old password: status = %d, want %d", got, fiber.StatusUnauthorized)
	}
	if got := postJSON(t, app, "/change-password", `{"old_password":"old-password-1","new_password":"short"}`); got != fiber.StatusBadRequest {
		t.Errorf("short new password: status = %d, want %d", got, fiber.StatusBadRequest)
	}
	if got := postJSON(t, app, "/change-password", `{"old_password":"old-password-1","new_password":"new-password-1"}`); got != fiber.StatusOK {
		t.Fatalf("change: status = %d, want %d", got, fiber.StatusOK)
	}

	var reloaded userModel.UserModel
	if err := db.First(&reloaded, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if err := CheckPasswordHash(reloaded.Password, "new-password-1"); err != nil {
		t.Error("new password must verify against the stored hash")
	}
	if err := CheckPasswordHash(reloaded.Password, "old-password-1"); err == nil {
		t.Error("old password must no longer verify")
	}

	// every other session's refresh token dies with the old password
	var rtReloaded authModel.RefreshTokenModel
	if err := db.First(&rtReloaded, "id = ?", rt.ID).Error; err != nil {
		t.Fatalf("reload refresh token: %v", err)
	}
	if rtReloaded.RevokedAt == nil {
		t.Error("refresh token must be revoked after a password change")
	}
}

func TestRevokeAllForUser(t *testing.T) {
	db := openAuthTestDB(t)
	userID := uuid.New()
	other := uuid.New()

	for _, uid := range []uuid.UUID{userID, userID, other} {
		rt := authModel.RefreshTokenModel{
			UserID:    uid,
			Token:     []byte(uuid.NewString()),
			ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
		}
		if err := db.Create(&rt).Error; err != nil {
			t.Fatalf("seed refresh token: %v", err)
		}
	}

	if err := RevokeAllForUser(db, userID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	var revoked, active int64
	db.Model(&authModel.RefreshTokenModel{}).Where("user_id = ? AND revoked_at IS NOT NULL", userID).Count(&revoked)
	db.Model(&authModel.RefreshTokenModel{}).Where("user_id = ? AND revoked_at IS NULL", other).Count(&active)
	if revoked != 2 {
		t.Errorf("revoked rows = %d, want 2", revoked)
	}
	if active != 1 {
		t.Errorf("other user's active rows = %d, want 1", active)
	}
}
