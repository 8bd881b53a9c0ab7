package details

import (
	authController "laboissim_backend/internals/features/users/auth/controller"
	rateLimiter "laboissim_backend/internals/middlewares"
	authmw "laboissim_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthRoutes mounts the authentication endpoints under /api/auth.
func AuthRoutes(app *fiber.App, db *gorm.DB) {
	ctrl := authController.NewAuthController(db)

	base := app.Group("/api/auth")

	base.Post("/register", rateLimiter.RegisterRateLimiter(), ctrl.Register)
	base.Post("/login", rateLimiter.LoginRateLimiter(), ctrl.Login)
	base.Post("/login-google", rateLimiter.LoginRateLimiter(), ctrl.LoginGoogle)
	base.Post("/refresh-token", ctrl.RefreshToken)
	base.Post("/logout", ctrl.Logout)

	base.Get("/me", authmw.AuthMiddleware(db), ctrl.Me)
	base.Post("/change-password", authmw.AuthMiddleware(db), ctrl.ChangePassword)
}
