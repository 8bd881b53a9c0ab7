package details

import (
	userController "laboissim_backend/internals/features/users/user/controller"
	"laboissim_backend/internals/helpers/oss"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserPublicRoutes exposes the team roster without authentication.
func UserPublicRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := userController.NewUserController(db)

	r.Get("/team-members", ctrl.TeamMembers)
}

// UserPrivateRoutes covers the signed-in user's own profile.
func UserPrivateRoutes(r fiber.Router, db *gorm.DB, photos *oss.Lazy) {
	ctrl := userController.NewProfileController(db, photos)

	r.Get("/profile", ctrl.Get)
	r.Put("/profile", ctrl.Update)
	r.Post("/profile/photo", ctrl.UploadPhoto)
}

// UserAdminRoutes covers account administration.
func UserAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := userController.NewUserController(db)
	ctrl.Profiles.Audit = auditSink()

	r.Get("/users", ctrl.List)
	r.Put("/users/:id/role", ctrl.UpdateRole)
	r.Put("/users/:id/active", ctrl.SetActive)
}
