package details

import (
	fileController "laboissim_backend/internals/features/files/controller"
	"laboissim_backend/internals/helpers/oss"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// FilePrivateRoutes covers the shared member file area.
func FilePrivateRoutes(r fiber.Router, db *gorm.DB, blob *oss.Lazy) {
	ctrl := fileController.NewUserFileController(db, blob)

	r.Get("/files", ctrl.List)
	r.Post("/files", ctrl.Upload)
	r.Delete("/files/:id", ctrl.Delete)
}
