package details

import (
	publicationController "laboissim_backend/internals/features/publications/controller"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// PublicationPublicRoutes serves the publication archive to visitors.
func PublicationPublicRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := publicationController.NewPublicationController(db)

	r.Get("/publications", ctrl.List)
	r.Get("/publications/:id", ctrl.Get)
}

// PublicationPrivateRoutes lets members manage their own entries.
func PublicationPrivateRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := publicationController.NewPublicationController(db)

	r.Post("/publications", ctrl.Create)
	r.Put("/publications/:id", ctrl.Update)
	r.Delete("/publications/:id", ctrl.Delete)
}
