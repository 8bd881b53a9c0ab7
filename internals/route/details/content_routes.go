package details

import (
	contentController "laboissim_backend/internals/features/content/controller"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ContentPrivateRoutes serves the site content singleton to signed-in
// users.
func ContentPrivateRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := contentController.NewSiteContentController(db)

	r.Get("/site-content", ctrl.Get)
}

// ContentAdminRoutes lets admins edit the site content.
func ContentAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := contentController.NewSiteContentController(db)

	r.Put("/site-content", ctrl.Update)
}
