package routes

import (
	"log"
	"time"

	"laboissim_backend/internals/helpers/oss"
	authmw "laboissim_backend/internals/middlewares/auth"
	routeDetails "laboissim_backend/internals/route/details"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	blob := oss.NewLazy("laboissim")

	log.Println("[INFO] Setting up AuthRoutes...")
	routeDetails.AuthRoutes(app, db)

	// PUBLIC: token optional, anonymous actor when absent
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public", authmw.OptionalAuthMiddleware(db))

	// PRIVATE: any signed-in user
	log.Println("[INFO] Setting up PRIVATE group...")
	private := app.Group("/api/u", authmw.AuthMiddleware(db))

	// ADMIN: signed-in admins only
	log.Println("[INFO] Setting up ADMIN group...")
	admin := app.Group("/api/a", authmw.AuthMiddleware(db), authmw.AdminOnly())

	log.Println("[INFO] Mounting User routes...")
	routeDetails.UserPublicRoutes(public, db)
	routeDetails.UserPrivateRoutes(private, db, blob)
	routeDetails.UserAdminRoutes(admin, db)

	log.Println("[INFO] Mounting Project routes...")
	routeDetails.ProjectPublicRoutes(public, db, blob)
	routeDetails.ProjectPrivateRoutes(private, db, blob)
	routeDetails.ProjectAdminRoutes(admin, db, blob)

	log.Println("[INFO] Mounting Publication routes...")
	routeDetails.PublicationPublicRoutes(public, db)
	routeDetails.PublicationPrivateRoutes(private, db)

	log.Println("[INFO] Mounting File routes...")
	routeDetails.FilePrivateRoutes(private, db, blob)

	log.Println("[INFO] Mounting Content routes...")
	routeDetails.ContentPrivateRoutes(private, db)
	routeDetails.ContentAdminRoutes(admin, db)
}
