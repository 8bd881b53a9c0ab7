package details

import (
	deletionController "laboissim_backend/internals/features/projects/deletion_request/controller"
	documentController "laboissim_backend/internals/features/projects/document/controller"
	projectController "laboissim_backend/internals/features/projects/project/controller"
	"laboissim_backend/internals/helpers/oss"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ProjectPublicRoutes lists validated projects for visitors.
func ProjectPublicRoutes(r fiber.Router, db *gorm.DB, blob *oss.Lazy) {
	ctrl := projectController.NewProjectController(db, blob)

	r.Get("/projects", ctrl.PublicList)
}

// ProjectPrivateRoutes covers project work by signed-in members.
func ProjectPrivateRoutes(r fiber.Router, db *gorm.DB, blob *oss.Lazy) {
	projects := projectController.NewProjectController(db, blob)
	documents := documentController.NewDocumentController(db, blob)
	deletions := deletionController.NewDeletionRequestController(db)
	sink := auditSink()
	projects.Service.Audit = sink
	documents.Service.Audit = sink
	deletions.Service.Audit = sink

	r.Get("/projects", projects.List)
	r.Post("/projects", projects.Create)
	r.Get("/projects/:id", projects.Get)
	r.Put("/projects/:id", projects.Update)
	r.Delete("/projects/:id", projects.Delete)
	r.Post("/projects/:id/image", projects.UploadImage)
	r.Post("/projects/:id/members", projects.AddMember)
	r.Delete("/projects/:id/members/:userId", projects.RemoveMember)

	r.Get("/projects/:id/documents", documents.ListForProject)
	r.Post("/projects/:id/documents", documents.Upload)
	r.Put("/documents/:id", documents.Update)
	r.Delete("/documents/:id", documents.Delete)

	r.Post("/projects/:id/deletion-request", deletions.Create)
}

// ProjectAdminRoutes covers validation and the deletion queue.
func ProjectAdminRoutes(r fiber.Router, db *gorm.DB, blob *oss.Lazy) {
	projects := projectController.NewProjectController(db, blob)
	deletions := deletionController.NewDeletionRequestController(db)
	sink := auditSink()
	projects.Service.Audit = sink
	deletions.Service.Audit = sink

	r.Post("/projects/:id/validate", projects.ValidateProject)

	r.Get("/deletion-requests", deletions.List)
	r.Post("/deletion-requests/:id/approve", deletions.Approve)
	r.Post("/deletion-requests/:id/reject", deletions.Reject)
}
