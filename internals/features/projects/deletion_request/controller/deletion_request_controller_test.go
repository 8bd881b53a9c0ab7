package controller

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"laboissim_backend/internals/constants"
	"laboissim_backend/internals/features/projects/deletion_request/model"
	documentModel "laboissim_backend/internals/features/projects/document/model"
	projectDto "laboissim_backend/internals/features/projects/project/dto"
	projectModel "laboissim_backend/internals/features/projects/project/model"
	projectService "laboissim_backend/internals/features/projects/project/service"
	"laboissim_backend/internals/policy"
)

func openTestDB(t *testing.T) *gorm.DB {
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
		&projectModel.ProjectModel{},
		&projectModel.ProjectMemberModel{},
		&documentModel.ProjectDocumentModel{},
		&model.ProjectDeletionRequestModel{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// testApp mounts the create handler the way the private route group
// does, with the given actor already resolved.
func testApp(db *gorm.DB, actor policy.Actor) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("actor", actor)
		return c.Next()
	})
	ctrl := NewDeletionRequestController(db)
	app.Post("/projects/:id/deletion-request", ctrl.Create)
	return app
}

func seedValidated(t *testing.T, db *gorm.DB, owner policy.Actor, title string) *projectModel.ProjectModel {
	t.Helper()
	ctx := context.Background()
	projects := projectService.NewProjectService(db)
	p, err := projects.Create(ctx, owner, projectDto.CreateProjectRequest{Title: title})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	admin := policy.Actor{ID: uuid.New(), Role: constants.RoleAdmin, Authenticated: true}
	if _, err := projects.Validate(ctx, admin, p.ID); err != nil {
		t.Fatalf("validate: %v", err)
	}
	return p
}

func TestCreateTakesProjectFromURL(t *testing.T) {
	db := openTestDB(t)
	owner := policy.Actor{ID: uuid.New(), Role: constants.RoleMember, Authenticated: true}
	a := seedValidated(t, db, owner, "Project A")
	b := seedValidated(t, db, owner, "Project B")
	app := testApp(db, owner)

	// the body names project B; the URL must win
	body := `{"project_id":"` + b.ID.String() + `","reason":"dataset superseded"}`
	req := httptest.NewRequest(fiber.MethodPost, "/projects/"+a.ID.String()+"/deletion-request", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusCreated)
	}

	var aCount, bCount int64
	db.Model(&model.ProjectDeletionRequestModel{}).Where("project_id = ?", a.ID).Count(&aCount)
	db.Model(&model.ProjectDeletionRequestModel{}).Where("project_id = ?", b.ID).Count(&bCount)
	if aCount != 1 {
		t.Errorf("requests for URL project = %d, want 1", aCount)
	}
	if bCount != 0 {
		t.Errorf("requests for body project = %d, want 0", bCount)
	}
}

func TestCreateRejectsBadProjectID(t *testing.T) {
	db := openTestDB(t)
	owner := policy.Actor{ID: uuid.New(), Role: constants.RoleMember, Authenticated: true}
	app := testApp(db, owner)

	req := httptest.NewRequest(fiber.MethodPost, "/projects/not-a-uuid/deletion-request", strings.NewReader(`{"reason":"x y z"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusBadRequest)
	}
}
