package controller

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"laboissim_backend/internals/constants"
	deletionModel "laboissim_backend/internals/features/projects/deletion_request/model"
	documentModel "laboissim_backend/internals/features/projects/document/model"
	"laboissim_backend/internals/features/projects/project/dto"
	"laboissim_backend/internals/features/projects/project/model"
	projectService "laboissim_backend/internals/features/projects/project/service"
	"laboissim_backend/internals/policy"
)

// fakeCovers tracks stored objects by key so tests can assert on
// upload/cleanup behavior.
type fakeCovers struct {
	mu      sync.Mutex
	objects map[string]bool
}

func newFakeCovers() *fakeCovers {
	return &fakeCovers{objects: make(map[string]bool)}
}

func (f *fakeCovers) key(publicURL string) string {
	return strings.TrimPrefix(publicURL, "https://blob.test/")
}

func (f *fakeCovers) PutAsWebP(ctx context.Context, dir, filename string, r io.Reader) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	key := strings.Trim(dir, "/") + "/" + filename + ".webp"
	f.mu.Lock()
	f.objects[key] = true
	f.mu.Unlock()
	return "https://blob.test/" + key, nil
}

func (f *fakeCovers) DeleteByPublicURL(ctx context.Context, publicURL string) error {
	f.mu.Lock()
	delete(f.objects, f.key(publicURL))
	f.mu.Unlock()
	return nil
}

func (f *fakeCovers) DeleteObjects(ctx context.Context, keys []string) error {
	f.mu.Lock()
	for _, k := range keys {
		delete(f.objects, k)
	}
	f.mu.Unlock()
	return nil
}

func (f *fakeCovers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func openProjectTestDB(t *testing.T) *gorm.DB {
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
		&model.ProjectModel{},
		&model.ProjectMemberModel{},
		&documentModel.ProjectDocumentModel{},
		&deletionModel.ProjectDeletionRequestModel{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func projectApp(ctrl *ProjectController, actor policy.Actor) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("actor", actor)
		return c.Next()
	})
	app.Post("/projects/:id/image", ctrl.UploadImage)
	app.Delete("/projects/:id", ctrl.Delete)
	return app
}

func multipartImage(t *testing.T) (string, *bytes.Buffer) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("image", "cover.png")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := part.Write([]byte("png-bytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return w.FormDataContentType(), body
}

func TestUploadImageRejectedLeavesNoBlob(t *testing.T) {
	db := openProjectTestDB(t)
	covers := newFakeCovers()
	owner := policy.Actor{ID: uuid.New(), Role: constants.RoleMember, Authenticated: true}

	svc := projectService.NewProjectService(db)
	p, err := svc.Create(context.Background(), owner, dto.CreateProjectRequest{Title: "Spectroscopy"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	stranger := policy.Actor{ID: uuid.New(), Role: constants.RoleMember, Authenticated: true}
	app := projectApp(NewProjectController(db, covers), stranger)

	contentType, body := multipartImage(t)
	req := httptest.NewRequest(fiber.MethodPost, "/projects/"+p.ID.String()+"/image", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("status = %d, want %d", resp.StatusCode, fiber.StatusForbidden)
	}
	if covers.count() != 0 {
		t.Errorf("blob store holds %d objects after a rejected upload, want 0", covers.count())
	}
}

func TestDeleteCleansUpBlobs(t *testing.T) {
	db := openProjectTestDB(t)
	covers := newFakeCovers()
	owner := policy.Actor{ID: uuid.New(), Role: constants.RoleMember, Authenticated: true}
	app := projectApp(NewProjectController(db, covers), owner)

	svc := projectService.NewProjectService(db)
	p, err := svc.Create(context.Background(), owner, dto.CreateProjectRequest{Title: "Archive"})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}

	// attach a cover image through the handler so the fake holds its key
	contentType, body := multipartImage(t)
	req := httptest.NewRequest(fiber.MethodPost, "/projects/"+p.ID.String()+"/image", body)
	req.Header.Set("Content-Type", contentType)
	uploadResp, err := app.Test(req)
	if err != nil {
		t.Fatalf("upload image: %v", err)
	}
	if uploadResp.StatusCode != fiber.StatusOK {
		t.Fatalf("upload image status = %d, want %d", uploadResp.StatusCode, fiber.StatusOK)
	}

	// and a document blob seeded directly
	docKey := "documents/" + p.ID.String() + "/report.pdf"
	covers.mu.Lock()
	covers.objects[docKey] = true
	covers.mu.Unlock()
	doc := documentModel.ProjectDocumentModel{
		ProjectID:  p.ID,
		FileURL:    "https://blob.test/" + docKey,
		Name:       "report.pdf",
		UploadedBy: owner.ID,
	}
	if err := db.Create(&doc).Error; err != nil {
		t.Fatalf("seed document: %v", err)
	}

	resp, err := app.Test(httptest.NewRequest(fiber.MethodDelete, "/projects/"+p.ID.String(), nil))
	if err != nil {
		t.Fatalf("delete request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("delete status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	if covers.count() != 0 {
		t.Errorf("blob store holds %d objects after project deletion, want 0", covers.count())
	}
}
