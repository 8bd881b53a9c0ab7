package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"laboissim_backend/internals/constants"
	"laboissim_backend/internals/features/projects/deletion_request/dto"
	"laboissim_backend/internals/features/projects/deletion_request/model"
	documentModel "laboissim_backend/internals/features/projects/document/model"
	projectDto "laboissim_backend/internals/features/projects/project/dto"
	projectModel "laboissim_backend/internals/features/projects/project/model"
	projectService "laboissim_backend/internals/features/projects/project/service"
	"laboissim_backend/internals/helpers/apperr"
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

func memberActor(id uuid.UUID) policy.Actor {
	return policy.Actor{ID: id, Role: constants.RoleMember, Authenticated: true}
}

func adminActor() policy.Actor {
	return policy.Actor{ID: uuid.New(), Role: constants.RoleAdmin, Authenticated: true}
}

// validatedProject creates a project owned by owner and flips the
// validation gate, returning the row.
func validatedProject(t *testing.T, db *gorm.DB, owner policy.Actor, title string) *projectModel.ProjectModel {
	t.Helper()
	ctx := context.Background()
	projects := projectService.NewProjectService(db)
	p, err := projects.Create(ctx, owner, projectDto.CreateProjectRequest{Title: title})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	if _, err := projects.Validate(ctx, adminActor(), p.ID); err != nil {
		t.Fatalf("validate: %v", err)
	}
	p.IsValidated = true
	return p
}

func TestCreateRequiresValidatedProjectOwnership(t *testing.T) {
	db := openTestDB(t)
	svc := NewDeletionRequestService(db)
	ctx := context.Background()
	owner := memberActor(uuid.New())

	// unvalidated project: the creator deletes directly, never requests
	projects := projectService.NewProjectService(db)
	draft, err := projects.Create(ctx, owner, projectDto.CreateProjectRequest{Title: "Draft"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, owner, dto.CreateDeletionRequest{ProjectID: draft.ID, Reason: "duplicate"}); !apperr.Is(err, apperr.KindNotAuthorized) {
		t.Errorf("request on unvalidated project: err = %v, want NotAuthorized", err)
	}

	p := validatedProject(t, db, owner, "Published")
	stranger := memberActor(uuid.New())
	if _, err := svc.Create(ctx, stranger, dto.CreateDeletionRequest{ProjectID: p.ID, Reason: "duplicate"}); !apperr.Is(err, apperr.KindNotAuthorized) {
		t.Errorf("stranger request: err = %v, want NotAuthorized", err)
	}

	req, err := svc.Create(ctx, owner, dto.CreateDeletionRequest{ProjectID: p.ID, Reason: "duplicate"})
	if err != nil {
		t.Fatalf("owner request: %v", err)
	}
	if req.Status != model.StatusPending {
		t.Errorf("status = %q, want pending", req.Status)
	}
}

func TestCreateValidation(t *testing.T) {
	db := openTestDB(t)
	svc := NewDeletionRequestService(db)
	ctx := context.Background()
	owner := memberActor(uuid.New())
	p := validatedProject(t, db, owner, "Published")

	if _, err := svc.Create(ctx, owner, dto.CreateDeletionRequest{ProjectID: p.ID, Reason: "   "}); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("blank reason: err = %v, want ValidationError", err)
	}
	if _, err := svc.Create(ctx, owner, dto.CreateDeletionRequest{ProjectID: uuid.New(), Reason: "x y z"}); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing project: err = %v, want NotFound", err)
	}
}

func TestDuplicatePendingRejected(t *testing.T) {
	db := openTestDB(t)
	svc := NewDeletionRequestService(db)
	ctx := context.Background()
	owner := memberActor(uuid.New())
	p := validatedProject(t, db, owner, "Published")

	if _, err := svc.Create(ctx, owner, dto.CreateDeletionRequest{ProjectID: p.ID, Reason: "duplicate"}); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if _, err := svc.Create(ctx, owner, dto.CreateDeletionRequest{ProjectID: p.ID, Reason: "again"}); !apperr.Is(err, apperr.KindInvalidState) {
		t.Errorf("second request: err = %v, want InvalidState", err)
	}
}

func TestRejectThenRequestAgain(t *testing.T) {
	db := openTestDB(t)
	svc := NewDeletionRequestService(db)
	ctx := context.Background()
	owner := memberActor(uuid.New())
	admin := adminActor()
	p := validatedProject(t, db, owner, "Published")

	req, err := svc.Create(ctx, owner, dto.CreateDeletionRequest{ProjectID: p.ID, Reason: "duplicate"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	notes := "keep it, data is still referenced"
	rejected, err := svc.Reject(ctx, admin, req.ID, dto.ReviewDeletionRequest{AdminNotes: &notes})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != model.StatusRejected {
		t.Errorf("status = %q, want rejected", rejected.Status)
	}
	if rejected.ReviewedAt == nil || rejected.ReviewedBy == nil || *rejected.ReviewedBy != admin.ID {
		t.Error("reject must stamp reviewer and timestamp")
	}

	// project untouched
	var project projectModel.ProjectModel
	if err := db.First(&project, "id = ?", p.ID).Error; err != nil {
		t.Fatalf("project should survive a reject: %v", err)
	}

	// and a fresh request is allowed
	if _, err := svc.Create(ctx, owner, dto.CreateDeletionRequest{ProjectID: p.ID, Reason: "second try"}); err != nil {
		t.Errorf("request after reject: %v", err)
	}

	// terminal state cannot be reviewed again
	if _, err := svc.Approve(ctx, admin, req.ID, dto.ReviewDeletionRequest{}); !apperr.Is(err, apperr.KindInvalidState) {
		t.Errorf("re-review: err = %v, want InvalidState", err)
	}
}

func TestApproveCascades(t *testing.T) {
	db := openTestDB(t)
	svc := NewDeletionRequestService(db)
	ctx := context.Background()
	owner := memberActor(uuid.New())
	admin := adminActor()
	p := validatedProject(t, db, owner, "Published")

	doc := documentModel.ProjectDocumentModel{
		ProjectID:  p.ID,
		FileURL:    "https://blob.example/report.pdf",
		Name:       "report.pdf",
		UploadedBy: owner.ID,
	}
	if err := db.Create(&doc).Error; err != nil {
		t.Fatalf("seed document: %v", err)
	}

	req, err := svc.Create(ctx, owner, dto.CreateDeletionRequest{ProjectID: p.ID, Reason: "duplicate"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	approved, err := svc.Approve(ctx, admin, req.ID, dto.ReviewDeletionRequest{})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != model.StatusApproved {
		t.Errorf("status = %q, want approved", approved.Status)
	}
	if approved.ReviewedAt == nil || approved.ReviewedBy == nil || *approved.ReviewedBy != admin.ID {
		t.Error("approve must stamp reviewer and timestamp")
	}

	var projectCount, docCount, reqCount int64
	db.Model(&projectModel.ProjectModel{}).Where("id = ?", p.ID).Count(&projectCount)
	db.Model(&documentModel.ProjectDocumentModel{}).Where("project_id = ?", p.ID).Count(&docCount)
	db.Model(&model.ProjectDeletionRequestModel{}).Where("project_id = ?", p.ID).Count(&reqCount)
	if projectCount != 0 {
		t.Error("project must be gone after approval")
	}
	if docCount != 0 {
		t.Error("documents must cascade with the project")
	}
	if reqCount != 0 {
		t.Error("deletion requests cascade with the project")
	}
}

func TestReviewIsAdminOnly(t *testing.T) {
	db := openTestDB(t)
	svc := NewDeletionRequestService(db)
	ctx := context.Background()
	owner := memberActor(uuid.New())
	p := validatedProject(t, db, owner, "Published")

	req, err := svc.Create(ctx, owner, dto.CreateDeletionRequest{ProjectID: p.ID, Reason: "duplicate"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}

	if _, err := svc.Approve(ctx, owner, req.ID, dto.ReviewDeletionRequest{}); !apperr.Is(err, apperr.KindNotAuthorized) {
		t.Errorf("owner approve: err = %v, want NotAuthorized", err)
	}
	chef := policy.Actor{ID: uuid.New(), Role: constants.RoleChefDEquipe, Authenticated: true}
	if _, err := svc.Reject(ctx, chef, req.ID, dto.ReviewDeletionRequest{}); !apperr.Is(err, apperr.KindNotAuthorized) {
		t.Errorf("chef reject: err = %v, want NotAuthorized", err)
	}
	if _, err := svc.List(ctx, owner); !apperr.Is(err, apperr.KindNotAuthorized) {
		t.Errorf("owner list: err = %v, want NotAuthorized", err)
	}
}
