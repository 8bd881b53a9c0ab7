package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"laboissim_backend/internals/constants"
	deletionModel "laboissim_backend/internals/features/projects/deletion_request/model"
	documentModel "laboissim_backend/internals/features/projects/document/model"
	"laboissim_backend/internals/features/projects/project/dto"
	"laboissim_backend/internals/features/projects/project/model"
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
		&model.ProjectModel{},
		&model.ProjectMemberModel{},
		&documentModel.ProjectDocumentModel{},
		&deletionModel.ProjectDeletionRequestModel{},
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

func mustCreate(t *testing.T, svc *ProjectService, actor policy.Actor, title string) *model.ProjectModel {
	t.Helper()
	p, err := svc.Create(context.Background(), actor, dto.CreateProjectRequest{Title: title})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func TestCreateSetsOwner(t *testing.T) {
	svc := NewProjectService(openTestDB(t))
	owner := memberActor(uuid.New())

	p := mustCreate(t, svc, owner, "Microplastics survey")
	if p.CreatedBy != owner.ID {
		t.Errorf("created_by = %s, want %s", p.CreatedBy, owner.ID)
	}
	if p.IsValidated {
		t.Error("new projects must not be validated")
	}

	if _, err := svc.Create(context.Background(), policy.Anonymous, dto.CreateProjectRequest{Title: "nope"}); !apperr.Is(err, apperr.KindNotAuthorized) {
		t.Errorf("anonymous create: err = %v, want NotAuthorized", err)
	}
}

func TestDirectDeleteUnvalidated(t *testing.T) {
	svc := NewProjectService(openTestDB(t))
	ctx := context.Background()
	owner := memberActor(uuid.New())

	p := mustCreate(t, svc, owner, "Soil samples")
	if err := svc.Delete(ctx, owner, p.ID); err != nil {
		t.Fatalf("direct delete: %v", err)
	}
	if _, err := svc.Get(ctx, p.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("after delete: err = %v, want NotFound", err)
	}
}

func TestValidatedProjectCannotBeDeletedDirectly(t *testing.T) {
	svc := NewProjectService(openTestDB(t))
	ctx := context.Background()
	owner := memberActor(uuid.New())

	p := mustCreate(t, svc, owner, "Genome pipeline")
	if _, err := svc.Validate(ctx, adminActor(), p.ID); err != nil {
		t.Fatalf("validate: %v", err)
	}

	// nobody bypasses the workflow, not even the creator or an admin
	if err := svc.Delete(ctx, owner, p.ID); !apperr.Is(err, apperr.KindInvalidState) {
		t.Errorf("creator delete: err = %v, want InvalidState", err)
	}
	if err := svc.Delete(ctx, adminActor(), p.ID); !apperr.Is(err, apperr.KindInvalidState) {
		t.Errorf("admin delete: err = %v, want InvalidState", err)
	}
	if _, err := svc.Get(ctx, p.ID); err != nil {
		t.Errorf("project should still exist: %v", err)
	}
}

func TestDeleteRequiresCapability(t *testing.T) {
	svc := NewProjectService(openTestDB(t))
	ctx := context.Background()
	owner := memberActor(uuid.New())
	stranger := memberActor(uuid.New())

	p := mustCreate(t, svc, owner, "Field notes")
	if err := svc.Delete(ctx, stranger, p.ID); !apperr.Is(err, apperr.KindNotAuthorized) {
		t.Errorf("stranger delete: err = %v, want NotAuthorized", err)
	}
}

func TestValidateIsAdminOnly(t *testing.T) {
	svc := NewProjectService(openTestDB(t))
	ctx := context.Background()
	owner := memberActor(uuid.New())

	p := mustCreate(t, svc, owner, "Spectroscopy")
	if _, err := svc.Validate(ctx, owner, p.ID); !apperr.Is(err, apperr.KindNotAuthorized) {
		t.Errorf("owner validate: err = %v, want NotAuthorized", err)
	}
}

func TestAddMemberIdempotent(t *testing.T) {
	svc := NewProjectService(openTestDB(t))
	ctx := context.Background()
	owner := memberActor(uuid.New())
	newcomer := uuid.New()

	p := mustCreate(t, svc, owner, "Reef imaging")
	if err := svc.AddMember(ctx, owner, p.ID, newcomer); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := svc.AddMember(ctx, owner, p.ID, newcomer); err != nil {
		t.Fatalf("second add: %v", err)
	}

	ids, err := svc.MemberIDs(ctx, p.ID)
	if err != nil {
		t.Fatalf("member ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != newcomer {
		t.Errorf("members = %v, want exactly [%s]", ids, newcomer)
	}

	if err := svc.RemoveMember(ctx, owner, p.ID, newcomer); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	ids, _ = svc.MemberIDs(ctx, p.ID)
	if len(ids) != 0 {
		t.Errorf("members after remove = %v, want empty", ids)
	}
}

func TestPublicListOnlyValidated(t *testing.T) {
	svc := NewProjectService(openTestDB(t))
	ctx := context.Background()
	owner := memberActor(uuid.New())

	mustCreate(t, svc, owner, "Draft work")
	validated := mustCreate(t, svc, owner, "Published work")
	if _, err := svc.Validate(ctx, adminActor(), validated.ID); err != nil {
		t.Fatalf("validate: %v", err)
	}

	public, err := svc.PublicList(ctx)
	if err != nil {
		t.Fatalf("public list: %v", err)
	}
	if len(public) != 1 || public[0].ID != validated.ID {
		t.Errorf("public list = %d projects, want only the validated one", len(public))
	}
}

func TestUpdateGatedByCapability(t *testing.T) {
	svc := NewProjectService(openTestDB(t))
	ctx := context.Background()
	owner := memberActor(uuid.New())
	stranger := memberActor(uuid.New())

	p := mustCreate(t, svc, owner, "Old title")
	newTitle := "New title"
	if _, err := svc.Update(ctx, stranger, p.ID, dto.UpdateProjectRequest{Title: &newTitle}); !apperr.Is(err, apperr.KindNotAuthorized) {
		t.Errorf("stranger update: err = %v, want NotAuthorized", err)
	}

	updated, err := svc.Update(ctx, owner, p.ID, dto.UpdateProjectRequest{Title: &newTitle})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Title != newTitle {
		t.Errorf("title = %q, want %q", updated.Title, newTitle)
	}
}

func TestDescribeFlagsFlipWithValidation(t *testing.T) {
	svc := NewProjectService(openTestDB(t))
	ctx := context.Background()
	owner := memberActor(uuid.New())

	p := mustCreate(t, svc, owner, "Flag check")
	d, err := svc.Describe(ctx, owner, p)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if !d.CanDelete || d.CanRequestDeletion {
		t.Errorf("unvalidated: can_delete=%v can_request=%v, want true/false", d.CanDelete, d.CanRequestDeletion)
	}

	p, err = svc.Validate(ctx, adminActor(), p.ID)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	d, err = svc.Describe(ctx, owner, p)
	if err != nil {
		t.Fatalf("describe validated: %v", err)
	}
	if d.CanDelete || !d.CanRequestDeletion {
		t.Errorf("validated: can_delete=%v can_request=%v, want false/true", d.CanDelete, d.CanRequestDeletion)
	}
}
