package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"laboissim_backend/internals/constants"
	deletionModel "laboissim_backend/internals/features/projects/deletion_request/model"
	"laboissim_backend/internals/features/projects/document/dto"
	"laboissim_backend/internals/features/projects/document/model"
	projectModel "laboissim_backend/internals/features/projects/project/model"
	"laboissim_backend/internals/helpers/apperr"
	"laboissim_backend/internals/policy"
)

// fakeBlob is an in-memory BlobStorage for tests.
type fakeBlob struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{files: map[string][]byte{}}
}

func (f *fakeBlob) Put(ctx context.Context, dir, filename, contentType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	url := "https://blob.test/" + dir + "/" + filename
	f.mu.Lock()
	f.files[url] = data
	f.mu.Unlock()
	return url, nil
}

func (f *fakeBlob) DeleteByPublicURL(ctx context.Context, publicURL string) error {
	f.mu.Lock()
	delete(f.files, publicURL)
	f.mu.Unlock()
	return nil
}

func (f *fakeBlob) exists(publicURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[publicURL]
	return ok
}

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
		&model.ProjectDocumentModel{},
		&deletionModel.ProjectDeletionRequestModel{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func memberActor(id uuid.UUID) policy.Actor {
	return policy.Actor{ID: id, Role: constants.RoleMember, Authenticated: true}
}

func seedProject(t *testing.T, db *gorm.DB, createdBy uuid.UUID, members ...uuid.UUID) *projectModel.ProjectModel {
	t.Helper()
	p := projectModel.ProjectModel{Title: "Sediment cores", CreatedBy: createdBy}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	for _, m := range members {
		if err := db.Create(&projectModel.ProjectMemberModel{ProjectID: p.ID, UserID: m}).Error; err != nil {
			t.Fatalf("seed member: %v", err)
		}
	}
	return &p
}

func item(name string) UploadItem {
	return UploadItem{
		Name:        name,
		ContentType: "application/octet-stream",
		Size:        64,
		Reader:      strings.NewReader("payload"),
	}
}

func TestBulkUploadRequiresCapability(t *testing.T) {
	db := openTestDB(t)
	svc := NewDocumentService(db, newFakeBlob())
	ctx := context.Background()
	creator := uuid.New()
	outsider := memberActor(uuid.New())
	p := seedProject(t, db, creator)

	if _, err := svc.BulkUpload(ctx, outsider, p.ID, []UploadItem{item("a.pdf")}); !apperr.Is(err, apperr.KindNotAuthorized) {
		t.Errorf("outsider upload: err = %v, want NotAuthorized", err)
	}

	// once added to the members set, the same upload succeeds
	if err := db.Create(&projectModel.ProjectMemberModel{ProjectID: p.ID, UserID: outsider.ID}).Error; err != nil {
		t.Fatalf("add member: %v", err)
	}
	res, err := svc.BulkUpload(ctx, outsider, p.ID, []UploadItem{item("a.pdf")})
	if err != nil {
		t.Fatalf("member upload: %v", err)
	}
	if res.Uploaded != 1 || res.Failed != 0 {
		t.Errorf("result = %+v, want 1 uploaded", res)
	}
}

func TestBulkUploadCollectsPerFileErrors(t *testing.T) {
	db := openTestDB(t)
	svc := NewDocumentService(db, newFakeBlob())
	ctx := context.Background()
	creator := memberActor(uuid.New())
	p := seedProject(t, db, creator.ID)

	bad := item("")
	res, err := svc.BulkUpload(ctx, creator, p.ID, []UploadItem{item("paper.pdf"), bad, item("fig1.png")})
	if err != nil {
		t.Fatalf("bulk upload: %v", err)
	}
	if res.Uploaded != 2 || res.Failed != 1 {
		t.Errorf("uploaded=%d failed=%d, want 2/1", res.Uploaded, res.Failed)
	}
	if len(res.Errors) != 1 {
		t.Errorf("errors = %v, want one entry", res.Errors)
	}
}

func TestUploadDetectsFileType(t *testing.T) {
	db := openTestDB(t)
	svc := NewDocumentService(db, newFakeBlob())
	ctx := context.Background()
	creator := memberActor(uuid.New())
	p := seedProject(t, db, creator.ID)

	res, err := svc.BulkUpload(ctx, creator, p.ID, []UploadItem{item("micrograph.jpeg"), item("protocol.pdf")})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	types := map[string]string{}
	for _, d := range res.Items {
		types[d.Name] = d.FileType
	}
	if types["micrograph.jpeg"] != constants.FileTypeImage {
		t.Errorf("jpeg type = %q, want image", types["micrograph.jpeg"])
	}
	if types["protocol.pdf"] != constants.FileTypeDocument {
		t.Errorf("pdf type = %q, want document", types["protocol.pdf"])
	}
	for _, d := range res.Items {
		if d.Name == "micrograph.jpeg" && !d.IsImage {
			t.Error("jpeg should report is_image")
		}
	}
}

func TestPrivateDocumentVisibility(t *testing.T) {
	db := openTestDB(t)
	svc := NewDocumentService(db, newFakeBlob())
	ctx := context.Background()
	creator := memberActor(uuid.New())
	uploader := memberActor(uuid.New())
	viewer := memberActor(uuid.New())
	p := seedProject(t, db, creator.ID, uploader.ID, viewer.ID)

	private := false
	it := item("raw_data.csv")
	it.IsPublic = &private
	res, err := svc.BulkUpload(ctx, uploader, p.ID, []UploadItem{it, item("summary.pdf")})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if res.Uploaded != 2 {
		t.Fatalf("uploaded = %d, want 2", res.Uploaded)
	}

	// a plain member sees only the public document
	visible, err := svc.ListForProject(ctx, viewer, p.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 1 || visible[0].Name != "summary.pdf" {
		t.Errorf("member view = %v, want only summary.pdf", names(visible))
	}

	// uploader and creator see both
	for _, a := range []policy.Actor{uploader, creator} {
		all, err := svc.ListForProject(ctx, a, p.ID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("view for %s = %v, want both documents", a.ID, names(all))
		}
	}
}

func TestDeleteGatedAndRemovesBlob(t *testing.T) {
	db := openTestDB(t)
	blob := newFakeBlob()
	svc := NewDocumentService(db, blob)
	ctx := context.Background()
	creator := memberActor(uuid.New())
	member := memberActor(uuid.New())
	p := seedProject(t, db, creator.ID, member.ID)

	res, err := svc.BulkUpload(ctx, creator, p.ID, []UploadItem{item("notes.txt")})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	doc := res.Items[0]

	// membership alone does not grant delete
	if err := svc.Delete(ctx, member, doc.ID); !apperr.Is(err, apperr.KindNotAuthorized) {
		t.Errorf("member delete: err = %v, want NotAuthorized", err)
	}

	if err := svc.Delete(ctx, creator, doc.ID); err != nil {
		t.Fatalf("creator delete: %v", err)
	}
	if blob.exists(doc.FileURL) {
		t.Error("blob should be removed with the document")
	}
	var count int64
	db.Model(&model.ProjectDocumentModel{}).Where("id = ?", doc.ID).Count(&count)
	if count != 0 {
		t.Error("document row should be gone")
	}
}

func TestUpdateDocument(t *testing.T) {
	db := openTestDB(t)
	svc := NewDocumentService(db, newFakeBlob())
	ctx := context.Background()
	creator := memberActor(uuid.New())
	p := seedProject(t, db, creator.ID)

	res, err := svc.BulkUpload(ctx, creator, p.ID, []UploadItem{item("slides.ppt")})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	newType := constants.FileTypePresentation
	hidden := false
	updated, err := svc.Update(ctx, creator, res.Items[0].ID, dto.UpdateDocumentRequest{FileType: &newType, IsPublic: &hidden})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FileType != constants.FileTypePresentation || updated.IsPublic {
		t.Errorf("updated = %+v, want presentation/private", updated)
	}
}

func names(docs []dto.DocumentDTO) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Name)
	}
	return out
}
