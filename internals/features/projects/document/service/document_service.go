package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"laboissim_backend/internals/constants"
	"laboissim_backend/internals/features/projects/document/dto"
	"laboissim_backend/internals/features/projects/document/model"
	projectModel "laboissim_backend/internals/features/projects/project/model"
	"laboissim_backend/internals/helpers/apperr"
	"laboissim_backend/internals/policy"
)

// BlobStorage is the capability interface the document service uses to
// persist file payloads; the OSS client implements it in production.
type BlobStorage interface {
	Put(ctx context.Context, dir, filename, contentType string, r io.Reader) (publicURL string, err error)
	DeleteByPublicURL(ctx context.Context, publicURL string) error
}

// UploadItem is one file payload in a (bulk) upload.
type UploadItem struct {
	Name        string
	Description string
	FileType    string // empty → detect from extension
	IsPublic    *bool  // nil → default true
	ContentType string
	Size        int64
	Reader      io.Reader
}

type DocumentService struct {
	DB    *gorm.DB
	Blob  BlobStorage
	Audit policy.AuditSink
}

func NewDocumentService(db *gorm.DB, blob BlobStorage) *DocumentService {
	return &DocumentService{DB: db, Blob: blob, Audit: policy.NopAudit{}}
}

func (s *DocumentService) audit(ctx context.Context, actor policy.Actor, action string, resource uuid.UUID, allowed bool) {
	s.Audit.Decision(ctx, policy.Decision{ActorID: actor.ID, Action: action, Resource: resource.String(), Allowed: allowed})
}

func (s *DocumentService) projectRef(ctx context.Context, projectID uuid.UUID) (policy.ProjectRef, error) {
	var p projectModel.ProjectModel
	if err := s.DB.WithContext(ctx).First(&p, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return policy.ProjectRef{}, apperr.NotFound("project %s not found", projectID)
		}
		return policy.ProjectRef{}, err
	}
	var members []uuid.UUID
	if err := s.DB.WithContext(ctx).
		Model(&projectModel.ProjectMemberModel{}).
		Where("project_id = ?", projectID).
		Pluck("user_id", &members).Error; err != nil {
		return policy.ProjectRef{}, err
	}
	return policy.ProjectRef{
		ID:          p.ID,
		CreatedBy:   p.CreatedBy,
		IsValidated: p.IsValidated,
		Members:     members,
	}, nil
}

func (s *DocumentService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*model.ProjectDocumentModel, policy.ProjectRef, error) {
	var m model.ProjectDocumentModel
	if err := s.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, policy.ProjectRef{}, apperr.NotFound("document %s not found", id)
		}
		return nil, policy.ProjectRef{}, err
	}
	ref, err := s.projectRef(ctx, m.ProjectID)
	if err != nil {
		return nil, policy.ProjectRef{}, err
	}

	allowed := policy.CanViewDocument(actor, policy.DocumentRef{ID: m.ID, UploadedBy: m.UploadedBy, IsPublic: m.IsPublic, Project: ref})
	s.audit(ctx, actor, "document.view", id, allowed)
	if !allowed {
		return nil, policy.ProjectRef{}, apperr.NotAuthorized("you may not view this document")
	}
	return &m, ref, nil
}

// ListForProject returns the documents the actor may see.
func (s *DocumentService) ListForProject(ctx context.Context, actor policy.Actor, projectID uuid.UUID) ([]dto.DocumentDTO, error) {
	ref, err := s.projectRef(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var rows []model.ProjectDocumentModel
	if err := s.DB.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("uploaded_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]dto.DocumentDTO, 0, len(rows))
	for _, m := range rows {
		d := policy.DocumentRef{ID: m.ID, UploadedBy: m.UploadedBy, IsPublic: m.IsPublic, Project: ref}
		if !policy.CanViewDocument(actor, d) {
			continue
		}
		out = append(out, dto.ToDocumentDTO(m, actor, ref))
	}
	return out, nil
}

// BulkUpload checks the upload capability once, then processes each
// file independently, collecting per-file errors.
func (s *DocumentService) BulkUpload(ctx context.Context, actor policy.Actor, projectID uuid.UUID, items []UploadItem) (*dto.BulkUploadResult, error) {
	if len(items) == 0 {
		return nil, apperr.Validation("no files provided")
	}

	ref, err := s.projectRef(ctx, projectID)
	if err != nil {
		return nil, err
	}
	allowed := policy.CanUploadFiles(actor, ref)
	s.audit(ctx, actor, "document.upload", projectID, allowed)
	if !allowed {
		return nil, apperr.NotAuthorized("you may not upload files to this project")
	}

	result := &dto.BulkUploadResult{Errors: map[string]string{}, Items: []dto.DocumentDTO{}}
	for i, item := range items {
		doc, err := s.storeOne(ctx, actor, projectID, item)
		if err != nil {
			key := item.Name
			if key == "" {
				key = fmt.Sprintf("file[%d]", i)
			}
			result.Failed++
			result.Errors[key] = err.Error()
			continue
		}
		result.Uploaded++
		result.Items = append(result.Items, dto.ToDocumentDTO(*doc, actor, ref))
	}
	if result.Failed == 0 {
		result.Errors = nil
	}
	return result, nil
}

func (s *DocumentService) storeOne(ctx context.Context, actor policy.Actor, projectID uuid.UUID, item UploadItem) (*model.ProjectDocumentModel, error) {
	name := strings.TrimSpace(item.Name)
	if name == "" {
		return nil, apperr.Validation("file name is required")
	}
	if item.FileType != "" && !constants.IsValidFileType(item.FileType) {
		return nil, apperr.Validation("invalid file type %q", item.FileType)
	}
	if item.Reader == nil {
		return nil, apperr.Validation("empty file payload")
	}

	url, err := s.Blob.Put(ctx, "project_documents/"+projectID.String(), name, item.ContentType, item.Reader)
	if err != nil {
		return nil, err
	}

	isPublic := true
	if item.IsPublic != nil {
		isPublic = *item.IsPublic
	}
	doc := model.ProjectDocumentModel{
		ProjectID:   projectID,
		FileURL:     url,
		Name:        name,
		FileType:    item.FileType, // empty → BeforeCreate detects from extension
		Description: item.Description,
		UploadedBy:  actor.ID,
		IsPublic:    isPublic,
		FileSize:    item.Size,
	}
	if err := s.DB.WithContext(ctx).Create(&doc).Error; err != nil {
		// best effort: do not leave an orphan blob behind
		if delErr := s.Blob.DeleteByPublicURL(ctx, url); delErr != nil {
			log.Printf("[WARN] orphan blob %s: %v", url, delErr)
		}
		return nil, err
	}
	return &doc, nil
}

func (s *DocumentService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, in dto.UpdateDocumentRequest) (*dto.DocumentDTO, error) {
	var m model.ProjectDocumentModel
	if err := s.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("document %s not found", id)
		}
		return nil, err
	}
	ref, err := s.projectRef(ctx, m.ProjectID)
	if err != nil {
		return nil, err
	}

	allowed := policy.CanEditDocument(actor, policy.DocumentRef{ID: m.ID, UploadedBy: m.UploadedBy, IsPublic: m.IsPublic, Project: ref})
	s.audit(ctx, actor, "document.edit", id, allowed)
	if !allowed {
		return nil, apperr.NotAuthorized("you may not edit this document")
	}

	changes := map[string]interface{}{}
	if in.Name != nil {
		changes["name"] = *in.Name
	}
	if in.Description != nil {
		changes["description"] = *in.Description
	}
	if in.FileType != nil {
		changes["file_type"] = *in.FileType
	}
	if in.IsPublic != nil {
		changes["is_public"] = *in.IsPublic
	}
	if len(changes) > 0 {
		if err := s.DB.WithContext(ctx).Model(&model.ProjectDocumentModel{}).
			Where("id = ?", id).Updates(changes).Error; err != nil {
			return nil, err
		}
		if err := s.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
			return nil, err
		}
	}
	out := dto.ToDocumentDTO(m, actor, ref)
	return &out, nil
}

func (s *DocumentService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	var m model.ProjectDocumentModel
	if err := s.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("document %s not found", id)
		}
		return err
	}
	ref, err := s.projectRef(ctx, m.ProjectID)
	if err != nil {
		return err
	}

	allowed := policy.CanDeleteDocument(actor, policy.DocumentRef{ID: m.ID, UploadedBy: m.UploadedBy, IsPublic: m.IsPublic, Project: ref})
	s.audit(ctx, actor, "document.delete", id, allowed)
	if !allowed {
		return apperr.NotAuthorized("you may not delete this document")
	}

	if err := s.DB.WithContext(ctx).Delete(&model.ProjectDocumentModel{}, "id = ?", id).Error; err != nil {
		return err
	}
	if err := s.Blob.DeleteByPublicURL(ctx, m.FileURL); err != nil {
		log.Printf("[WARN] blob delete %s: %v", m.FileURL, err)
	}
	return nil
}
