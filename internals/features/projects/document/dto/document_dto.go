package dto

import (
	"time"

	"github.com/google/uuid"

	"laboissim_backend/internals/features/projects/document/model"
	"laboissim_backend/internals/policy"
)

// ============================
// Response DTO
// ============================

type DocumentDTO struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"project_id"`
	FileURL     string    `json:"file"`
	Name        string    `json:"name"`
	FileType    string    `json:"file_type"`
	Description string    `json:"description"`
	UploadedBy  uuid.UUID `json:"uploaded_by"`
	IsPublic    bool      `json:"is_public"`
	FileSize    int64     `json:"file_size"`

	IsImage   bool    `json:"is_image"`
	SizeMB    float64 `json:"size_mb"`
	Extension string  `json:"extension"`

	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`

	UploadedAt time.Time `json:"uploaded_at"`
}

// BulkUploadResult reports per-file outcomes so one bad file does not
// abort the batch.
type BulkUploadResult struct {
	Uploaded int               `json:"uploaded"`
	Failed   int               `json:"failed"`
	Errors   map[string]string `json:"errors,omitempty"`
	Items    []DocumentDTO     `json:"items"`
}

// ============================
// Request DTO
// ============================

type UpdateDocumentRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	FileType    *string `json:"file_type" validate:"omitempty,oneof=document image presentation spreadsheet other"`
	IsPublic    *bool   `json:"is_public"`
}

// ============================
// Converter
// ============================

func ToDocumentDTO(m model.ProjectDocumentModel, actor policy.Actor, project policy.ProjectRef) DocumentDTO {
	ref := policy.DocumentRef{
		ID:         m.ID,
		UploadedBy: m.UploadedBy,
		IsPublic:   m.IsPublic,
		Project:    project,
	}
	return DocumentDTO{
		ID:          m.ID,
		ProjectID:   m.ProjectID,
		FileURL:     m.FileURL,
		Name:        m.Name,
		FileType:    m.FileType,
		Description: m.Description,
		UploadedBy:  m.UploadedBy,
		IsPublic:    m.IsPublic,
		FileSize:    m.FileSize,

		IsImage:   m.IsImage(),
		SizeMB:    m.SizeMB(),
		Extension: m.Extension(),

		CanEdit:   policy.CanEditDocument(actor, ref),
		CanDelete: policy.CanDeleteDocument(actor, ref),

		UploadedAt: m.UploadedAt,
	}
}
