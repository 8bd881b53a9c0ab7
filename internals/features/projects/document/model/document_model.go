package model

import (
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"laboissim_backend/internals/constants"
)

// ProjectDocumentModel is a file record attached to one project and
// cascade-deleted with it.
type ProjectDocumentModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index;constraint:OnDelete:CASCADE" json:"project_id"`

	FileURL     string `gorm:"type:text;not null" json:"file"`
	Name        string `gorm:"size:255;not null" json:"name"`
	FileType    string `gorm:"type:varchar(20);not null;default:'document';check:chk_project_documents_type,file_type IN ('document','image','presentation','spreadsheet','other')" json:"file_type"`
	Description string `gorm:"type:text" json:"description"`

	UploadedBy uuid.UUID `gorm:"type:uuid;not null;index" json:"uploaded_by"`
	IsPublic   bool      `gorm:"not null;default:true" json:"is_public"`
	FileSize   int64     `gorm:"not null;default:0" json:"file_size"`

	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

func (ProjectDocumentModel) TableName() string { return "project_documents" }

func (d *ProjectDocumentModel) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.FileType == "" {
		d.FileType = constants.DetectFileTypeFromExt(d.Name)
	}
	return nil
}

func (d *ProjectDocumentModel) Extension() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(d.Name)), ".")
}

func (d *ProjectDocumentModel) IsImage() bool {
	return constants.IsImageExtension(d.Name)
}

func (d *ProjectDocumentModel) SizeMB() float64 {
	return math.Round(float64(d.FileSize)/1024/1024*100) / 100
}
