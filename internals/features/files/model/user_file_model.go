package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserFileModel is a file in a member's personal space, independent of
// any project.
type UserFileModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FileURL    string    `gorm:"type:text;not null" json:"file"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	FileType   string    `gorm:"size:100" json:"file_type"` // MIME type
	Size       int64     `gorm:"not null;default:0" json:"size"`
	UploadedBy uuid.UUID `gorm:"type:uuid;not null;index" json:"uploaded_by"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

func (UserFileModel) TableName() string {
	return "user_files"
}

func (m *UserFileModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
