package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// PublicationModel is a lab publication entry: title, abstract and
// keyword tags, readable by anyone.
type PublicationModel struct {
	ID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title    string         `gorm:"size:500;not null" json:"title" validate:"required,min=3,max=500"`
	Abstract string         `gorm:"type:text;not null" json:"abstract" validate:"required"`
	Tags     pq.StringArray `gorm:"type:text[]" json:"tags"`
	PostedBy uuid.UUID      `gorm:"type:uuid;not null;index" json:"posted_by"`
	PostedAt time.Time      `gorm:"autoCreateTime" json:"posted_at"`
}

func (PublicationModel) TableName() string {
	return "publications"
}

func (m *PublicationModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
