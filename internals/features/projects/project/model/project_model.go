package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectModel owns the project metadata and validation flag. The
// members set lives in project_members; documents and deletion requests
// cascade with the project row.
type ProjectModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Objectives  string    `gorm:"type:text" json:"objectives"`
	Methodology string    `gorm:"type:text" json:"methodology"`
	Results     string    `gorm:"type:text" json:"results"`

	StartDate *time.Time `gorm:"type:date" json:"start_date,omitempty"`
	EndDate   *time.Time `gorm:"type:date" json:"end_date,omitempty"`

	FundingCompany *string  `gorm:"size:255" json:"funding_company,omitempty"`
	FundingAmount  *float64 `gorm:"type:numeric(14,2)" json:"funding_amount,omitempty"`
	ImageURL       *string  `gorm:"size:255" json:"image,omitempty"`

	CreatedBy   uuid.UUID `gorm:"type:uuid;not null;index" json:"created_by"`
	IsValidated bool      `gorm:"not null;default:false" json:"is_validated"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ProjectModel) TableName() string { return "projects" }

func (p *ProjectModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProjectMemberModel is the membership set, keyed by (project, user) so
// repeated adds stay idempotent.
type ProjectMemberModel struct {
	ProjectID uuid.UUID `gorm:"type:uuid;primaryKey;constraint:OnDelete:CASCADE" json:"project_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	AddedAt   time.Time `gorm:"autoCreateTime" json:"added_at"`
}

func (ProjectMemberModel) TableName() string { return "project_members" }
