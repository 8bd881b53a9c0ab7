package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Deletion request states. pending is initial; approved and rejected
// are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ProjectDeletionRequestModel references a project without owning it:
// the row cascades away when the project is deleted, which is exactly
// the terminal effect of an approval.
type ProjectDeletionRequestModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index;constraint:OnDelete:CASCADE" json:"project_id"`
	RequestedBy uuid.UUID `gorm:"type:uuid;not null;index" json:"requested_by"`

	Reason     string  `gorm:"type:text;not null" json:"reason"`
	AdminNotes *string `gorm:"type:text" json:"admin_notes,omitempty"`
	Status     string  `gorm:"type:varchar(20);not null;default:'pending';check:chk_deletion_request_status,status IN ('pending','approved','rejected')" json:"status"`

	RequestedAt time.Time  `gorm:"autoCreateTime" json:"requested_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy  *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`
}

func (ProjectDeletionRequestModel) TableName() string { return "project_deletion_requests" }

func (r *ProjectDeletionRequestModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = StatusPending
	}
	return nil
}

func (r *ProjectDeletionRequestModel) IsTerminal() bool {
	return r.Status == StatusApproved || r.Status == StatusRejected
}
