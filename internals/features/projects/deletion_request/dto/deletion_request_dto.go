package dto

import (
	"time"

	"github.com/google/uuid"

	"laboissim_backend/internals/features/projects/deletion_request/model"
)

// ============================
// Response DTO
// ============================

type DeletionRequestDTO struct {
	ID           uuid.UUID  `json:"id"`
	ProjectID    uuid.UUID  `json:"project_id"`
	ProjectTitle string     `json:"project_title,omitempty"`
	RequestedBy  uuid.UUID  `json:"requested_by"`
	Reason       string     `json:"reason"`
	AdminNotes   *string    `json:"admin_notes,omitempty"`
	Status       string     `json:"status"`
	RequestedAt  time.Time  `json:"requested_at"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy   *uuid.UUID `json:"reviewed_by,omitempty"`
}

// ============================
// Request DTO
// ============================

type CreateDeletionRequest struct {
	// ProjectID comes from the URL, not the request body.
	ProjectID uuid.UUID `json:"-" validate:"required"`
	Reason    string    `json:"reason" validate:"required,min=3"`
}

type ReviewDeletionRequest struct {
	AdminNotes *string `json:"admin_notes"`
}

// ============================
// Converter
// ============================

func ToDeletionRequestDTO(m model.ProjectDeletionRequestModel, projectTitle string) DeletionRequestDTO {
	return DeletionRequestDTO{
		ID:           m.ID,
		ProjectID:    m.ProjectID,
		ProjectTitle: projectTitle,
		RequestedBy:  m.RequestedBy,
		Reason:       m.Reason,
		AdminNotes:   m.AdminNotes,
		Status:       m.Status,
		RequestedAt:  m.RequestedAt,
		ReviewedAt:   m.ReviewedAt,
		ReviewedBy:   m.ReviewedBy,
	}
}
