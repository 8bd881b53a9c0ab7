package dto

import (
	"time"

	"github.com/google/uuid"

	"laboissim_backend/internals/features/projects/project/model"
	"laboissim_backend/internals/policy"
)

// ============================
// Response DTO
// ============================

// ProjectDTO exposes the raw fields plus the derived permission flags
// evaluated against the current actor, so clients can render a
// permission-aware UI without re-deriving policy.
type ProjectDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Objectives  string    `json:"objectives"`
	Methodology string    `json:"methodology"`
	Results     string    `json:"results"`

	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	FundingCompany *string  `json:"funding_company,omitempty"`
	FundingAmount  *float64 `json:"funding_amount,omitempty"`
	ImageURL       *string  `json:"image,omitempty"`

	CreatedBy   uuid.UUID   `json:"created_by"`
	Members     []uuid.UUID `json:"members"`
	IsValidated bool        `json:"is_validated"`

	CanEdit                   bool `json:"can_edit"`
	CanDelete                 bool `json:"can_delete"`
	CanRequestDeletion        bool `json:"can_request_deletion"`
	HasPendingDeletionRequest bool `json:"has_pending_deletion_request"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ============================
// Request DTO
// ============================

type CreateProjectRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Description string `json:"description"`
	Objectives  string `json:"objectives"`
	Methodology string `json:"methodology"`
	Results     string `json:"results"`

	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`

	FundingCompany *string  `json:"funding_company"`
	FundingAmount  *float64 `json:"funding_amount"`
}

type UpdateProjectRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string `json:"description"`
	Objectives  *string `json:"objectives"`
	Methodology *string `json:"methodology"`
	Results     *string `json:"results"`

	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`

	FundingCompany *string  `json:"funding_company"`
	FundingAmount  *float64 `json:"funding_amount"`
}

type MemberRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// ============================
// Converter
// ============================

func ToProjectDTO(m model.ProjectModel, actor policy.Actor, members []uuid.UUID, hasPending bool) ProjectDTO {
	ref := policy.ProjectRef{
		ID:          m.ID,
		CreatedBy:   m.CreatedBy,
		IsValidated: m.IsValidated,
		Members:     members,
	}
	if members == nil {
		members = []uuid.UUID{}
	}
	return ProjectDTO{
		ID:             m.ID,
		Title:          m.Title,
		Description:    m.Description,
		Objectives:     m.Objectives,
		Methodology:    m.Methodology,
		Results:        m.Results,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		FundingCompany: m.FundingCompany,
		FundingAmount:  m.FundingAmount,
		ImageURL:       m.ImageURL,
		CreatedBy:      m.CreatedBy,
		Members:        members,
		IsValidated:    m.IsValidated,

		CanEdit:                   policy.CanEditProject(actor, ref),
		CanDelete:                 policy.CanDeleteProject(actor, ref),
		CanRequestDeletion:        policy.CanRequestDeletion(actor, ref),
		HasPendingDeletionRequest: hasPending,

		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
