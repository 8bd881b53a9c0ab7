package dto

import (
	"time"

	"github.com/google/uuid"

	"laboissim_backend/internals/features/publications/model"
)

type PostedByDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type PublicationDTO struct {
	ID       uuid.UUID   `json:"id"`
	Title    string      `json:"title"`
	Abstract string      `json:"abstract"`
	Tags     []string    `json:"tags"`
	PostedBy PostedByDTO `json:"posted_by"`
	PostedAt time.Time   `json:"posted_at"`
}

type CreatePublicationRequest struct {
	Title    string   `json:"title" validate:"required,min=3,max=500"`
	Abstract string   `json:"abstract" validate:"required"`
	Tags     []string `json:"tags" validate:"omitempty,dive,min=1,max=50"`
}

type UpdatePublicationRequest struct {
	Title    *string   `json:"title" validate:"omitempty,min=3,max=500"`
	Abstract *string   `json:"abstract" validate:"omitempty"`
	Tags     *[]string `json:"tags" validate:"omitempty,dive,min=1,max=50"`
}

func ToPublicationDTO(m model.PublicationModel, posterName string) PublicationDTO {
	tags := []string(m.Tags)
	if tags == nil {
		tags = []string{}
	}
	return PublicationDTO{
		ID:       m.ID,
		Title:    m.Title,
		Abstract: m.Abstract,
		Tags:     tags,
		PostedBy: PostedByDTO{ID: m.PostedBy, Name: posterName},
		PostedAt: m.PostedAt,
	}
}
