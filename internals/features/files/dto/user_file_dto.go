package dto

import (
	"time"

	"github.com/google/uuid"

	"laboissim_backend/internals/features/files/model"
)

type UploadedByDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type UserFileDTO struct {
	ID         uuid.UUID     `json:"id"`
	FileURL    string        `json:"file"`
	Name       string        `json:"name"`
	FileType   string        `json:"file_type"`
	Size       int64         `json:"size"`
	UploadedBy UploadedByDTO `json:"uploaded_by"`
	UploadedAt time.Time     `json:"uploaded_at"`
}

func ToUserFileDTO(m model.UserFileModel, uploaderName string) UserFileDTO {
	return UserFileDTO{
		ID:         m.ID,
		FileURL:    m.FileURL,
		Name:       m.Name,
		FileType:   m.FileType,
		Size:       m.Size,
		UploadedBy: UploadedByDTO{ID: m.UploadedBy, Name: uploaderName},
		UploadedAt: m.UploadedAt,
	}
}
