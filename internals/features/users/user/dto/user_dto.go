package dto

import (
	"time"

	"github.com/google/uuid"

	"laboissim_backend/internals/features/users/user/model"
)

// ============================
// Response DTO
// ============================

type UserProfileDTO struct {
	Role         string  `json:"role"`
	IsTeamLead   bool    `json:"is_team_lead"`
	IsAdmin      bool    `json:"is_admin"`
	IsChefEquipe bool    `json:"is_chef_d_equipe"`
	Phone        *string `json:"phone,omitempty"`
	Bio          *string `json:"bio,omitempty"`
	PhotoURL     *string `json:"profile_image,omitempty"`
	Location     *string `json:"location,omitempty"`
	Institution  *string `json:"institution,omitempty"`
	Website      *string `json:"website,omitempty"`
	Linkedin     *string `json:"linkedin,omitempty"`
	Twitter      *string `json:"twitter,omitempty"`
	Github       *string `json:"github,omitempty"`
}

type UserDTO struct {
	ID          uuid.UUID       `json:"id"`
	UserName    string          `json:"user_name"`
	Email       string          `json:"email"`
	FirstName   string          `json:"first_name"`
	LastName    string          `json:"last_name"`
	FullName    string          `json:"full_name"`
	IsStaff     bool            `json:"is_staff"`
	IsSuperuser bool            `json:"is_superuser"`
	IsActive    bool            `json:"is_active"`
	DateJoined  time.Time       `json:"date_joined"`
	Profile     *UserProfileDTO `json:"profile,omitempty"`
}

// ============================
// Request DTO
// ============================

type UpdateProfileRequest struct {
	Phone       *string `json:"phone" validate:"omitempty,max=20"`
	Bio         *string `json:"bio" validate:"omitempty,max=2000"`
	Location    *string `json:"location" validate:"omitempty,max=100"`
	Institution *string `json:"institution" validate:"omitempty,max=200"`
	Website     *string `json:"website" validate:"omitempty,url"`
	Linkedin    *string `json:"linkedin" validate:"omitempty,url"`
	Twitter     *string `json:"twitter" validate:"omitempty,url"`
	Github      *string `json:"github" validate:"omitempty,url"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=member admin chef_d_equipe"`
}

// ============================
// Converter
// ============================

func ToUserProfileDTO(p model.UserProfileModel) UserProfileDTO {
	return UserProfileDTO{
		Role:         p.Role,
		IsTeamLead:   p.IsTeamLead,
		IsAdmin:      p.IsAdmin(),
		IsChefEquipe: p.IsChefDEquipe(),
		Phone:        p.Phone,
		Bio:          p.Bio,
		PhotoURL:     p.PhotoURL,
		Location:     p.Location,
		Institution:  p.Institution,
		Website:      p.Website,
		Linkedin:     p.Linkedin,
		Twitter:      p.Twitter,
		Github:       p.Github,
	}
}

func ToUserDTO(u model.UserModel, p *model.UserProfileModel) UserDTO {
	out := UserDTO{
		ID:          u.ID,
		UserName:    u.UserName,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
		DateJoined:  u.CreatedAt,
	}
	if p != nil {
		dto := ToUserProfileDTO(*p)
		out.Profile = &dto
	}
	return out
}
