package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"laboissim_backend/internals/constants"
)

// UserProfileModel holds the lab-facing profile, one row per user. The
// role column drives every authorization decision for non-superusers.
type UserProfileModel struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_users_profile_user_id" json:"user_id"`

	Role       string `gorm:"type:varchar(20);not null;default:'member';check:chk_users_profile_role,role IN ('member','admin','chef_d_equipe')" json:"role"`
	IsTeamLead bool   `gorm:"not null;default:false" json:"is_team_lead"`

	Phone       *string `gorm:"size:20" json:"phone,omitempty"`
	Bio         *string `gorm:"type:text" json:"bio,omitempty"`
	PhotoURL    *string `gorm:"size:255" json:"profile_image,omitempty"`
	Location    *string `gorm:"size:100" json:"location,omitempty"`
	Institution *string `gorm:"size:200" json:"institution,omitempty"`
	Website     *string `gorm:"size:255" json:"website,omitempty"`
	Linkedin    *string `gorm:"size:255" json:"linkedin,omitempty"`
	Twitter     *string `gorm:"size:255" json:"twitter,omitempty"`
	Github      *string `gorm:"size:255" json:"github,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserProfileModel) TableName() string { return "users_profile" }

func (p *UserProfileModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Role == "" {
		p.Role = constants.RoleMember
	}
	return nil
}

// Derived booleans exposed at the serialization boundary.
func (p *UserProfileModel) IsAdmin() bool       { return p.Role == constants.RoleAdmin }
func (p *UserProfileModel) IsChefDEquipe() bool { return p.Role == constants.RoleChefDEquipe }
