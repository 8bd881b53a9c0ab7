package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel is the platform identity: login credentials plus the
// staff/superuser flags the authorization engine reads.
type UserModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserName    string    `gorm:"size:50;uniqueIndex;not null" json:"user_name" validate:"required,min=3,max=50"`
	Email       string    `gorm:"size:255;uniqueIndex;not null" json:"email" validate:"required,email"`
	Password    string    `gorm:"not null" json:"-"`
	FirstName   string    `gorm:"size:100" json:"first_name"`
	LastName    string    `gorm:"size:100" json:"last_name"`
	GoogleID    *string   `gorm:"size:255;uniqueIndex" json:"google_id,omitempty"`
	IsStaff     bool      `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser bool      `gorm:"not null;default:false" json:"is_superuser"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"date_joined"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserModel) TableName() string {
	return "users"
}

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName falls back to the username when both name parts are empty.
func (u *UserModel) FullName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.UserName
	}
	return full
}
