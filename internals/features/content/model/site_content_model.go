package model

import (
	"time"

	"gorm.io/datatypes"
)

// SiteContentModel is a singleton row (id = 1) with the site-wide
// contact and footer settings.
type SiteContentModel struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ContactAddress string `gorm:"size:255;not null;default:''" json:"contact_address"`
	ContactPhone   string `gorm:"size:50;not null;default:''" json:"contact_phone"`
	ContactEmail   string `gorm:"size:254;not null;default:''" json:"contact_email"`
	ContactHours   string `gorm:"size:100;not null;default:''" json:"contact_hours"`

	FooterResearchDomains  datatypes.JSON `gorm:"type:jsonb" json:"footer_research_domains"`
	FooterTeamIntroduction string         `gorm:"type:text;not null;default:''" json:"footer_team_introduction"`
	FooterTeamName         string         `gorm:"size:255;not null;default:''" json:"footer_team_name"`
	FooterCopyright        string         `gorm:"size:255;not null;default:''" json:"footer_copyright"`

	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SiteContentModel) TableName() string {
	return "site_content"
}
