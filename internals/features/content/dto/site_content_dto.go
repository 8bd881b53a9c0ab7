package dto

import (
	"encoding/json"

	"gorm.io/datatypes"

	"laboissim_backend/internals/features/content/model"
)

type SiteContentDTO struct {
	ContactAddress string `json:"contact_address"`
	ContactPhone   string `json:"contact_phone"`
	ContactEmail   string `json:"contact_email"`
	ContactHours   string `json:"contact_hours"`

	FooterResearchDomains  []string `json:"footer_research_domains"`
	FooterTeamIntroduction string   `json:"footer_team_introduction"`
	FooterTeamName         string   `json:"footer_team_name"`
	FooterCopyright        string   `json:"footer_copyright"`
}

type UpdateSiteContentRequest struct {
	ContactAddress *string `json:"contact_address" validate:"omitempty,max=255"`
	ContactPhone   *string `json:"contact_phone" validate:"omitempty,max=50"`
	ContactEmail   *string `json:"contact_email" validate:"omitempty,email"`
	ContactHours   *string `json:"contact_hours" validate:"omitempty,max=100"`

	FooterResearchDomains  *[]string `json:"footer_research_domains" validate:"omitempty,dive,max=100"`
	FooterTeamIntroduction *string   `json:"footer_team_introduction"`
	FooterTeamName         *string   `json:"footer_team_name" validate:"omitempty,max=255"`
	FooterCopyright        *string   `json:"footer_copyright" validate:"omitempty,max=255"`
}

func ToSiteContentDTO(m model.SiteContentModel) SiteContentDTO {
	domains := []string{}
	if len(m.FooterResearchDomains) > 0 {
		_ = json.Unmarshal(m.FooterResearchDomains, &domains)
	}
	return SiteContentDTO{
		ContactAddress:         m.ContactAddress,
		ContactPhone:           m.ContactPhone,
		ContactEmail:           m.ContactEmail,
		ContactHours:           m.ContactHours,
		FooterResearchDomains:  domains,
		FooterTeamIntroduction: m.FooterTeamIntroduction,
		FooterTeamName:         m.FooterTeamName,
		FooterCopyright:        m.FooterCopyright,
	}
}

// DomainsJSON marshals the research domains for storage.
func DomainsJSON(domains []string) (datatypes.JSON, error) {
	if domains == nil {
		domains = []string{}
	}
	raw, err := json.Marshal(domains)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
