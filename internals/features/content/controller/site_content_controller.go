package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"laboissim_backend/internals/features/content/dto"
	"laboissim_backend/internals/features/content/model"
	helper "laboissim_backend/internals/helpers"
	authmw "laboissim_backend/internals/middlewares/auth"
	"laboissim_backend/internals/policy"
)

const singletonID = 1

type SiteContentController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewSiteContentController(db *gorm.DB) *SiteContentController {
	return &SiteContentController{DB: db, Validate: validator.New()}
}

// load returns the singleton row, creating it on first access.
func (sc *SiteContentController) load() (*model.SiteContentModel, error) {
	var m model.SiteContentModel
	err := sc.DB.First(&m, "id = ?", singletonID).Error
	if err == nil {
		return &m, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	domains, _ := dto.DomainsJSON(nil)
	m = model.SiteContentModel{ID: singletonID, FooterResearchDomains: domains}
	if createErr := sc.DB.Create(&m).Error; createErr != nil {
		var again model.SiteContentModel
		if err := sc.DB.First(&again, "id = ?", singletonID).Error; err == nil {
			return &again, nil
		}
		return nil, createErr
	}
	return &m, nil
}

// GET /api/u/site-content
func (sc *SiteContentController) Get(c *fiber.Ctx) error {
	m, err := sc.load()
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "OK", dto.ToSiteContentDTO(*m))
}

// PUT /api/a/site-content
func (sc *SiteContentController) Update(c *fiber.Ctx) error {
	actor := authmw.ActorFromLocals(c)
	if !policy.CanEditSiteContent(actor) {
		return helper.Error(c, fiber.StatusForbidden, "Only staff may edit the site content")
	}

	var req dto.UpdateSiteContentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := sc.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	m, err := sc.load()
	if err != nil {
		return helper.FromAppError(c, err)
	}

	changes := map[string]interface{}{}
	if req.ContactAddress != nil {
		changes["contact_address"] = *req.ContactAddress
	}
	if req.ContactPhone != nil {
		changes["contact_phone"] = *req.ContactPhone
	}
	if req.ContactEmail != nil {
		changes["contact_email"] = *req.ContactEmail
	}
	if req.ContactHours != nil {
		changes["contact_hours"] = *req.ContactHours
	}
	if req.FooterResearchDomains != nil {
		domains, err := dto.DomainsJSON(*req.FooterResearchDomains)
		if err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "Invalid research domains")
		}
		changes["footer_research_domains"] = domains
	}
	if req.FooterTeamIntroduction != nil {
		changes["footer_team_introduction"] = *req.FooterTeamIntroduction
	}
	if req.FooterTeamName != nil {
		changes["footer_team_name"] = *req.FooterTeamName
	}
	if req.FooterCopyright != nil {
		changes["footer_copyright"] = *req.FooterCopyright
	}

	if len(changes) > 0 {
		if err := sc.DB.Model(&model.SiteContentModel{}).
			Where("id = ?", singletonID).Updates(changes).Error; err != nil {
			return helper.FromAppError(c, err)
		}
		if err := sc.DB.First(m, "id = ?", singletonID).Error; err != nil {
			return helper.FromAppError(c, err)
		}
	}
	return helper.Success(c, "Site content updated", dto.ToSiteContentDTO(*m))
}
