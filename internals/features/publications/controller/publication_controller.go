package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"laboissim_backend/internals/features/publications/dto"
	"laboissim_backend/internals/features/publications/model"
	userModel "laboissim_backend/internals/features/users/user/model"
	helper "laboissim_backend/internals/helpers"
	authmw "laboissim_backend/internals/middlewares/auth"
)

type PublicationController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewPublicationController(db *gorm.DB) *PublicationController {
	return &PublicationController{DB: db, Validate: validator.New()}
}

// posterNames resolves user_id → display name for a batch of rows.
func (pc *PublicationController) posterNames(ids []uuid.UUID) map[uuid.UUID]string {
	out := map[uuid.UUID]string{}
	if len(ids) == 0 {
		return out
	}
	var users []userModel.UserModel
	if err := pc.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return out
	}
	for _, u := range users {
		out[u.ID] = u.FullName()
	}
	return out
}

// GET /api/public/publications
func (pc *PublicationController) List(c *fiber.Ctx) error {
	var rows []model.PublicationModel
	if err := pc.DB.Order("posted_at DESC").Find(&rows).Error; err != nil {
		return helper.FromAppError(c, err)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.PostedBy)
	}
	names := pc.posterNames(ids)

	out := make([]dto.PublicationDTO, 0, len(rows))
	for _, m := range rows {
		out = append(out, dto.ToPublicationDTO(m, names[m.PostedBy]))
	}
	return helper.Success(c, "OK", out)
}

// GET /api/public/publications/:id
func (pc *PublicationController) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid publication id")
	}
	var m model.PublicationModel
	if err := pc.DB.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Publication not found")
		}
		return helper.FromAppError(c, err)
	}
	names := pc.posterNames([]uuid.UUID{m.PostedBy})
	return helper.Success(c, "OK", dto.ToPublicationDTO(m, names[m.PostedBy]))
}

// POST /api/u/publications
func (pc *PublicationController) Create(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}

	var req dto.CreatePublicationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := pc.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	m := model.PublicationModel{
		Title:    req.Title,
		Abstract: req.Abstract,
		Tags:     pq.StringArray(req.Tags),
		PostedBy: userID,
	}
	if err := pc.DB.Create(&m).Error; err != nil {
		return helper.FromAppError(c, err)
	}
	names := pc.posterNames([]uuid.UUID{userID})
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Publication created", dto.ToPublicationDTO(m, names[userID]))
}

// PUT /api/u/publications/:id
func (pc *PublicationController) Update(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid publication id")
	}

	var m model.PublicationModel
	if err := pc.DB.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Publication not found")
		}
		return helper.FromAppError(c, err)
	}
	if m.PostedBy != userID {
		return helper.Error(c, fiber.StatusForbidden, "You can only edit your own publications")
	}

	var req dto.UpdatePublicationRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := pc.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	changes := map[string]interface{}{}
	if req.Title != nil {
		changes["title"] = *req.Title
	}
	if req.Abstract != nil {
		changes["abstract"] = *req.Abstract
	}
	if req.Tags != nil {
		changes["tags"] = pq.StringArray(*req.Tags)
	}
	if len(changes) > 0 {
		if err := pc.DB.Model(&m).Updates(changes).Error; err != nil {
			return helper.FromAppError(c, err)
		}
		if err := pc.DB.First(&m, "id = ?", id).Error; err != nil {
			return helper.FromAppError(c, err)
		}
	}
	names := pc.posterNames([]uuid.UUID{m.PostedBy})
	return helper.Success(c, "Publication updated", dto.ToPublicationDTO(m, names[m.PostedBy]))
}

// DELETE /api/u/publications/:id
func (pc *PublicationController) Delete(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid publication id")
	}

	var m model.PublicationModel
	if err := pc.DB.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Publication not found")
		}
		return helper.FromAppError(c, err)
	}

	actor := authmw.ActorFromLocals(c)
	if m.PostedBy != userID && !actor.IsAdmin() {
		return helper.Error(c, fiber.StatusForbidden, "You can only delete your own publications")
	}

	if err := pc.DB.Delete(&model.PublicationModel{}, "id = ?", id).Error; err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Publication deleted", nil)
}
