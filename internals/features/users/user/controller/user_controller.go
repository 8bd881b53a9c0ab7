package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	authService "laboissim_backend/internals/features/users/auth/service"
	"laboissim_backend/internals/features/users/user/dto"
	"laboissim_backend/internals/features/users/user/model"
	"laboissim_backend/internals/features/users/user/service"
	helper "laboissim_backend/internals/helpers"
	authmw "laboissim_backend/internals/middlewares/auth"
)

type UserController struct {
	DB       *gorm.DB
	Profiles *service.ProfileService
	Validate *validator.Validate
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{
		DB:       db,
		Profiles: service.NewProfileService(db),
		Validate: validator.New(),
	}
}

// GET /api/public/team-members
func (uc *UserController) TeamMembers(c *fiber.Ctx) error {
	users, profiles, err := uc.Profiles.TeamMembers(c.Context())
	if err != nil {
		return helper.FromAppError(c, err)
	}

	out := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		var p *model.UserProfileModel
		if prof, ok := profiles[u.ID]; ok {
			p = &prof
		}
		out = append(out, dto.ToUserDTO(u, p))
	}
	return helper.Success(c, "OK", out)
}

// GET /api/a/users
func (uc *UserController) List(c *fiber.Ctx) error {
	var users []model.UserModel
	if err := uc.DB.Order("created_at ASC").Find(&users).Error; err != nil {
		return helper.FromAppError(c, err)
	}

	out := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		p, err := uc.Profiles.GetOrCreateProfile(c.Context(), u.ID)
		if err != nil {
			return helper.FromAppError(c, err)
		}
		out = append(out, dto.ToUserDTO(u, p))
	}
	return helper.Success(c, "OK", out)
}

// PUT /api/a/users/:id/role
func (uc *UserController) UpdateRole(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid user id")
	}

	var req dto.UpdateUserRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := uc.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	actor := authmw.ActorFromLocals(c)
	user, profile, err := uc.Profiles.UpdateUserRole(c.Context(), actor, userID, req.Role)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Role updated", dto.ToUserDTO(*user, profile))
}

// PUT /api/a/users/:id/active
func (uc *UserController) SetActive(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid user id")
	}

	var req struct {
		IsActive *bool `json:"is_active" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := uc.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	var user model.UserModel
	if err := uc.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "User not found")
		}
		return helper.FromAppError(c, err)
	}

	if err := uc.DB.Model(&user).Update("is_active", *req.IsActive).Error; err != nil {
		return helper.FromAppError(c, err)
	}
	user.IsActive = *req.IsActive

	// a deactivated account must not keep usable refresh tokens
	if !user.IsActive {
		if err := authService.RevokeAllForUser(uc.DB, user.ID); err != nil {
			return helper.FromAppError(c, err)
		}
	}

	p, err := uc.Profiles.GetOrCreateProfile(c.Context(), user.ID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "User updated", dto.ToUserDTO(user, p))
}
