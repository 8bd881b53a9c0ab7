package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"laboissim_backend/internals/features/users/auth/service"
	userDTO "laboissim_backend/internals/features/users/user/dto"
	userModel "laboissim_backend/internals/features/users/user/model"
	userService "laboissim_backend/internals/features/users/user/service"
	helper "laboissim_backend/internals/helpers"
)

type AuthController struct {
	DB       *gorm.DB
	Profiles *userService.ProfileService
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db, Profiles: userService.NewProfileService(db)}
}

// POST /api/auth/register
func (ac *AuthController) Register(c *fiber.Ctx) error {
	return service.Register(ac.DB, c)
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	return service.Login(ac.DB, c)
}

// POST /api/auth/login-google
func (ac *AuthController) LoginGoogle(c *fiber.Ctx) error {
	return service.LoginGoogle(ac.DB, c)
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	return service.Logout(ac.DB, c)
}

// POST /api/auth/change-password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	return service.ChangePassword(ac.DB, c)
}

// POST /api/auth/refresh-token
func (ac *AuthController) RefreshToken(c *fiber.Ctx) error {
	return service.RefreshToken(ac.DB, c)
}

// GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}

	var user userModel.UserModel
	if err := ac.DB.First(&user, "id = ?", userID).Error; err != nil {
		return helper.Error(c, fiber.StatusNotFound, "User not found")
	}

	profile, err := ac.Profiles.GetOrCreateProfile(c.Context(), user.ID)
	if err != nil {
		return helper.FromAppError(c, err)
	}

	return helper.Success(c, "OK", userDTO.ToUserDTO(user, profile))
}
