package controller

import (
	"context"
	"io"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"laboissim_backend/internals/features/users/user/dto"
	"laboissim_backend/internals/features/users/user/service"
	helper "laboissim_backend/internals/helpers"
)

// PhotoStorage stores converted profile photos.
type PhotoStorage interface {
	PutAsWebP(ctx context.Context, dir, filename string, r io.Reader) (publicURL string, err error)
	DeleteByPublicURL(ctx context.Context, publicURL string) error
}

type ProfileController struct {
	DB       *gorm.DB
	Profiles *service.ProfileService
	Photos   PhotoStorage
	Validate *validator.Validate
}

func NewProfileController(db *gorm.DB, photos PhotoStorage) *ProfileController {
	return &ProfileController{
		DB:       db,
		Profiles: service.NewProfileService(db),
		Photos:   photos,
		Validate: validator.New(),
	}
}

// GET /api/u/profile
func (pc *ProfileController) Get(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	p, err := pc.Profiles.GetOrCreateProfile(c.Context(), userID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "OK", dto.ToUserProfileDTO(*p))
}

// PUT /api/u/profile
func (pc *ProfileController) Update(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := pc.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	changes := map[string]interface{}{}
	if req.Phone != nil {
		changes["phone"] = req.Phone
	}
	if req.Bio != nil {
		changes["bio"] = req.Bio
	}
	if req.Location != nil {
		changes["location"] = req.Location
	}
	if req.Institution != nil {
		changes["institution"] = req.Institution
	}
	if req.Website != nil {
		changes["website"] = req.Website
	}
	if req.Linkedin != nil {
		changes["linkedin"] = req.Linkedin
	}
	if req.Twitter != nil {
		changes["twitter"] = req.Twitter
	}
	if req.Github != nil {
		changes["github"] = req.Github
	}

	p, err := pc.Profiles.UpdateProfile(c.Context(), userID, changes)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Profile updated", dto.ToUserProfileDTO(*p))
}

// POST /api/u/profile/photo  (multipart, field "photo")
func (pc *ProfileController) UploadPhoto(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "No photo provided")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Cannot read uploaded photo")
	}
	defer src.Close()

	url, err := pc.Photos.PutAsWebP(c.Context(), "profile_images/"+userID.String(), fileHeader.Filename, src)
	if err != nil {
		return helper.Error(c, fiber.StatusUnsupportedMediaType, "Unsupported image format (use jpg/png/webp)")
	}

	// drop the previous photo after a successful swap
	old, _ := pc.Profiles.GetOrCreateProfile(c.Context(), userID)

	p, err := pc.Profiles.UpdateProfile(c.Context(), userID, map[string]interface{}{"photo_url": url})
	if err != nil {
		return helper.FromAppError(c, err)
	}

	if old != nil && old.PhotoURL != nil && *old.PhotoURL != "" && *old.PhotoURL != url {
		if err := pc.Photos.DeleteByPublicURL(c.Context(), *old.PhotoURL); err != nil {
			log.Printf("[WARN] old profile photo %s: %v", *old.PhotoURL, err)
		}
	}

	return helper.Success(c, "Photo updated", dto.ToUserProfileDTO(*p))
}
