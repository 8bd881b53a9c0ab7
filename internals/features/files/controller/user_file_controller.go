package controller

import (
	"context"
	"errors"
	"io"
	"log"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"laboissim_backend/internals/features/files/dto"
	"laboissim_backend/internals/features/files/model"
	userModel "laboissim_backend/internals/features/users/user/model"
	helper "laboissim_backend/internals/helpers"
	authmw "laboissim_backend/internals/middlewares/auth"
)

// BlobStorage is what this controller needs from the object store.
type BlobStorage interface {
	Put(ctx context.Context, dir, filename, contentType string, r io.Reader) (publicURL string, err error)
	DeleteByPublicURL(ctx context.Context, publicURL string) error
}

type UserFileController struct {
	DB   *gorm.DB
	Blob BlobStorage
}

func NewUserFileController(db *gorm.DB, blob BlobStorage) *UserFileController {
	return &UserFileController{DB: db, Blob: blob}
}

func (fc *UserFileController) uploaderNames(ids []uuid.UUID) map[uuid.UUID]string {
	out := map[uuid.UUID]string{}
	if len(ids) == 0 {
		return out
	}
	var users []userModel.UserModel
	if err := fc.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return out
	}
	for _, u := range users {
		out[u.ID] = u.FullName()
	}
	return out
}

// GET /api/u/files
func (fc *UserFileController) List(c *fiber.Ctx) error {
	var rows []model.UserFileModel
	if err := fc.DB.Order("uploaded_at DESC").Find(&rows).Error; err != nil {
		return helper.FromAppError(c, err)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.UploadedBy)
	}
	names := fc.uploaderNames(ids)

	out := make([]dto.UserFileDTO, 0, len(rows))
	for _, m := range rows {
		out = append(out, dto.ToUserFileDTO(m, names[m.UploadedBy]))
	}
	return helper.Success(c, "OK", out)
}

// POST /api/u/files  (multipart, field "file")
func (fc *UserFileController) Upload(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "No file provided")
	}

	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		name = fileHeader.Filename
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(fileHeader.Filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	src, err := fileHeader.Open()
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Cannot read uploaded file")
	}
	defer src.Close()

	url, err := fc.Blob.Put(c.Context(), "user_files/"+userID.String(), fileHeader.Filename, contentType, src)
	if err != nil {
		log.Printf("[ERROR] user file upload: %v", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Upload failed")
	}

	m := model.UserFileModel{
		FileURL:    url,
		Name:       name,
		FileType:   contentType,
		Size:       fileHeader.Size,
		UploadedBy: userID,
	}
	if err := fc.DB.Create(&m).Error; err != nil {
		if delErr := fc.Blob.DeleteByPublicURL(c.Context(), url); delErr != nil {
			log.Printf("[WARN] orphan blob %s: %v", url, delErr)
		}
		return helper.FromAppError(c, err)
	}

	names := fc.uploaderNames([]uuid.UUID{userID})
	return helper.SuccessWithCode(c, fiber.StatusCreated, "File uploaded", dto.ToUserFileDTO(m, names[userID]))
}

// DELETE /api/u/files/:id
func (fc *UserFileController) Delete(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid file id")
	}

	var m model.UserFileModel
	if err := fc.DB.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "File not found")
		}
		return helper.FromAppError(c, err)
	}

	actor := authmw.ActorFromLocals(c)
	if m.UploadedBy != userID && !actor.IsAdmin() {
		return helper.Error(c, fiber.StatusForbidden, "You can only delete your own files")
	}

	if err := fc.DB.Delete(&model.UserFileModel{}, "id = ?", id).Error; err != nil {
		return helper.FromAppError(c, err)
	}
	if err := fc.Blob.DeleteByPublicURL(c.Context(), m.FileURL); err != nil {
		log.Printf("[WARN] blob delete %s: %v", m.FileURL, err)
	}
	return helper.Success(c, "File deleted", nil)
}
