package controller

import (
	"mime"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"laboissim_backend/internals/features/projects/document/dto"
	"laboissim_backend/internals/features/projects/document/service"
	helper "laboissim_backend/internals/helpers"
	authmw "laboissim_backend/internals/middlewares/auth"
)

type DocumentController struct {
	DB       *gorm.DB
	Service  *service.DocumentService
	Validate *validator.Validate
}

func NewDocumentController(db *gorm.DB, blob service.BlobStorage) *DocumentController {
	return &DocumentController{
		DB:       db,
		Service:  service.NewDocumentService(db, blob),
		Validate: validator.New(),
	}
}

// collectFiles gathers file headers from the usual multipart field
// names, "files[]" first.
func collectFiles(form *multipart.Form) []*multipart.FileHeader {
	if form == nil || form.File == nil {
		return nil
	}
	var out []*multipart.FileHeader
	seen := map[string]bool{}
	for _, key := range []string{"files[]", "files", "file"} {
		if fhs, ok := form.File[key]; ok {
			for _, fh := range fhs {
				if fh != nil && fh.Filename != "" {
					out = append(out, fh)
				}
			}
			seen[key] = true
		}
	}
	for key, fhs := range form.File {
		if seen[key] {
			continue
		}
		for _, fh := range fhs {
			if fh != nil && fh.Filename != "" {
				out = append(out, fh)
			}
		}
	}
	return out
}

// GET /api/u/projects/:id/documents
func (dc *DocumentController) ListForProject(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid project id")
	}
	out, err := dc.Service.ListForProject(c.Context(), authmw.ActorFromLocals(c), projectID)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "OK", out)
}

// POST /api/u/projects/:id/documents  (multipart, one or many files)
//
// Optional form fields applied to the batch: description, is_public.
// A per-file description can be passed as description_<index>.
func (dc *DocumentController) Upload(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid project id")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Expected multipart form data")
	}
	headers := collectFiles(form)
	if len(headers) == 0 {
		return helper.Error(c, fiber.StatusBadRequest, "No files provided")
	}

	description := strings.TrimSpace(c.FormValue("description"))
	var isPublic *bool
	if v := strings.TrimSpace(c.FormValue("is_public")); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			isPublic = &parsed
		}
	}

	items := make([]service.UploadItem, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for i, fh := range headers {
		src, err := fh.Open()
		if err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "Cannot read uploaded file "+fh.Filename)
		}
		opened = append(opened, src)

		desc := description
		if v := strings.TrimSpace(c.FormValue("description_" + strconv.Itoa(i))); v != "" {
			desc = v
		}
		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = mime.TypeByExtension(filepath.Ext(fh.Filename))
		}

		items = append(items, service.UploadItem{
			Name:        fh.Filename,
			Description: desc,
			IsPublic:    isPublic,
			ContentType: contentType,
			Size:        fh.Size,
			Reader:      src,
		})
	}

	result, err := dc.Service.BulkUpload(c.Context(), authmw.ActorFromLocals(c), projectID, items)
	if err != nil {
		return helper.FromAppError(c, err)
	}

	code := fiber.StatusCreated
	if result.Uploaded == 0 {
		code = fiber.StatusBadRequest
	}
	return helper.SuccessWithCode(c, code, "Upload processed", result)
}

// PUT /api/u/documents/:id
func (dc *DocumentController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid document id")
	}

	var req dto.UpdateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := dc.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	out, err := dc.Service.Update(c.Context(), authmw.ActorFromLocals(c), id, req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Document updated", out)
}

// DELETE /api/u/documents/:id
func (dc *DocumentController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid document id")
	}
	if err := dc.Service.Delete(c.Context(), authmw.ActorFromLocals(c), id); err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Document deleted", nil)
}
