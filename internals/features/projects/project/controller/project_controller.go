package controller

import (
	"context"
	"io"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	documentModel "laboissim_backend/internals/features/projects/document/model"
	"laboissim_backend/internals/features/projects/project/dto"
	"laboissim_backend/internals/features/projects/project/model"
	"laboissim_backend/internals/features/projects/project/service"
	helper "laboissim_backend/internals/helpers"
	"laboissim_backend/internals/helpers/oss"
	authmw "laboissim_backend/internals/middlewares/auth"
)

// CoverStorage stores project cover images, converted to webp, and
// cleans up blobs when projects go away.
type CoverStorage interface {
	PutAsWebP(ctx context.Context, dir, filename string, r io.Reader) (publicURL string, err error)
	DeleteByPublicURL(ctx context.Context, publicURL string) error
	DeleteObjects(ctx context.Context, keys []string) error
}

type ProjectController struct {
	DB       *gorm.DB
	Service  *service.ProjectService
	Covers   CoverStorage
	Validate *validator.Validate
}

func NewProjectController(db *gorm.DB, covers CoverStorage) *ProjectController {
	return &ProjectController{
		DB:       db,
		Service:  service.NewProjectService(db),
		Covers:   covers,
		Validate: validator.New(),
	}
}

func (pc *ProjectController) describeAll(c *fiber.Ctx, rows []model.ProjectModel) ([]dto.ProjectDTO, error) {
	actor := authmw.ActorFromLocals(c)
	out := make([]dto.ProjectDTO, 0, len(rows))
	for i := range rows {
		d, err := pc.Service.Describe(c.Context(), actor, &rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// GET /api/public/projects (validated projects only)
func (pc *ProjectController) PublicList(c *fiber.Ctx) error {
	rows, err := pc.Service.PublicList(c.Context())
	if err != nil {
		return helper.FromAppError(c, err)
	}
	out, err := pc.describeAll(c, rows)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "OK", out)
}

// GET /api/u/projects
func (pc *ProjectController) List(c *fiber.Ctx) error {
	rows, err := pc.Service.List(c.Context())
	if err != nil {
		return helper.FromAppError(c, err)
	}
	out, err := pc.describeAll(c, rows)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "OK", out)
}

// GET /api/u/projects/:id
func (pc *ProjectController) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid project id")
	}
	m, err := pc.Service.Get(c.Context(), id)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	d, err := pc.Service.Describe(c.Context(), authmw.ActorFromLocals(c), m)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "OK", d)
}

// POST /api/u/projects
func (pc *ProjectController) Create(c *fiber.Ctx) error {
	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := pc.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	actor := authmw.ActorFromLocals(c)
	m, err := pc.Service.Create(c.Context(), actor, req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	d, err := pc.Service.Describe(c.Context(), actor, m)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Project created", d)
}

// PUT /api/u/projects/:id
func (pc *ProjectController) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid project id")
	}

	var req dto.UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := pc.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	actor := authmw.ActorFromLocals(c)
	m, err := pc.Service.Update(c.Context(), actor, id, req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	d, err := pc.Service.Describe(c.Context(), actor, m)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Project updated", d)
}

// DELETE /api/u/projects/:id
func (pc *ProjectController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid project id")
	}

	// snapshot the blob URLs before the rows cascade away
	var urls []string
	pc.DB.Model(&documentModel.ProjectDocumentModel{}).
		Where("project_id = ?", id).
		Pluck("file_url", &urls)
	if m, gerr := pc.Service.Get(c.Context(), id); gerr == nil && m.ImageURL != nil && *m.ImageURL != "" {
		urls = append(urls, *m.ImageURL)
	}

	if err := pc.Service.Delete(c.Context(), authmw.ActorFromLocals(c), id); err != nil {
		return helper.FromAppError(c, err)
	}

	// best effort: the rows are gone, orphaned blobs only cost storage
	keys := make([]string, 0, len(urls))
	for _, u := range urls {
		if k, kerr := oss.ExtractKeyFromPublicURL(u); kerr == nil {
			keys = append(keys, k)
		}
	}
	if len(keys) > 0 {
		if derr := pc.Covers.DeleteObjects(c.Context(), keys); derr != nil {
			log.Printf("[WARN] project %s blob cleanup: %v", id, derr)
		}
	}

	return helper.Success(c, "Project deleted", nil)
}

// POST /api/u/projects/:id/image  (multipart, field "image")
func (pc *ProjectController) UploadImage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid project id")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "No image provided")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Cannot read uploaded image")
	}
	defer src.Close()

	url, err := pc.Covers.PutAsWebP(c.Context(), "project_images/"+id.String(), fileHeader.Filename, src)
	if err != nil {
		return helper.Error(c, fiber.StatusUnsupportedMediaType, "Unsupported image format (use jpg/png/webp)")
	}

	actor := authmw.ActorFromLocals(c)
	m, err := pc.Service.SetImageURL(c.Context(), actor, id, url)
	if err != nil {
		// the capability check failed after the upload; do not leave the blob behind
		if derr := pc.Covers.DeleteByPublicURL(c.Context(), url); derr != nil {
			log.Printf("[WARN] cover blob cleanup after rejected upload: %v", derr)
		}
		return helper.FromAppError(c, err)
	}
	d, err := pc.Service.Describe(c.Context(), actor, m)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Project image updated", d)
}

// POST /api/a/projects/:id/validate
func (pc *ProjectController) ValidateProject(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid project id")
	}
	actor := authmw.ActorFromLocals(c)
	m, err := pc.Service.Validate(c.Context(), actor, id)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	d, err := pc.Service.Describe(c.Context(), actor, m)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Project validated", d)
}

// POST /api/u/projects/:id/members
func (pc *ProjectController) AddMember(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid project id")
	}

	var req dto.MemberRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := pc.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	if err := pc.Service.AddMember(c.Context(), authmw.ActorFromLocals(c), id, req.UserID); err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Member added", nil)
}

// DELETE /api/u/projects/:id/members/:userId
func (pc *ProjectController) RemoveMember(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid project id")
	}
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid user id")
	}
	if err := pc.Service.RemoveMember(c.Context(), authmw.ActorFromLocals(c), id, userID); err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "Member removed", nil)
}
