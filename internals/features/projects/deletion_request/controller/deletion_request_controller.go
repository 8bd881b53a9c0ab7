package controller

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"laboissim_backend/internals/features/projects/deletion_request/dto"
	"laboissim_backend/internals/features/projects/deletion_request/service"
	helper "laboissim_backend/internals/helpers"
	authmw "laboissim_backend/internals/middlewares/auth"
	"laboissim_backend/internals/policy"
)

type DeletionRequestController struct {
	DB       *gorm.DB
	Service  *service.DeletionRequestService
	Validate *validator.Validate
}

func NewDeletionRequestController(db *gorm.DB) *DeletionRequestController {
	return &DeletionRequestController{
		DB:       db,
		Service:  service.NewDeletionRequestService(db),
		Validate: validator.New(),
	}
}

// POST /api/u/projects/:id/deletion-request
func (rc *DeletionRequestController) Create(c *fiber.Ctx) error {
	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid project id")
	}

	var req dto.CreateDeletionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	// The URL names the project; a project_id in the body is ignored.
	req.ProjectID = projectID
	if err := rc.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	out, err := rc.Service.Create(c.Context(), authmw.ActorFromLocals(c), req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Deletion request submitted", out)
}

// GET /api/a/deletion-requests
func (rc *DeletionRequestController) List(c *fiber.Ctx) error {
	out, err := rc.Service.List(c.Context(), authmw.ActorFromLocals(c))
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, "OK", out)
}

// POST /api/a/deletion-requests/:id/approve
func (rc *DeletionRequestController) Approve(c *fiber.Ctx) error {
	return rc.review(c, rc.Service.Approve, "Deletion request approved")
}

// POST /api/a/deletion-requests/:id/reject
func (rc *DeletionRequestController) Reject(c *fiber.Ctx) error {
	return rc.review(c, rc.Service.Reject, "Deletion request rejected")
}

type reviewFn func(ctx context.Context, actor policy.Actor, requestID uuid.UUID, in dto.ReviewDeletionRequest) (*dto.DeletionRequestDTO, error)

func (rc *DeletionRequestController) review(c *fiber.Ctx, fn reviewFn, message string) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Invalid request id")
	}

	var req dto.ReviewDeletionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.Error(c, fiber.StatusBadRequest, "Invalid request body")
		}
		if err := rc.Validate.Struct(&req); err != nil {
			return helper.ValidationError(c, err)
		}
	}

	out, err := fn(c.Context(), authmw.ActorFromLocals(c), id, req)
	if err != nil {
		return helper.FromAppError(c, err)
	}
	return helper.Success(c, message, out)
}
