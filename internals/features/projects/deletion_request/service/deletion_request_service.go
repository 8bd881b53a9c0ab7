package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"laboissim_backend/internals/features/projects/deletion_request/dto"
	"laboissim_backend/internals/features/projects/deletion_request/model"
	projectModel "laboissim_backend/internals/features/projects/project/model"
	projectService "laboissim_backend/internals/features/projects/project/service"
	"laboissim_backend/internals/helpers/apperr"
	"laboissim_backend/internals/policy"
)

// DeletionRequestService drives the two-phase delete workflow:
// pending → approved (cascade-deletes the project) | rejected.
type DeletionRequestService struct {
	DB    *gorm.DB
	Audit policy.AuditSink
}

func NewDeletionRequestService(db *gorm.DB) *DeletionRequestService {
	return &DeletionRequestService{DB: db, Audit: policy.NopAudit{}}
}

func (s *DeletionRequestService) audit(ctx context.Context, actor policy.Actor, action string, resource uuid.UUID, allowed bool) {
	s.Audit.Decision(ctx, policy.Decision{ActorID: actor.ID, Action: action, Resource: resource.String(), Allowed: allowed})
}

// Create opens a pending request. The actor must hold the
// request-deletion capability and the project must have no pending
// request already.
func (s *DeletionRequestService) Create(ctx context.Context, actor policy.Actor, in dto.CreateDeletionRequest) (*dto.DeletionRequestDTO, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, apperr.Validation("a reason is required")
	}

	var project projectModel.ProjectModel
	if err := s.DB.WithContext(ctx).First(&project, "id = ?", in.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("project %s not found", in.ProjectID)
		}
		return nil, err
	}

	var members []uuid.UUID
	if err := s.DB.WithContext(ctx).
		Model(&projectModel.ProjectMemberModel{}).
		Where("project_id = ?", project.ID).
		Pluck("user_id", &members).Error; err != nil {
		return nil, err
	}
	ref := policy.ProjectRef{ID: project.ID, CreatedBy: project.CreatedBy, IsValidated: project.IsValidated, Members: members}

	allowed := policy.CanRequestDeletion(actor, ref)
	s.audit(ctx, actor, "deletion_request.create", project.ID, allowed)
	if !allowed {
		return nil, apperr.NotAuthorized("you may not request deletion of this project")
	}

	var pending int64
	if err := s.DB.WithContext(ctx).
		Model(&model.ProjectDeletionRequestModel{}).
		Where("project_id = ? AND status = ?", project.ID, model.StatusPending).
		Count(&pending).Error; err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, apperr.InvalidState("a deletion request for this project is already pending")
	}

	req := model.ProjectDeletionRequestModel{
		ProjectID:   project.ID,
		RequestedBy: actor.ID,
		Reason:      strings.TrimSpace(in.Reason),
	}
	if err := s.DB.WithContext(ctx).Create(&req).Error; err != nil {
		return nil, err
	}
	out := dto.ToDeletionRequestDTO(req, project.Title)
	return &out, nil
}

// List returns requests for admin review, newest first.
func (s *DeletionRequestService) List(ctx context.Context, actor policy.Actor) ([]dto.DeletionRequestDTO, error) {
	allowed := policy.CanReviewDeletion(actor)
	s.audit(ctx, actor, "deletion_request.list", uuid.Nil, allowed)
	if !allowed {
		return nil, apperr.NotAuthorized("only admins may review deletion requests")
	}

	var rows []model.ProjectDeletionRequestModel
	if err := s.DB.WithContext(ctx).Order("requested_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	titles := map[uuid.UUID]string{}
	if len(rows) > 0 {
		ids := make([]uuid.UUID, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.ProjectID)
		}
		var projects []projectModel.ProjectModel
		if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&projects).Error; err != nil {
			return nil, err
		}
		for _, p := range projects {
			titles[p.ID] = p.Title
		}
	}

	out := make([]dto.DeletionRequestDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ToDeletionRequestDTO(r, titles[r.ProjectID]))
	}
	return out, nil
}

// Approve stamps the reviewer and cascade-deletes the project as one
// atomic unit; the request row itself cascades away with the project,
// so the stamped snapshot is returned to the caller.
func (s *DeletionRequestService) Approve(ctx context.Context, actor policy.Actor, requestID uuid.UUID, in dto.ReviewDeletionRequest) (*dto.DeletionRequestDTO, error) {
	return s.review(ctx, actor, requestID, in, model.StatusApproved)
}

// Reject stamps the reviewer; the project stays intact and remains
// eligible for future requests.
func (s *DeletionRequestService) Reject(ctx context.Context, actor policy.Actor, requestID uuid.UUID, in dto.ReviewDeletionRequest) (*dto.DeletionRequestDTO, error) {
	return s.review(ctx, actor, requestID, in, model.StatusRejected)
}

func (s *DeletionRequestService) review(ctx context.Context, actor policy.Actor, requestID uuid.UUID, in dto.ReviewDeletionRequest, verdict string) (*dto.DeletionRequestDTO, error) {
	allowed := policy.CanReviewDeletion(actor)
	s.audit(ctx, actor, "deletion_request."+verdict, requestID, allowed)
	if !allowed {
		return nil, apperr.NotAuthorized("only admins may review deletion requests")
	}

	var (
		req   model.ProjectDeletionRequestModel
		title string
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&req, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("deletion request %s not found", requestID)
			}
			return err
		}
		if req.IsTerminal() {
			return apperr.InvalidState("deletion request is already %s", req.Status)
		}

		var project projectModel.ProjectModel
		if err := tx.First(&project, "id = ?", req.ProjectID).Error; err == nil {
			title = project.Title
		}

		now := time.Now().UTC()
		reviewer := actor.ID
		req.Status = verdict
		req.ReviewedAt = &now
		req.ReviewedBy = &reviewer
		req.AdminNotes = in.AdminNotes

		if err := tx.Model(&model.ProjectDeletionRequestModel{}).
			Where("id = ?", req.ID).
			Updates(map[string]interface{}{
				"status":      req.Status,
				"reviewed_at": req.ReviewedAt,
				"reviewed_by": req.ReviewedBy,
				"admin_notes": req.AdminNotes,
			}).Error; err != nil {
			return err
		}

		if verdict == model.StatusApproved {
			// all-or-nothing: a failed project delete rolls the stamp back
			return projectService.DeleteProjectCascade(tx, req.ProjectID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := dto.ToDeletionRequestDTO(req, title)
	return &out, nil
}
