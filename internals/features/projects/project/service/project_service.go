package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	deletionModel "laboissim_backend/internals/features/projects/deletion_request/model"
	documentModel "laboissim_backend/internals/features/projects/document/model"
	"laboissim_backend/internals/features/projects/project/dto"
	"laboissim_backend/internals/features/projects/project/model"
	"laboissim_backend/internals/helpers/apperr"
	"laboissim_backend/internals/policy"
)

// ProjectService owns the project aggregate: capability-gated mutation,
// the membership set and the validation gate.
type ProjectService struct {
	DB    *gorm.DB
	Audit policy.AuditSink
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{DB: db, Audit: policy.NopAudit{}}
}

func (s *ProjectService) audit(ctx context.Context, actor policy.Actor, action string, resource uuid.UUID, allowed bool) {
	s.Audit.Decision(ctx, policy.Decision{ActorID: actor.ID, Action: action, Resource: resource.String(), Allowed: allowed})
}

func (s *ProjectService) Get(ctx context.Context, id uuid.UUID) (*model.ProjectModel, error) {
	var m model.ProjectModel
	if err := s.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("project %s not found", id)
		}
		return nil, err
	}
	return &m, nil
}

// Ref loads the policy snapshot for a project (creator, validation
// flag, member ids).
func (s *ProjectService) Ref(ctx context.Context, m *model.ProjectModel) (policy.ProjectRef, error) {
	members, err := s.MemberIDs(ctx, m.ID)
	if err != nil {
		return policy.ProjectRef{}, err
	}
	return policy.ProjectRef{
		ID:          m.ID,
		CreatedBy:   m.CreatedBy,
		IsValidated: m.IsValidated,
		Members:     members,
	}, nil
}

func (s *ProjectService) MemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := s.DB.WithContext(ctx).
		Model(&model.ProjectMemberModel{}).
		Where("project_id = ?", projectID).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Describe builds the actor-aware response DTO, including the pending
// deletion request flag.
func (s *ProjectService) Describe(ctx context.Context, actor policy.Actor, m *model.ProjectModel) (dto.ProjectDTO, error) {
	members, err := s.MemberIDs(ctx, m.ID)
	if err != nil {
		return dto.ProjectDTO{}, err
	}
	pending, err := s.HasPendingDeletion(ctx, m.ID)
	if err != nil {
		return dto.ProjectDTO{}, err
	}
	return dto.ToProjectDTO(*m, actor, members, pending), nil
}

func (s *ProjectService) HasPendingDeletion(ctx context.Context, projectID uuid.UUID) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&deletionModel.ProjectDeletionRequestModel{}).
		Where("project_id = ? AND status = ?", projectID, deletionModel.StatusPending).
		Count(&count).Error
	return count > 0, err
}

// Create makes the caller the immutable owner.
func (s *ProjectService) Create(ctx context.Context, actor policy.Actor, in dto.CreateProjectRequest) (*model.ProjectModel, error) {
	if !actor.Authenticated {
		return nil, apperr.NotAuthorized("login required to create a project")
	}
	m := model.ProjectModel{
		Title:          in.Title,
		Description:    in.Description,
		Objectives:     in.Objectives,
		Methodology:    in.Methodology,
		Results:        in.Results,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		FundingCompany: in.FundingCompany,
		FundingAmount:  in.FundingAmount,
		CreatedBy:      actor.ID,
	}
	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns every project for authenticated callers.
func (s *ProjectService) List(ctx context.Context) ([]model.ProjectModel, error) {
	var out []model.ProjectModel
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// PublicList is the unauthenticated view: validated projects only.
func (s *ProjectService) PublicList(ctx context.Context) ([]model.ProjectModel, error) {
	var out []model.ProjectModel
	if err := s.DB.WithContext(ctx).
		Where("is_validated = ?", true).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ProjectService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, in dto.UpdateProjectRequest) (*model.ProjectModel, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ref, err := s.Ref(ctx, m)
	if err != nil {
		return nil, err
	}

	allowed := policy.CanEditProject(actor, ref)
	s.audit(ctx, actor, "project.edit", id, allowed)
	if !allowed {
		return nil, apperr.NotAuthorized("you may not edit this project")
	}

	changes := map[string]interface{}{}
	if in.Title != nil {
		changes["title"] = *in.Title
	}
	if in.Description != nil {
		changes["description"] = *in.Description
	}
	if in.Objectives != nil {
		changes["objectives"] = *in.Objectives
	}
	if in.Methodology != nil {
		changes["methodology"] = *in.Methodology
	}
	if in.Results != nil {
		changes["results"] = *in.Results
	}
	if in.StartDate != nil {
		changes["start_date"] = *in.StartDate
	}
	if in.EndDate != nil {
		changes["end_date"] = *in.EndDate
	}
	if in.FundingCompany != nil {
		changes["funding_company"] = *in.FundingCompany
	}
	if in.FundingAmount != nil {
		changes["funding_amount"] = *in.FundingAmount
	}

	if len(changes) > 0 {
		if err := s.DB.WithContext(ctx).Model(&model.ProjectModel{}).
			Where("id = ?", id).Updates(changes).Error; err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

func (s *ProjectService) SetImageURL(ctx context.Context, actor policy.Actor, id uuid.UUID, url string) (*model.ProjectModel, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ref, err := s.Ref(ctx, m)
	if err != nil {
		return nil, err
	}
	allowed := policy.CanEditProject(actor, ref)
	s.audit(ctx, actor, "project.edit", id, allowed)
	if !allowed {
		return nil, apperr.NotAuthorized("you may not edit this project")
	}
	if err := s.DB.WithContext(ctx).Model(&model.ProjectModel{}).
		Where("id = ?", id).Update("image_url", url).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete is the direct destroy path. A validated project never leaves
// through here, whoever calls; it must go through the deletion-request
// workflow.
func (s *ProjectService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if m.IsValidated {
		s.audit(ctx, actor, "project.delete", id, false)
		return apperr.InvalidState("validated projects can only be deleted through an approved deletion request")
	}

	ref, err := s.Ref(ctx, m)
	if err != nil {
		return err
	}
	allowed := policy.CanDeleteProject(actor, ref)
	s.audit(ctx, actor, "project.delete", id, allowed)
	if !allowed {
		return apperr.NotAuthorized("you may not delete this project")
	}

	return DeleteProjectCascade(s.DB.WithContext(ctx), id)
}

// DeleteProjectCascade removes a project and everything hanging off it
// in one transaction. Shared with the deletion-request approval path.
func DeleteProjectCascade(db *gorm.DB, projectID uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).
			Delete(&documentModel.ProjectDocumentModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).
			Delete(&deletionModel.ProjectDeletionRequestModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).
			Delete(&model.ProjectMemberModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.ProjectModel{}, "id = ?", projectID).Error
	})
}

// Validate flips the one-way gate. Admin only.
func (s *ProjectService) Validate(ctx context.Context, actor policy.Actor, id uuid.UUID) (*model.ProjectModel, error) {
	allowed := actor.IsAdmin()
	s.audit(ctx, actor, "project.validate", id, allowed)
	if !allowed {
		return nil, apperr.NotAuthorized("only admins may validate projects")
	}
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.IsValidated {
		if err := s.DB.WithContext(ctx).Model(&model.ProjectModel{}).
			Where("id = ?", id).Update("is_validated", true).Error; err != nil {
			return nil, err
		}
		m.IsValidated = true
	}
	return m, nil
}

// AddMember is idempotent; repeated adds leave the set unchanged.
func (s *ProjectService) AddMember(ctx context.Context, actor policy.Actor, projectID, userID uuid.UUID) error {
	m, err := s.Get(ctx, projectID)
	if err != nil {
		return err
	}
	ref, err := s.Ref(ctx, m)
	if err != nil {
		return err
	}
	allowed := policy.CanMutateMembers(actor, ref)
	s.audit(ctx, actor, "project.add_member", projectID, allowed)
	if !allowed {
		return apperr.NotAuthorized("login required to manage members")
	}

	row := model.ProjectMemberModel{ProjectID: projectID, UserID: userID}
	err = s.DB.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		FirstOrCreate(&row).Error
	return err
}

func (s *ProjectService) RemoveMember(ctx context.Context, actor policy.Actor, projectID, userID uuid.UUID) error {
	m, err := s.Get(ctx, projectID)
	if err != nil {
		return err
	}
	ref, err := s.Ref(ctx, m)
	if err != nil {
		return err
	}
	allowed := policy.CanMutateMembers(actor, ref)
	s.audit(ctx, actor, "project.remove_member", projectID, allowed)
	if !allowed {
		return apperr.NotAuthorized("login required to manage members")
	}

	return s.DB.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&model.ProjectMemberModel{}).Error
}
