package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"laboissim_backend/internals/constants"
	"laboissim_backend/internals/features/users/user/model"
	"laboissim_backend/internals/helpers/apperr"
	"laboissim_backend/internals/policy"
)

// ProfileService is the identity & role store: profile materialization,
// role resolution and the atomic role update.
type ProfileService struct {
	DB    *gorm.DB
	Audit policy.AuditSink
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db, Audit: policy.NopAudit{}}
}

// GetOrCreateProfile is idempotent: a missing profile is created with
// role=member; a concurrent create is resolved by re-reading.
func (s *ProfileService) GetOrCreateProfile(ctx context.Context, userID uuid.UUID) (*model.UserProfileModel, error) {
	return getOrCreateProfileTx(s.DB.WithContext(ctx), userID)
}

func getOrCreateProfileTx(db *gorm.DB, userID uuid.UUID) (*model.UserProfileModel, error) {
	var p model.UserProfileModel
	err := db.Where("user_id = ?", userID).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p = model.UserProfileModel{UserID: userID, Role: constants.RoleMember}
	if createErr := db.Create(&p).Error; createErr != nil {
		// lost the race to another request; the winner's row is ours too
		var again model.UserProfileModel
		if err := db.Where("user_id = ?", userID).First(&again).Error; err == nil {
			return &again, nil
		}
		return nil, createErr
	}
	return &p, nil
}

// RoleOf resolves the effective role. A platform superuser is always
// admin; any lookup failure falls open to the least-privileged role.
func (s *ProfileService) RoleOf(ctx context.Context, user *model.UserModel) string {
	if user.IsSuperuser {
		return constants.RoleAdmin
	}
	p, err := s.GetOrCreateProfile(ctx, user.ID)
	if err != nil {
		return constants.RoleMember
	}
	return p.Role
}

// ActorFor normalizes a user row into the typed actor the authorization
// engine consumes. Done once per request, never probed ad hoc.
func (s *ProfileService) ActorFor(ctx context.Context, user *model.UserModel) policy.Actor {
	return policy.Actor{
		ID:            user.ID,
		IsStaff:       user.IsStaff,
		IsSuperuser:   user.IsSuperuser,
		Role:          s.RoleOf(ctx, user),
		Authenticated: true,
	}
}

// UpdateUserRole applies the profile role and the platform flags as one
// indivisible unit; a reader never sees one side updated without the
// other. Only the admin role carries the platform flags.
func (s *ProfileService) UpdateUserRole(ctx context.Context, actor policy.Actor, userID uuid.UUID, role string) (*model.UserModel, *model.UserProfileModel, error) {
	allowed := policy.CanManageUsers(actor)
	s.Audit.Decision(ctx, policy.Decision{ActorID: actor.ID, Action: "user.update_role", Resource: userID.String(), Allowed: allowed})
	if !allowed {
		return nil, nil, apperr.NotAuthorized("only admins may change user roles")
	}
	if !constants.IsValidRole(role) {
		return nil, nil, apperr.Validation("invalid role %q", role)
	}

	var (
		user    model.UserModel
		profile *model.UserProfileModel
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("user %s not found", userID)
			}
			return err
		}

		p, err := getOrCreateProfileTx(tx, userID)
		if err != nil {
			return err
		}

		elevated := role == constants.RoleAdmin
		if err := tx.Model(&model.UserModel{}).Where("id = ?", userID).
			Updates(map[string]interface{}{"is_staff": elevated, "is_superuser": elevated}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.UserProfileModel{}).Where("id = ?", p.ID).
			Updates(map[string]interface{}{
				"role":         role,
				"is_team_lead": role == constants.RoleChefDEquipe,
			}).Error; err != nil {
			return err
		}

		user.IsStaff = elevated
		user.IsSuperuser = elevated
		p.Role = role
		p.IsTeamLead = role == constants.RoleChefDEquipe
		profile = p
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &user, profile, nil
}

// UpdateProfile patches the caller's own profile fields.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, changes map[string]interface{}) (*model.UserProfileModel, error) {
	p, err := s.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		if err := s.DB.WithContext(ctx).Model(&model.UserProfileModel{}).
			Where("id = ?", p.ID).Updates(changes).Error; err != nil {
			return nil, err
		}
	}
	var fresh model.UserProfileModel
	if err := s.DB.WithContext(ctx).First(&fresh, "id = ?", p.ID).Error; err != nil {
		return nil, err
	}
	return &fresh, nil
}

// TeamMembers lists active users with their profiles, for the public
// team page.
func (s *ProfileService) TeamMembers(ctx context.Context) ([]model.UserModel, map[uuid.UUID]model.UserProfileModel, error) {
	var users []model.UserModel
	if err := s.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&users).Error; err != nil {
		return nil, nil, err
	}

	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	profiles := make(map[uuid.UUID]model.UserProfileModel, len(users))
	if len(ids) > 0 {
		var rows []model.UserProfileModel
		if err := s.DB.WithContext(ctx).Where("user_id IN ?", ids).Find(&rows).Error; err != nil {
			return nil, nil, err
		}
		for _, p := range rows {
			profiles[p.UserID] = p
		}
	}
	return users, profiles, nil
}
