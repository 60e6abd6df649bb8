package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardbinder/cardbinder-backend/internal/users"
	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
)

// UpdateProfileInput holds the caller-editable account fields. Tier is
// absent on purpose; upgrades go through the admin endpoint.
type UpdateProfileInput struct {
	DisplayName *string
}

// SetTierInput is the admin-side tier assignment.
type SetTierInput struct {
	Tier      enums.AccountTier
	ExpiresAt *time.Time
}

// Service exposes account profile reads and writes.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*users.UserDTO, error)
	SetTier(ctx context.Context, userID uuid.UUID, input SetTierInput) (*users.UserDTO, error)
}

type service struct {
	repo *users.Repository
}

// NewService builds the account service.
func NewService(repo *users.Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return users.FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*users.UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if len(name) < 2 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "display name must be at least 2 characters")
		}
		user.DisplayName = name
	}

	updated, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update user")
	}
	return users.FromModel(updated), nil
}

// SetTier assigns the account tier. A nil expiry means the tier does
// not lapse; tier changes never touch already-created listings, whose
// window was fixed at creation time.
func (s *service) SetTier(ctx context.Context, userID uuid.UUID, input SetTierInput) (*users.UserDTO, error) {
	if !input.Tier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown account tier")
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(time.Now().UTC()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tier expiry must be in the future")
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTier(ctx, user.ID, input.Tier, input.ExpiresAt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update tier")
	}
	user.Tier = input.Tier
	user.TierExpiresAt = input.ExpiresAt
	return users.FromModel(user), nil
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
