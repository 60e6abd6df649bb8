package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID              uuid.UUID  `json:"id"`
	Email           string     `json:"email"`
	DisplayName     string     `json:"display_name"`
	Role            string     `json:"role"`
	Tier            string     `json:"tier"`
	TierExpiresAt   *time.Time `json:"tier_expires_at,omitempty"`
	HasStripePayout bool       `json:"has_stripe_payout"`
	IsActive        bool       `json:"is_active"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	DisplayName  string
	Role         *enums.UserRole
	Tier         *enums.AccountTier
}

// ToModel maps the creation payload onto the persistence model.
func (d CreateUserDTO) ToModel() *models.User {
	user := &models.User{
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		DisplayName:  d.DisplayName,
		Role:         enums.RoleUser,
		Tier:         enums.AccountTierFree,
		IsActive:     true,
	}
	if d.Role != nil {
		user.Role = *d.Role
	}
	if d.Tier != nil {
		user.Tier = *d.Tier
	}
	return user
}

// FromModel converts the persistence model into the transport DTO.
func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:              u.ID,
		Email:           u.Email,
		DisplayName:     u.DisplayName,
		Role:            string(u.Role),
		Tier:            string(u.Tier),
		TierExpiresAt:   u.TierExpiresAt,
		HasStripePayout: u.StripeAccountID != nil,
		IsActive:        u.IsActive,
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
