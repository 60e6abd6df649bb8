package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID              uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email           string            `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash    string            `gorm:"column:password_hash;not null"`
	DisplayName     string            `gorm:"column:display_name;not null"`
	Role            enums.UserRole    `gorm:"column:role;type:user_role;not null;default:'user'"`
	Tier            enums.AccountTier `gorm:"column:tier;type:account_tier;not null;default:'free'"`
	TierExpiresAt   *time.Time        `gorm:"column:tier_expires_at"`
	StripeAccountID *string           `gorm:"column:stripe_account_id"`
	IsActive        bool              `gorm:"column:is_active;not null;default:true"`
	SuspendedAt     *time.Time        `gorm:"column:suspended_at"`
	SuspendReason   *string           `gorm:"column:suspend_reason"`
	LastLoginAt     *time.Time        `gorm:"column:last_login_at"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
