package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/pkg/enums"
)

// WantedPost is a buyer's request for a card they are looking to acquire.
// LegacyKey records the pre-migration document identifier for rows imported
// by the one-time wanted post migration; it is nil for rows created natively.
type WantedPost struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index:wanted_posts_user_id_idx"`
	Game          enums.GameCategory     `gorm:"column:game;type:game_category;not null;index:wanted_posts_game_idx"`
	CardName      string                 `gorm:"column:card_name;type:text;not null"`
	SetName       *string                `gorm:"column:set_name;type:text"`
	MinCondition  *enums.CardCondition   `gorm:"column:min_condition;type:card_condition"`
	MaxPriceCents *int64                 `gorm:"column:max_price_cents"`
	Notes         *string                `gorm:"column:notes;type:text"`
	Status        enums.WantedPostStatus `gorm:"column:status;type:wanted_post_status;not null;default:'active'"`
	LegacyKey     *string                `gorm:"column:legacy_key;type:text;uniqueIndex:uq_wanted_posts_legacy_key"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
