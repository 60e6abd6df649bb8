package models

import (
	"time"

	"github.com/google/uuid"
)

// LegacyWantedPost is a staging row imported from the old document
// store, where wanted posts were written under three different paths.
// The migration job folds these into wanted_posts exactly once and
// stamps MigratedAt.
type LegacyWantedPost struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SourcePath    string     `gorm:"column:source_path;type:text;not null"`
	DocumentKey   string     `gorm:"column:document_key;type:text;not null;index:legacy_wanted_posts_key_idx"`
	UserID        uuid.UUID  `gorm:"column:user_id;type:uuid;not null"`
	Game          string     `gorm:"column:game;type:text;not null"`
	CardName      string     `gorm:"column:card_name;type:text;not null"`
	SetName       *string    `gorm:"column:set_name;type:text"`
	MinCondition  *string    `gorm:"column:min_condition;type:text"`
	MaxPriceCents *int64     `gorm:"column:max_price_cents"`
	Notes         *string    `gorm:"column:notes;type:text"`
	SourceCreated time.Time  `gorm:"column:source_created;not null"`
	MigratedAt    *time.Time `gorm:"column:migrated_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}
