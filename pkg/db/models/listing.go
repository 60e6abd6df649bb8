package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/cardbinder/cardbinder-backend/pkg/enums"
)

// Listing is a single card put up for sale.
//
// FavoriteCount and ViewCount are maintained in the same transaction as the
// writes that change them; they are never recomputed from scans at read time.
type Listing struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID         uuid.UUID               `gorm:"column:seller_id;type:uuid;not null;index:listings_seller_id_idx"`
	Title            string                  `gorm:"column:title;type:text;not null"`
	Description      *string                 `gorm:"column:description;type:text"`
	Game             enums.GameCategory      `gorm:"column:game;type:game_category;not null;index:listings_game_idx"`
	SetName          *string                 `gorm:"column:set_name;type:text"`
	CardNumber       *string                 `gorm:"column:card_number;type:text"`
	Condition        enums.CardCondition     `gorm:"column:condition;type:card_condition;not null"`
	PriceCents       int64                   `gorm:"column:price_cents;not null"`
	Quantity         int                     `gorm:"column:quantity;not null;default:1"`
	Images           pq.StringArray          `gorm:"column:images;type:text[];not null;default:ARRAY[]::text[]"`
	Status           enums.ListingStatus     `gorm:"column:status;type:listing_status;not null;default:'active';index:listings_status_idx"`
	ExpirationReason *enums.ExpirationReason `gorm:"column:expiration_reason;type:expiration_reason"`
	SellerTier       enums.AccountTier       `gorm:"column:seller_tier;type:account_tier;not null;default:'free'"`
	ActivatedAt      time.Time               `gorm:"column:activated_at;not null"`
	ExpiresAt        *time.Time              `gorm:"column:expires_at;index:listings_expires_at_idx"`
	LastActivityAt   time.Time               `gorm:"column:last_activity_at;not null"`
	ArchivedAt       *time.Time              `gorm:"column:archived_at"`
	DeleteAt         *time.Time              `gorm:"column:delete_at;index:listings_delete_at_idx"`
	SoldAt           *time.Time              `gorm:"column:sold_at"`
	SoldTo           *uuid.UUID              `gorm:"column:sold_to;type:uuid"`
	ViewCount        int64                   `gorm:"column:view_count;not null;default:0"`
	FavoriteCount    int64                   `gorm:"column:favorite_count;not null;default:0"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
