package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	"github.com/cardbinder/cardbinder-backend/pkg/types"
)

// Offer is a buyer's bid on a listing. Counter-offers are new rows linked
// through ParentOfferID, so the full negotiation chain stays queryable.
//
// The uq_offers_one_pending partial unique index on (buyer_id, listing_id)
// WHERE status = 'pending' enforces the single-pending-offer rule at the
// database, not in application code.
//
// ListingSnapshot is built server-side from the listing row at creation
// time; the client-submitted snapshot is never trusted. Cleared hides the
// offer from dashboards once it has been converted to an order or
// dismissed; the row itself is kept for history.
type Offer struct {
	ID                   uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ListingID            uuid.UUID              `gorm:"column:listing_id;type:uuid;not null;index:offers_listing_id_idx"`
	BuyerID              uuid.UUID              `gorm:"column:buyer_id;type:uuid;not null;index:offers_buyer_id_idx"`
	SellerID             uuid.UUID              `gorm:"column:seller_id;type:uuid;not null;index:offers_seller_id_idx"`
	AmountCents          int64                  `gorm:"column:amount_cents;not null"`
	Message              *string                `gorm:"column:message;type:text"`
	Status               enums.OfferStatus      `gorm:"column:status;type:offer_status;not null;default:'pending'"`
	ParentOfferID        *uuid.UUID             `gorm:"column:parent_offer_id;type:uuid"`
	CounteredBy          *uuid.UUID             `gorm:"column:countered_by;type:uuid"`
	ListingSnapshot      *types.ListingSnapshot `gorm:"column:listing_snapshot;type:jsonb"`
	IsPickup             bool                   `gorm:"column:is_pickup;not null;default:false"`
	RequiresShippingInfo bool                   `gorm:"column:requires_shipping_info;not null;default:false"`
	ShippingAddress      *types.Address         `gorm:"column:shipping_address;type:address_t"`
	Cleared              bool                   `gorm:"column:cleared;not null;default:false"`
	ExpiresAt            time.Time              `gorm:"column:expires_at;not null;index:offers_expires_at_idx"`
	RespondedAt          *time.Time             `gorm:"column:responded_at"`
	CreatedAt            time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
