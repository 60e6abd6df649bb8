package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	"github.com/cardbinder/cardbinder-backend/pkg/types"
)

// Order materializes an accepted offer or a direct buy-now purchase.
//
// OfferID carries the uq_orders_offer_id unique index so an offer can only
// ever produce one order, even under concurrent accepts.
type Order struct {
	ID                     uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OfferID                *uuid.UUID              `gorm:"column:offer_id;type:uuid;uniqueIndex:uq_orders_offer_id"`
	ListingID              uuid.UUID               `gorm:"column:listing_id;type:uuid;not null;index:orders_listing_id_idx"`
	BuyerID                uuid.UUID               `gorm:"column:buyer_id;type:uuid;not null;index:orders_buyer_id_idx"`
	SellerID               uuid.UUID               `gorm:"column:seller_id;type:uuid;not null;index:orders_seller_id_idx"`
	AmountCents            int64                   `gorm:"column:amount_cents;not null"`
	Status                 enums.OrderStatus       `gorm:"column:status;type:order_status;not null;default:'pending'"`
	FulfillmentMethod      enums.FulfillmentMethod `gorm:"column:fulfillment_method;type:fulfillment_method;not null"`
	ShippingAddress        *types.Address          `gorm:"column:shipping_address;type:address_t"`
	TrackingNumber         *string                 `gorm:"column:tracking_number;type:text"`
	ListingSnapshot        *types.ListingSnapshot  `gorm:"column:listing_snapshot;type:jsonb"`
	SellerHasStripeAccount bool                    `gorm:"column:seller_has_stripe_account;not null;default:false"`
	PaymentRequired        bool                    `gorm:"column:payment_required;not null;default:true"`
	PaidAt                 *time.Time              `gorm:"column:paid_at"`
	ShippedAt              *time.Time              `gorm:"column:shipped_at"`
	CompletedAt            *time.Time              `gorm:"column:completed_at"`
	CancelledAt            *time.Time              `gorm:"column:cancelled_at"`
	CreatedAt              time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
