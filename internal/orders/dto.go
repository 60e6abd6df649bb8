package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	"github.com/cardbinder/cardbinder-backend/pkg/types"
)

// OrderDTO is the order payload returned to clients.
type OrderDTO struct {
	ID                     uuid.UUID              `json:"id"`
	OfferID                *uuid.UUID             `json:"offer_id,omitempty"`
	ListingID              uuid.UUID              `json:"listing_id"`
	BuyerID                uuid.UUID              `json:"buyer_id"`
	SellerID               uuid.UUID              `json:"seller_id"`
	AmountCents            int64                  `json:"amount_cents"`
	Status                 string                 `json:"status"`
	FulfillmentMethod      string                 `json:"fulfillment_method"`
	ShippingAddress        *types.Address         `json:"shipping_address,omitempty"`
	ShippingPending        bool                   `json:"shipping_pending"`
	TrackingNumber         *string                `json:"tracking_number,omitempty"`
	ListingSnapshot        *types.ListingSnapshot `json:"listing_snapshot,omitempty"`
	SellerHasStripeAccount bool                   `json:"seller_has_stripe_account"`
	PaymentRequired        bool                   `json:"payment_required"`
	PaidAt                 *time.Time             `json:"paid_at,omitempty"`
	ShippedAt              *time.Time             `json:"shipped_at,omitempty"`
	CompletedAt            *time.Time             `json:"completed_at,omitempty"`
	CancelledAt            *time.Time             `json:"cancelled_at,omitempty"`
	CreatedAt              time.Time              `json:"created_at"`
	UpdatedAt              time.Time              `json:"updated_at"`
}

// CreateOrderInput converts an accepted offer into an order.
type CreateOrderInput struct {
	OfferID    uuid.UUID
	MarkAsSold bool
}

// ShipOrderInput carries the tracking number for the shipped transition.
type ShipOrderInput struct {
	TrackingNumber string
}

// ListOrdersInput narrows the order history query.
type ListOrdersInput struct {
	UserID uuid.UUID
	Role   string // "buyer", "seller", or "" for both
}

// NewOrderDTO builds a DTO from the persisted model.
func NewOrderDTO(order *models.Order) *OrderDTO {
	return &OrderDTO{
		ID:                     order.ID,
		OfferID:                order.OfferID,
		ListingID:              order.ListingID,
		BuyerID:                order.BuyerID,
		SellerID:               order.SellerID,
		AmountCents:            order.AmountCents,
		Status:                 string(order.Status),
		FulfillmentMethod:      string(order.FulfillmentMethod),
		ShippingAddress:        order.ShippingAddress,
		ShippingPending:        order.FulfillmentMethod == enums.FulfillmentShipping && order.ShippingAddress == nil,
		TrackingNumber:         order.TrackingNumber,
		ListingSnapshot:        order.ListingSnapshot,
		SellerHasStripeAccount: order.SellerHasStripeAccount,
		PaymentRequired:        order.PaymentRequired,
		PaidAt:                 order.PaidAt,
		ShippedAt:              order.ShippedAt,
		CompletedAt:            order.CompletedAt,
		CancelledAt:            order.CancelledAt,
		CreatedAt:              order.CreatedAt,
		UpdatedAt:              order.UpdatedAt,
	}
}
