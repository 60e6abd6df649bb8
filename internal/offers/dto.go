package offers

import (
	"time"

	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/types"
)

// OfferDTO is the offer payload returned to clients.
type OfferDTO struct {
	ID                   uuid.UUID              `json:"id"`
	ListingID            uuid.UUID              `json:"listing_id"`
	BuyerID              uuid.UUID              `json:"buyer_id"`
	SellerID             uuid.UUID              `json:"seller_id"`
	AmountCents          int64                  `json:"amount_cents"`
	Message              *string                `json:"message,omitempty"`
	Status               string                 `json:"status"`
	ParentOfferID        *uuid.UUID             `json:"parent_offer_id,omitempty"`
	CounteredBy          *uuid.UUID             `json:"countered_by,omitempty"`
	ListingSnapshot      *types.ListingSnapshot `json:"listing_snapshot,omitempty"`
	IsPickup             bool                   `json:"is_pickup"`
	RequiresShippingInfo bool                   `json:"requires_shipping_info"`
	ShippingAddress      *types.Address         `json:"shipping_address,omitempty"`
	Cleared              bool                   `json:"cleared"`
	ExpiresAt            time.Time              `json:"expires_at"`
	RespondedAt          *time.Time             `json:"responded_at,omitempty"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// CreateOfferInput holds the validated payload to create an offer.
// Any client-supplied listing snapshot is ignored; the server rebuilds
// it from the listing row.
type CreateOfferInput struct {
	ListingID            uuid.UUID
	AmountCents          int64
	Message              *string
	IsPickup             bool
	RequiresShippingInfo bool
	ShippingAddress      *types.Address
	ExpiryHours          *int
}

// CounterOfferInput holds the seller's counter proposal.
type CounterOfferInput struct {
	AmountCents int64
	Message     *string
	ExpiryHours *int
}

// ListOffersInput narrows the dashboard query.
type ListOffersInput struct {
	UserID         uuid.UUID
	Role           string // "buyer", "seller", or "" for both
	IncludeCleared bool
}

// ClearExpiredResult reports how many rows the caller dismissed.
type ClearExpiredResult struct {
	Deleted int64 `json:"deleted"`
}

// NewOfferDTO builds a DTO from the persisted model.
func NewOfferDTO(offer *models.Offer) *OfferDTO {
	return &OfferDTO{
		ID:                   offer.ID,
		ListingID:            offer.ListingID,
		BuyerID:              offer.BuyerID,
		SellerID:             offer.SellerID,
		AmountCents:          offer.AmountCents,
		Message:              offer.Message,
		Status:               string(offer.Status),
		ParentOfferID:        offer.ParentOfferID,
		CounteredBy:          offer.CounteredBy,
		ListingSnapshot:      offer.ListingSnapshot,
		IsPickup:             offer.IsPickup,
		RequiresShippingInfo: offer.RequiresShippingInfo,
		ShippingAddress:      offer.ShippingAddress,
		Cleared:              offer.Cleared,
		ExpiresAt:            offer.ExpiresAt,
		RespondedAt:          offer.RespondedAt,
		CreatedAt:            offer.CreatedAt,
		UpdatedAt:            offer.UpdatedAt,
	}
}
