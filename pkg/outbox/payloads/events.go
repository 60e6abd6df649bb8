package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/pkg/enums"
)

// ListingArchivedEvent is emitted when the lifecycle sweep or an admin
// archives a listing.
type ListingArchivedEvent struct {
	ListingID uuid.UUID              `json:"listing_id"`
	SellerID  uuid.UUID              `json:"seller_id"`
	Title     string                 `json:"title"`
	Reason    enums.ExpirationReason `json:"reason"`
	ExpiredAt time.Time              `json:"expired_at"`
}

// ListingPurgedEvent records a permanent deletion after the archive window.
type ListingPurgedEvent struct {
	ListingID  uuid.UUID `json:"listing_id"`
	SellerID   uuid.UUID `json:"seller_id"`
	ArchivedAt time.Time `json:"archived_at"`
	PurgedAt   time.Time `json:"purged_at"`
}

// ListingSoldEvent is emitted when an order takes the listing off the market.
type ListingSoldEvent struct {
	ListingID uuid.UUID `json:"listing_id"`
	SellerID  uuid.UUID `json:"seller_id"`
	OrderID   uuid.UUID `json:"order_id"`
	SoldAt    time.Time `json:"sold_at"`
}

// OfferCreatedEvent signals a new offer awaiting the seller's response.
type OfferCreatedEvent struct {
	OfferID     uuid.UUID  `json:"offer_id"`
	ListingID   uuid.UUID  `json:"listing_id"`
	BuyerID     uuid.UUID  `json:"buyer_id"`
	SellerID    uuid.UUID  `json:"seller_id"`
	AmountCents int64      `json:"amount_cents"`
	ParentID    *uuid.UUID `json:"parent_offer_id,omitempty"`
	ExpiresAt   time.Time  `json:"expires_at"`
}

// OfferDecisionEvent is emitted when an offer reaches a terminal state or is countered.
type OfferDecisionEvent struct {
	OfferID        uuid.UUID         `json:"offer_id"`
	ListingID      uuid.UUID         `json:"listing_id"`
	BuyerID        uuid.UUID         `json:"buyer_id"`
	SellerID       uuid.UUID         `json:"seller_id"`
	AmountCents    int64             `json:"amount_cents"`
	Status         enums.OfferStatus `json:"status"`
	CounterOfferID *uuid.UUID        `json:"counter_offer_id,omitempty"`
	DecidedAt      time.Time         `json:"decided_at"`
}

// OrderCreatedEvent surfaces the materialized order for notification fan-out.
type OrderCreatedEvent struct {
	OrderID           uuid.UUID               `json:"order_id"`
	OfferID           *uuid.UUID              `json:"offer_id,omitempty"`
	ListingID         uuid.UUID               `json:"listing_id"`
	BuyerID           uuid.UUID               `json:"buyer_id"`
	SellerID          uuid.UUID               `json:"seller_id"`
	AmountCents       int64                   `json:"amount_cents"`
	FulfillmentMethod enums.FulfillmentMethod `json:"fulfillment_method"`
}

// MessageSentEvent tells the notification worker to alert the recipient.
type MessageSentEvent struct {
	MessageID   uuid.UUID  `json:"message_id"`
	ThreadKey   string     `json:"thread_key"`
	ListingID   *uuid.UUID `json:"listing_id,omitempty"`
	SenderID    uuid.UUID  `json:"sender_id"`
	RecipientID uuid.UUID  `json:"recipient_id"`
	Preview     string     `json:"preview"`
}
