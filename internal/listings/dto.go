package listings

import (
	"time"

	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	"github.com/cardbinder/cardbinder-backend/pkg/pagination"
)

// ListingDTO is the listing payload returned to clients.
type ListingDTO struct {
	ID               uuid.UUID  `json:"id"`
	SellerID         uuid.UUID  `json:"seller_id"`
	Title            string     `json:"title"`
	Description      *string    `json:"description,omitempty"`
	Game             string     `json:"game"`
	SetName          *string    `json:"set_name,omitempty"`
	CardNumber       *string    `json:"card_number,omitempty"`
	Condition        string     `json:"condition"`
	PriceCents       int64      `json:"price_cents"`
	Quantity         int        `json:"quantity"`
	Images           []string   `json:"images"`
	Status           string     `json:"status"`
	ExpirationReason *string    `json:"expiration_reason,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	ArchivedAt       *time.Time `json:"archived_at,omitempty"`
	SoldAt           *time.Time `json:"sold_at,omitempty"`
	ViewCount        int64      `json:"view_count"`
	FavoriteCount    int64      `json:"favorite_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ExpiryDTO is the countdown payload for the timer display.
type ExpiryDTO struct {
	ListingID        uuid.UUID  `json:"listing_id"`
	Status           string     `json:"status"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
	RemainingSeconds int64      `json:"remaining_seconds"`
}

// CreateListingInput holds the validated payload to create a listing.
type CreateListingInput struct {
	Title       string
	Description *string
	Game        enums.GameCategory
	SetName     *string
	CardNumber  *string
	Condition   enums.CardCondition
	PriceCents  int64
	Quantity    int
	Images      []string
}

// UpdateListingInput holds optional mutation values for a listing.
type UpdateListingInput struct {
	Title       *string
	Description *string
	SetName     *string
	CardNumber  *string
	Condition   *enums.CardCondition
	PriceCents  *int64
	Quantity    *int
	Images      *[]string
	Status      *enums.ListingStatus
}

// ListFilters narrows the public browse query.
type ListFilters struct {
	Game          *enums.GameCategory
	Condition     *enums.CardCondition
	PriceMinCents *int64
	PriceMaxCents *int64
	SellerID      *uuid.UUID
	Query         string
}

// ListInput drives the public browse endpoint.
type ListInput struct {
	Pagination pagination.Params
	Filters    ListFilters
}

// ListResult is one page of listings plus the cursor for the next page.
type ListResult struct {
	Listings   []ListingDTO `json:"listings"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// NewListingDTO builds a DTO from the persisted model.
func NewListingDTO(listing *models.Listing) *ListingDTO {
	dto := &ListingDTO{
		ID:            listing.ID,
		SellerID:      listing.SellerID,
		Title:         listing.Title,
		Description:   listing.Description,
		Game:          string(listing.Game),
		SetName:       listing.SetName,
		CardNumber:    listing.CardNumber,
		Condition:     string(listing.Condition),
		PriceCents:    listing.PriceCents,
		Quantity:      listing.Quantity,
		Images:        append([]string{}, listing.Images...),
		Status:        string(listing.Status),
		ExpiresAt:     listing.ExpiresAt,
		ArchivedAt:    listing.ArchivedAt,
		SoldAt:        listing.SoldAt,
		ViewCount:     listing.ViewCount,
		FavoriteCount: listing.FavoriteCount,
		CreatedAt:     listing.CreatedAt,
		UpdatedAt:     listing.UpdatedAt,
	}
	if listing.ExpirationReason != nil {
		reason := string(*listing.ExpirationReason)
		dto.ExpirationReason = &reason
	}
	return dto
}
