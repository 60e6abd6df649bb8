package favorites

import (
	"time"

	"github.com/google/uuid"
)

// FavoriteDTO is a favorite entry with a compact view of its listing.
type FavoriteDTO struct {
	ID           uuid.UUID  `json:"id"`
	ListingID    uuid.UUID  `json:"listingId"`
	SellerID     uuid.UUID  `json:"sellerId"`
	Title        string     `json:"title"`
	Game         string     `json:"game"`
	SetName      *string    `json:"setName,omitempty"`
	Condition    string     `json:"condition"`
	PriceCents   int64      `json:"priceCents"`
	Status       string     `json:"status"`
	ThumbnailURL *string    `json:"thumbnailUrl,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	FavoritedAt  time.Time  `json:"favoritedAt"`
}

// ListResult is a page of favorites plus the cursor for the next page.
type ListResult struct {
	Favorites  []FavoriteDTO `json:"favorites"`
	NextCursor string        `json:"nextCursor,omitempty"`
}

func newFavoriteDTO(row favoriteRow) FavoriteDTO {
	return FavoriteDTO{
		ID:           row.FavoriteID,
		ListingID:    row.ListingID,
		SellerID:     row.SellerID,
		Title:        row.Title,
		Game:         row.Game,
		SetName:      row.SetName,
		Condition:    row.Condition,
		PriceCents:   row.PriceCents,
		Status:       row.Status,
		ThumbnailURL: row.ThumbnailURL,
		ExpiresAt:    row.ExpiresAt,
		FavoritedAt:  row.FavoriteCreatedAt,
	}
}
