package favorites

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/pagination"
)

// Repository encapsulates favorite persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a favorites repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the supplied transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Insert adds the favorite row and reports whether a new row was
// created. Duplicates are swallowed so the caller can keep the count
// increment conditional.
func (r *Repository) Insert(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Exec(`INSERT INTO favorites (user_id, listing_id) VALUES (?, ?) ON CONFLICT (user_id, listing_id) DO NOTHING`, userID, listingID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the favorite row and reports whether one existed.
func (r *Repository) Delete(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Exists reports whether the user has favorited the listing.
func (r *Repository) Exists(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Count(&count).
		Error
	return count > 0, err
}

type favoriteRow struct {
	FavoriteID        uuid.UUID  `gorm:"column:favorite_id"`
	FavoriteCreatedAt time.Time  `gorm:"column:favorite_created_at"`
	ListingID         uuid.UUID  `gorm:"column:listing_id"`
	SellerID          uuid.UUID  `gorm:"column:seller_id"`
	Title             string     `gorm:"column:title"`
	Game              string     `gorm:"column:game"`
	SetName           *string    `gorm:"column:set_name"`
	Condition         string     `gorm:"column:condition"`
	PriceCents        int64      `gorm:"column:price_cents"`
	Status            string     `gorm:"column:status"`
	ThumbnailURL      *string    `gorm:"column:thumbnail_url"`
	ExpiresAt         *time.Time `gorm:"column:expires_at"`
}

// ListForUser returns the user's favorites newest first, joined with a
// compact view of each listing.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]favoriteRow, string, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(params.Cursor))
	if err != nil {
		return nil, "", err
	}

	query := r.db.WithContext(ctx).
		Table("favorites AS f").
		Select([]string{
			"f.id AS favorite_id",
			"f.created_at AS favorite_created_at",
			"l.id AS listing_id",
			"l.seller_id",
			"l.title",
			"l.game",
			"l.set_name",
			"l.condition",
			"l.price_cents",
			"l.status",
			"l.images[1] AS thumbnail_url",
			"l.expires_at",
		}).
		Joins("JOIN listings l ON l.id = f.listing_id").
		Where("f.user_id = ?", userID)

	if decodedCursor != nil {
		query = query.Where(
			"(f.created_at < ?) OR (f.created_at = ? AND f.id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID,
		)
	}

	var rows []favoriteRow
	err = query.
		Order("f.created_at DESC, f.id DESC").
		Limit(limitWithBuffer).
		Scan(&rows).
		Error
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > normalizedLimit {
		rows = rows[:normalizedLimit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.FavoriteCreatedAt, ID: last.FavoriteID})
	}
	return rows, nextCursor, nil
}
