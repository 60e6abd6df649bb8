package listings

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	"github.com/cardbinder/cardbinder-backend/pkg/pagination"
)

// Repository wires together listing persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the listing without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// Create inserts a new listing row.
func (r *Repository) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

// Save updates an existing listing row.
func (r *Repository) Save(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if err := r.db.WithContext(ctx).Save(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

// Delete removes the listing and its favorites rows. Offers and orders
// keep their snapshots, so they survive the purge untouched.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("listing_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Listing{}).Error
}

// IncrementViewCount bumps the counter without loading the row.
func (r *Repository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).
		Error
}

// FindSweepCandidates returns listings that may need a lifecycle
// transition at the given instant, oldest first, capped at batchSize.
// The WHERE mirrors EvaluateTransition so the sweep does not load rows
// it will leave alone; the evaluator still has the final say per row.
func (r *Repository) FindSweepCandidates(ctx context.Context, now time.Time, batchSize int) ([]models.Listing, error) {
	var rows []models.Listing
	inactiveBefore := now.Add(-inactivityWindow)
	err := r.db.WithContext(ctx).
		Where(
			"(status = ? AND expires_at IS NOT NULL AND expires_at < ?)"+
				" OR (status = ? AND last_activity_at <= ?)"+
				" OR status = ?"+
				" OR (status = ? AND delete_at IS NOT NULL AND delete_at < ?)",
			enums.ListingStatusActive, now,
			enums.ListingStatusInactive, inactiveBefore,
			enums.ListingStatusExpired,
			enums.ListingStatusArchived, now,
		).
		Order("created_at ASC").
		Limit(batchSize).
		Find(&rows).
		Error
	return rows, err
}

// FindOverdueArchived returns archived listings whose purge deadline has
// passed by at least the given overdue duration, most overdue first.
func (r *Repository) FindOverdueArchived(ctx context.Context, now time.Time, overdueBy time.Duration, limit int) ([]models.Listing, error) {
	var rows []models.Listing
	cutoff := now.Add(-overdueBy)
	err := r.db.WithContext(ctx).
		Where("status = ? AND delete_at IS NOT NULL AND delete_at < ?", enums.ListingStatusArchived, cutoff).
		Order("delete_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// OverdueCounts buckets lifecycle debt for the TTL monitor.
type OverdueCounts struct {
	ActivePastExpiry int64
	ArchivedDue      int64
	ArchivedCritical int64
}

// CountOverdue tallies listings past their lifecycle deadlines. The
// critical bucket counts archived rows overdue by more than the given
// emergency threshold.
func (r *Repository) CountOverdue(ctx context.Context, now time.Time, emergency time.Duration) (*OverdueCounts, error) {
	var counts OverdueCounts
	q := r.db.WithContext(ctx).Model(&models.Listing{})

	if err := q.Session(&gorm.Session{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", enums.ListingStatusActive, now).
		Count(&counts.ActivePastExpiry).Error; err != nil {
		return nil, err
	}
	if err := q.Session(&gorm.Session{}).
		Where("status = ? AND delete_at IS NOT NULL AND delete_at < ?", enums.ListingStatusArchived, now).
		Count(&counts.ArchivedDue).Error; err != nil {
		return nil, err
	}
	if err := q.Session(&gorm.Session{}).
		Where("status = ? AND delete_at IS NOT NULL AND delete_at < ?", enums.ListingStatusArchived, now.Add(-emergency)).
		Count(&counts.ArchivedCritical).Error; err != nil {
		return nil, err
	}
	return &counts, nil
}

// ListBySeller lists the seller's own listings, newest first.
func (r *Repository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Listing, error) {
	var rows []models.Listing
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// List runs the public browse query with filters and cursor pagination.
// Only active listings are visible on the public surface.
func (r *Repository) List(ctx context.Context, input ListInput) (*ListResult, error) {
	pageSize := pagination.NormalizeLimit(input.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(input.Pagination.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("status = ?", enums.ListingStatusActive)

	filter := input.Filters
	if filter.Game != nil {
		qb = qb.Where("game = ?", *filter.Game)
	}
	if filter.Condition != nil {
		qb = qb.Where("condition = ?", *filter.Condition)
	}
	if filter.PriceMinCents != nil {
		qb = qb.Where("price_cents >= ?", *filter.PriceMinCents)
	}
	if filter.PriceMaxCents != nil {
		qb = qb.Where("price_cents <= ?", *filter.PriceMaxCents)
	}
	if filter.SellerID != nil {
		qb = qb.Where("seller_id = ?", *filter.SellerID)
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(title) LIKE ? OR LOWER(set_name) LIKE ? OR LOWER(card_number) LIKE ?)", pattern, pattern, pattern)
	}

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Listing
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	dtos := make([]ListingDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewListingDTO(&rows[i]))
	}
	return &ListResult{Listings: dtos, NextCursor: nextCursor}, nil
}
