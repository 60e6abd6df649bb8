package offers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
)

// Repository wires together offer persistence helpers.
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

// FindByID loads the offer.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.WithContext(ctx).First(&offer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

// Create inserts a new offer row. The uq_offers_one_pending index makes
// a second pending offer for the same buyer and listing fail here.
func (r *Repository) Create(ctx context.Context, offer *models.Offer) (*models.Offer, error) {
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

// Save updates an existing offer row.
func (r *Repository) Save(ctx context.Context, offer *models.Offer) (*models.Offer, error) {
	if err := r.db.WithContext(ctx).Save(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

// ListForUser returns the user's offers on either side of the table,
// newest first. Cleared rows are hidden unless asked for.
func (r *Repository) ListForUser(ctx context.Context, input ListOffersInput) ([]models.Offer, error) {
	qb := r.db.WithContext(ctx).Model(&models.Offer{})
	switch input.Role {
	case "buyer":
		qb = qb.Where("buyer_id = ?", input.UserID)
	case "seller":
		qb = qb.Where("seller_id = ?", input.UserID)
	default:
		qb = qb.Where("buyer_id = ? OR seller_id = ?", input.UserID, input.UserID)
	}
	if !input.IncludeCleared {
		qb = qb.Where("cleared = ?", false)
	}

	var rows []models.Offer
	err := qb.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// FindExpiredPending returns pending offers past their expiry, oldest
// first, capped at batchSize.
func (r *Repository) FindExpiredPending(ctx context.Context, now time.Time, batchSize int) ([]models.Offer, error) {
	var rows []models.Offer
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", enums.OfferStatusPending, now).
		Order("expires_at ASC").
		Limit(batchSize).
		Find(&rows).
		Error
	return rows, err
}

// DeleteExpiredAndDeclinedFor removes the caller's expired and declined
// offers on both sides of the table and reports how many went away.
func (r *Repository) DeleteExpiredAndDeclinedFor(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("(buyer_id = ? OR seller_id = ?) AND status IN ?",
			userID, userID,
			[]enums.OfferStatus{enums.OfferStatusExpired, enums.OfferStatusDeclined},
		).
		Delete(&models.Offer{})
	return result.RowsAffected, result.Error
}

// MarkCleared soft-hides the offer from dashboards.
func (r *Repository) MarkCleared(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("id = ?", id).
		UpdateColumn("cleared", true).
		Error
}
