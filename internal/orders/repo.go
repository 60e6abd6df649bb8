package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
)

// Repository wires together order persistence helpers.
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

// FindByID loads the order.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// Create inserts a new order row. The uq_orders_offer_id index makes a
// second order for the same offer fail here.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// Save updates an existing order row.
func (r *Repository) Save(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// ListForUser returns the user's order history, newest first. Buyer and
// seller views are plain queries over the same table; there are no
// per-user index rows to maintain.
func (r *Repository) ListForUser(ctx context.Context, input ListOrdersInput) ([]models.Order, error) {
	qb := r.db.WithContext(ctx).Model(&models.Order{})
	switch input.Role {
	case "buyer":
		qb = qb.Where("buyer_id = ?", input.UserID)
	case "seller":
		qb = qb.Where("seller_id = ?", input.UserID)
	default:
		qb = qb.Where("buyer_id = ? OR seller_id = ?", input.UserID, input.UserID)
	}

	var rows []models.Order
	err := qb.Order("created_at DESC").Find(&rows).Error
	return rows, err
}
