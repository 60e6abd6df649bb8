package wanted

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	"github.com/cardbinder/cardbinder-backend/pkg/pagination"
)

// Repository wires together wanted post persistence helpers.
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

// FindByID loads the wanted post.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.WantedPost, error) {
	var post models.WantedPost
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Create inserts a new wanted post.
func (r *Repository) Create(ctx context.Context, post *models.WantedPost) (*models.WantedPost, error) {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// Save updates an existing wanted post.
func (r *Repository) Save(ctx context.Context, post *models.WantedPost) (*models.WantedPost, error) {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes the wanted post.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.WantedPost{}).Error
}

// ListByUser returns the owner's posts, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.WantedPost, error) {
	var rows []models.WantedPost
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// ListPublic pages through active posts for the public board.
func (r *Repository) ListPublic(ctx context.Context, params pagination.Params, game *enums.GameCategory) ([]models.WantedPost, string, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).
		Model(&models.WantedPost{}).
		Where("status = ?", enums.WantedPostActive)
	if game != nil {
		qb = qb.Where("game = ?", *game)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.WantedPost
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}

// FindByLegacyKey looks up a post imported from the pre-migration store.
func (r *Repository) FindByLegacyKey(ctx context.Context, key string) (*models.WantedPost, error) {
	var post models.WantedPost
	if err := r.db.WithContext(ctx).Where("legacy_key = ?", key).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}
