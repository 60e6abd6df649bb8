package favorites

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/cardbinder/cardbinder-backend/pkg/db"
	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
	"github.com/cardbinder/cardbinder-backend/pkg/pagination"
)

type listingLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

// Service exposes favorite operations.
type Service interface {
	Favorite(ctx context.Context, userID, listingID uuid.UUID) error
	Unfavorite(ctx context.Context, userID, listingID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListResult, error)
}

// ServiceParams wires the favorites service dependencies.
type ServiceParams struct {
	Repo        *Repository
	ListingRepo listingLoader
	DBClient    *dbpkg.Client
	Logger      *logger.Logger
}

type service struct {
	repo        *Repository
	listingRepo listingLoader
	dbClient    *dbpkg.Client
	logg        *logger.Logger
}

// NewService validates dependencies and returns the favorites service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "favorites repo is required")
	}
	if params.ListingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing repo is required")
	}
	if params.DBClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db client is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		repo:        params.Repo,
		listingRepo: params.ListingRepo,
		dbClient:    params.DBClient,
		logg:        params.Logger,
	}, nil
}

// Favorite saves the listing for the user. Repeat calls are no-ops and
// never double-count.
func (s *service) Favorite(ctx context.Context, userID, listingID uuid.UUID) error {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}

	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		inserted, err := s.repo.WithTx(tx).Insert(ctx, userID, listingID)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}
		return tx.Model(&models.Listing{}).
			Where("id = ?", listing.ID).
			UpdateColumn("favorite_count", gorm.Expr("favorite_count + 1")).
			Error
	})
}

// Unfavorite removes the saved listing. Removing a listing that was
// never favorited is a no-op.
func (s *service) Unfavorite(ctx context.Context, userID, listingID uuid.UUID) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		deleted, err := s.repo.WithTx(tx).Delete(ctx, userID, listingID)
		if err != nil {
			return err
		}
		if !deleted {
			return nil
		}
		return tx.Model(&models.Listing{}).
			Where("id = ? AND favorite_count > 0", listingID).
			UpdateColumn("favorite_count", gorm.Expr("favorite_count - 1")).
			Error
	})
}

// List returns the user's saved listings newest first.
func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListResult, error) {
	rows, nextCursor, err := s.repo.ListForUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list favorites")
	}

	favorites := make([]FavoriteDTO, 0, len(rows))
	for _, row := range rows {
		favorites = append(favorites, newFavoriteDTO(row))
	}
	return &ListResult{Favorites: favorites, NextCursor: nextCursor}, nil
}
