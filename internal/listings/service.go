package listings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/cardbinder/cardbinder-backend/pkg/config"
	"github.com/cardbinder/cardbinder-backend/pkg/db"
	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
	"github.com/cardbinder/cardbinder-backend/pkg/outbox"
	"github.com/cardbinder/cardbinder-backend/pkg/outbox/payloads"
)

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ServiceParams groups dependencies for the listing service.
type ServiceParams struct {
	Repo     *Repository
	UserRepo userLoader
	DBClient *db.Client
	Outbox   *outbox.Service
	Logger   *logger.Logger
	Cleanup  config.CleanupConfig
}

// Service exposes listing management and the lifecycle entry points.
type Service interface {
	Create(ctx context.Context, sellerID uuid.UUID, input CreateListingInput) (*ListingDTO, error)
	Update(ctx context.Context, sellerID, listingID uuid.UUID, input UpdateListingInput) (*ListingDTO, error)
	Archive(ctx context.Context, sellerID, listingID uuid.UUID) (*ListingDTO, error)
	Delete(ctx context.Context, sellerID, listingID uuid.UUID) error
	Get(ctx context.Context, listingID uuid.UUID) (*ListingDTO, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	ListMine(ctx context.Context, sellerID uuid.UUID) ([]ListingDTO, error)
	Expiry(ctx context.Context, listingID uuid.UUID, now time.Time) (*ExpiryDTO, error)
	ApplyTransition(ctx context.Context, listingID uuid.UUID, now time.Time) (*Transition, error)
}

type service struct {
	repo     *Repository
	userRepo userLoader
	dbClient *db.Client
	outbox   *outbox.Service
	logg     *logger.Logger
	cleanup  config.CleanupConfig
}

// NewService builds a listing service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing repo is required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repo is required")
	}
	if params.DBClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db client is required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "outbox service is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		repo:     params.Repo,
		userRepo: params.UserRepo,
		dbClient: params.DBClient,
		outbox:   params.Outbox,
		logg:     params.Logger,
		cleanup:  params.Cleanup,
	}, nil
}

// Create inserts the listing with its expiry stamped from the seller's
// current tier.
func (s *service) Create(ctx context.Context, sellerID uuid.UUID, input CreateListingInput) (*ListingDTO, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if !input.Game.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown game category")
	}
	if !input.Condition.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown card condition")
	}

	seller, err := s.userRepo.FindByID(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	if !seller.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is suspended")
	}

	now := time.Now().UTC()
	expiresAt := ExpiresAt(now, seller.Tier)
	listing := &models.Listing{
		SellerID:       sellerID,
		Title:          title,
		Description:    input.Description,
		Game:           input.Game,
		SetName:        input.SetName,
		CardNumber:     input.CardNumber,
		Condition:      input.Condition,
		PriceCents:     input.PriceCents,
		Quantity:       input.Quantity,
		Images:         pq.StringArray(input.Images),
		Status:         enums.ListingStatusActive,
		SellerTier:     seller.Tier,
		ActivatedAt:    now,
		ExpiresAt:      &expiresAt,
		LastActivityAt: now,
	}

	created, err := s.repo.Create(ctx, listing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert listing")
	}
	return NewListingDTO(created), nil
}

// Update mutates the seller's own listing and refreshes its activity
// timestamp, which is what keeps an inactive listing off the sweep.
func (s *service) Update(ctx context.Context, sellerID, listingID uuid.UUID, input UpdateListingInput) (*ListingDTO, error) {
	listing, err := s.loadOwned(ctx, sellerID, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status == enums.ListingStatusArchived || listing.Status == enums.ListingStatusSold {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing can no longer be edited")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
		}
		listing.Title = title
	}
	if input.Description != nil {
		listing.Description = input.Description
	}
	if input.SetName != nil {
		listing.SetName = input.SetName
	}
	if input.CardNumber != nil {
		listing.CardNumber = input.CardNumber
	}
	if input.Condition != nil {
		if !input.Condition.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown card condition")
		}
		listing.Condition = *input.Condition
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		listing.PriceCents = *input.PriceCents
	}
	if input.Quantity != nil {
		if *input.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		listing.Quantity = *input.Quantity
	}
	if input.Images != nil {
		listing.Images = pq.StringArray(append([]string{}, (*input.Images)...))
	}
	if input.Status != nil {
		switch *input.Status {
		case enums.ListingStatusActive, enums.ListingStatusInactive:
			listing.Status = *input.Status
		default:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be active or inactive")
		}
	}

	listing.LastActivityAt = time.Now().UTC()
	updated, err := s.repo.Save(ctx, listing)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update listing")
	}
	return NewListingDTO(updated), nil
}

// Archive is the seller's manual takedown. It goes through the same
// apply path as the sweep so archived rows always look the same.
func (s *service) Archive(ctx context.Context, sellerID, listingID uuid.UUID) (*ListingDTO, error) {
	listing, err := s.loadOwned(ctx, sellerID, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status == enums.ListingStatusArchived {
		return NewListingDTO(listing), nil
	}
	if listing.Status == enums.ListingStatusSold {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "sold listings cannot be archived")
	}

	now := time.Now().UTC()
	transition := &Transition{
		Kind:      TransitionArchive,
		ListingID: listing.ID.String(),
		Reason:    enums.ExpirationReasonManualArchive,
	}
	if err := s.apply(ctx, listing, transition, now); err != nil {
		return nil, err
	}
	return NewListingDTO(listing), nil
}

// Delete is the seller's hard removal. It rides the purge path so the
// favorites cleanup and the purged event fire exactly like the sweep's.
func (s *service) Delete(ctx context.Context, sellerID, listingID uuid.UUID) error {
	listing, err := s.loadOwned(ctx, sellerID, listingID)
	if err != nil {
		return err
	}
	if listing.Status == enums.ListingStatusSold {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "sold listings cannot be deleted")
	}

	now := time.Now().UTC()
	transition := &Transition{
		Kind:      TransitionPurge,
		ListingID: listing.ID.String(),
	}
	return s.apply(ctx, listing, transition, now)
}

// Get returns the listing and counts the view.
func (s *service) Get(ctx context.Context, listingID uuid.UUID) (*ListingDTO, error) {
	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if err := s.repo.IncrementViewCount(ctx, listingID); err != nil {
		s.logg.Warn(s.logg.WithListingID(ctx, listingID.String()), "increment view count failed")
	} else {
		listing.ViewCount++
	}
	return NewListingDTO(listing), nil
}

// List runs the public browse query.
func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	result, err := s.repo.List(ctx, input)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list listings")
	}
	return result, nil
}

// ListMine returns the seller's own listings in every status.
func (s *service) ListMine(ctx context.Context, sellerID uuid.UUID) ([]ListingDTO, error) {
	rows, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller listings")
	}
	dtos := make([]ListingDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewListingDTO(&rows[i]))
	}
	return dtos, nil
}

// Expiry serves the countdown display from the same expiry math the
// sweep uses.
func (s *service) Expiry(ctx context.Context, listingID uuid.UUID, now time.Time) (*ExpiryDTO, error) {
	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}

	dto := &ExpiryDTO{
		ListingID: listing.ID,
		Status:    string(listing.Status),
		ExpiresAt: listing.ExpiresAt,
	}
	if listing.Status == enums.ListingStatusActive && listing.ExpiresAt != nil {
		dto.RemainingSeconds = RemainingSeconds(*listing.ExpiresAt, now)
	}
	return dto, nil
}

// ApplyTransition evaluates and applies the lifecycle rule for a single
// listing. The cron sweep and both admin endpoints funnel through here.
func (s *service) ApplyTransition(ctx context.Context, listingID uuid.UUID, now time.Time) (*Transition, error) {
	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}

	transition := EvaluateTransition(listing, now)
	if transition == nil {
		return nil, nil
	}
	if err := s.apply(ctx, listing, transition, now); err != nil {
		return nil, err
	}
	return transition, nil
}

// apply executes one transition inside a transaction and emits the
// matching outbox event. Archive keeps the row; purge removes it along
// with its favorites.
func (s *service) apply(ctx context.Context, listing *models.Listing, transition *Transition, now time.Time) error {
	ctx = s.logg.WithListingID(ctx, listing.ID.String())

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		switch transition.Kind {
		case TransitionArchive:
			deleteAt := DeleteAt(now)
			listing.Status = enums.ListingStatusArchived
			listing.ExpirationReason = &transition.Reason
			listing.ArchivedAt = &now
			listing.DeleteAt = &deleteAt
			if _, err := txRepo.Save(ctx, listing); err != nil {
				return err
			}
			return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventListingArchived,
				AggregateType: enums.AggregateListing,
				AggregateID:   listing.ID,
				Version:       1,
				OccurredAt:    now,
				Data: payloads.ListingArchivedEvent{
					ListingID: listing.ID,
					SellerID:  listing.SellerID,
					Title:     listing.Title,
					Reason:    transition.Reason,
					ExpiredAt: now,
				},
			})
		case TransitionPurge:
			archivedAt := now
			if listing.ArchivedAt != nil {
				archivedAt = *listing.ArchivedAt
			}
			if err := txRepo.Delete(ctx, listing.ID); err != nil {
				return err
			}
			return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventListingPurged,
				AggregateType: enums.AggregateListing,
				AggregateID:   listing.ID,
				Version:       1,
				OccurredAt:    now,
				Data: payloads.ListingPurgedEvent{
					ListingID:  listing.ID,
					SellerID:   listing.SellerID,
					ArchivedAt: archivedAt,
					PurgedAt:   now,
				},
			})
		default:
			return pkgerrors.New(pkgerrors.CodeInternal, "unknown transition kind")
		}
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply listing transition")
	}

	s.logg.Info(s.logg.WithField(ctx, "transition", string(transition.Kind)), "listing transition applied")
	return nil
}

func (s *service) loadOwned(ctx context.Context, sellerID, listingID uuid.UUID) (*models.Listing, error) {
	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing does not belong to caller")
	}
	return listing, nil
}
