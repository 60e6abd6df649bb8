package offers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardbinder/cardbinder-backend/pkg/config"
	dbpkg "github.com/cardbinder/cardbinder-backend/pkg/db"
	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
	"github.com/cardbinder/cardbinder-backend/pkg/outbox"
	"github.com/cardbinder/cardbinder-backend/pkg/outbox/payloads"
	"github.com/cardbinder/cardbinder-backend/pkg/types"
)

const pendingOfferConstraint = "uq_offers_one_pending"

type listingLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ServiceParams groups dependencies for the offer service.
type ServiceParams struct {
	Repo        *Repository
	ListingRepo listingLoader
	UserRepo    userLoader
	DBClient    *dbpkg.Client
	Outbox      *outbox.Service
	Logger      *logger.Logger
	Offers      config.OffersConfig
}

// Service exposes the offer lifecycle.
type Service interface {
	Create(ctx context.Context, buyerID uuid.UUID, input CreateOfferInput) (*OfferDTO, error)
	Get(ctx context.Context, callerID, offerID uuid.UUID) (*OfferDTO, error)
	List(ctx context.Context, input ListOffersInput) ([]OfferDTO, error)
	Accept(ctx context.Context, callerID, offerID uuid.UUID) (*OfferDTO, error)
	Decline(ctx context.Context, callerID, offerID uuid.UUID) (*OfferDTO, error)
	Counter(ctx context.Context, callerID, offerID uuid.UUID, input CounterOfferInput) (*OfferDTO, error)
	Cancel(ctx context.Context, callerID, offerID uuid.UUID) (*OfferDTO, error)
	ClearExpired(ctx context.Context, userID uuid.UUID) (*ClearExpiredResult, error)
	ExpireBatch(ctx context.Context, now time.Time, batchSize int) (int, error)
}

type service struct {
	repo        *Repository
	listingRepo listingLoader
	userRepo    userLoader
	dbClient    *dbpkg.Client
	outbox      *outbox.Service
	logg        *logger.Logger
	cfg         config.OffersConfig
}

// NewService builds an offer service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer repo is required")
	}
	if params.ListingRepo == nil {
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
		repo:        params.Repo,
		listingRepo: params.ListingRepo,
		userRepo:    params.UserRepo,
		dbClient:    params.DBClient,
		outbox:      params.Outbox,
		logg:        params.Logger,
		cfg:         params.Offers,
	}, nil
}

// Create validates the buyer's proposal against the listing as stored,
// never against client-submitted numbers, and inserts it. The partial
// unique index turns a concurrent duplicate into a conflict instead of
// a second pending offer.
func (s *service) Create(ctx context.Context, buyerID uuid.UUID, input CreateOfferInput) (*OfferDTO, error) {
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer amount must be positive")
	}
	if input.AmountCents > s.absoluteCeiling() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer amount exceeds the marketplace ceiling")
	}

	listing, err := s.listingRepo.FindByID(ctx, input.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing.Status != enums.ListingStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "listing is not accepting offers")
	}
	if listing.SellerID == buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot make an offer on your own listing")
	}

	// A listing priced at zero is offers-only, so the multiple cap has
	// no reference price to apply against.
	multiple := s.priceMultipleCap()
	if listing.PriceCents > 0 && input.AmountCents > multiple*listing.PriceCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("offer amount is unreasonably high: limit is %dx the listing price", multiple))
	}

	buyer, err := s.userRepo.FindByID(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer")
	}

	expiryHours, err := s.resolveExpiryHours(buyer.Tier, input.ExpiryHours)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	offer := &models.Offer{
		ListingID:            listing.ID,
		BuyerID:              buyerID,
		SellerID:             listing.SellerID,
		AmountCents:          input.AmountCents,
		Message:              input.Message,
		Status:               enums.OfferStatusPending,
		ListingSnapshot:      snapshotOf(listing),
		IsPickup:             input.IsPickup,
		RequiresShippingInfo: input.RequiresShippingInfo,
		ShippingAddress:      input.ShippingAddress,
		ExpiresAt:            now.Add(time.Duration(expiryHours) * time.Hour),
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Create(ctx, offer); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOfferCreated,
			AggregateType: enums.AggregateOffer,
			AggregateID:   offer.ID,
			Actor:         &outbox.ActorRef{UserID: buyerID, Role: string(enums.RoleUser)},
			Version:       1,
			OccurredAt:    now,
			Data: payloads.OfferCreatedEvent{
				OfferID:     offer.ID,
				ListingID:   offer.ListingID,
				BuyerID:     offer.BuyerID,
				SellerID:    offer.SellerID,
				AmountCents: offer.AmountCents,
				ExpiresAt:   offer.ExpiresAt,
			},
		})
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, pendingOfferConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "you already have a pending offer on this listing")
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create offer")
	}
	return NewOfferDTO(offer), nil
}

// Get returns the offer to either party.
func (s *service) Get(ctx context.Context, callerID, offerID uuid.UUID) (*OfferDTO, error) {
	offer, err := s.load(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.BuyerID != callerID && offer.SellerID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "offer does not involve caller")
	}
	return NewOfferDTO(offer), nil
}

// List returns the caller's dashboard rows.
func (s *service) List(ctx context.Context, input ListOffersInput) ([]OfferDTO, error) {
	rows, err := s.repo.ListForUser(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offers")
	}
	dtos := make([]OfferDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewOfferDTO(&rows[i]))
	}
	return dtos, nil
}

// Accept marks the offer accepted. On a buyer proposal only the seller
// may accept; on a counter row only the buyer may.
func (s *service) Accept(ctx context.Context, callerID, offerID uuid.UUID) (*OfferDTO, error) {
	return s.decide(ctx, callerID, offerID, enums.OfferStatusAccepted, enums.EventOfferAccepted)
}

// Decline marks the offer declined by its responder.
func (s *service) Decline(ctx context.Context, callerID, offerID uuid.UUID) (*OfferDTO, error) {
	return s.decide(ctx, callerID, offerID, enums.OfferStatusDeclined, enums.EventOfferDeclined)
}

// Cancel withdraws the proposal. Only the party that made it may cancel.
func (s *service) Cancel(ctx context.Context, callerID, offerID uuid.UUID) (*OfferDTO, error) {
	offer, err := s.load(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if proposerOf(offer) != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the proposer may cancel an offer")
	}
	if offer.Status != enums.OfferStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offer is no longer pending")
	}

	now := time.Now().UTC()
	offer.Status = enums.OfferStatusCancelled
	offer.RespondedAt = &now
	if err := s.persistDecision(ctx, offer, enums.EventOfferCancelled, nil, now, callerID); err != nil {
		return nil, err
	}
	return NewOfferDTO(offer), nil
}

// Counter lets the seller answer a buyer proposal with a new amount.
// The original row flips to countered and stays linked to the new
// pending row, so the negotiation chain is one query away.
func (s *service) Counter(ctx context.Context, callerID, offerID uuid.UUID, input CounterOfferInput) (*OfferDTO, error) {
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counter amount must be positive")
	}
	if input.AmountCents > s.absoluteCeiling() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "counter amount exceeds the marketplace ceiling")
	}

	offer, err := s.load(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.SellerID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the seller may counter an offer")
	}
	if offer.ParentOfferID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "counter offers cannot be countered again")
	}
	if offer.Status != enums.OfferStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offer is no longer pending")
	}

	seller, err := s.userRepo.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	expiryHours, err := s.resolveExpiryHours(seller.Tier, input.ExpiryHours)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	counter := &models.Offer{
		ID:                   uuid.New(),
		ListingID:            offer.ListingID,
		BuyerID:              offer.BuyerID,
		SellerID:             offer.SellerID,
		AmountCents:          input.AmountCents,
		Message:              input.Message,
		Status:               enums.OfferStatusPending,
		ParentOfferID:        &offer.ID,
		ListingSnapshot:      offer.ListingSnapshot,
		IsPickup:             offer.IsPickup,
		RequiresShippingInfo: offer.RequiresShippingInfo,
		ShippingAddress:      offer.ShippingAddress,
		ExpiresAt:            now.Add(time.Duration(expiryHours) * time.Hour),
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		// The parent flips out of pending before the counter row goes in.
		// uq_offers_one_pending is checked at insert time, so the reverse
		// order would trip it on every counter.
		offer.Status = enums.OfferStatusCountered
		offer.CounteredBy = &counter.ID
		offer.RespondedAt = &now
		if _, err := txRepo.Save(ctx, offer); err != nil {
			return err
		}
		if _, err := txRepo.Create(ctx, counter); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOfferCountered,
			AggregateType: enums.AggregateOffer,
			AggregateID:   offer.ID,
			Actor:         &outbox.ActorRef{UserID: callerID, Role: string(enums.RoleUser)},
			Version:       1,
			OccurredAt:    now,
			Data: payloads.OfferDecisionEvent{
				OfferID:        offer.ID,
				ListingID:      offer.ListingID,
				BuyerID:        offer.BuyerID,
				SellerID:       offer.SellerID,
				AmountCents:    counter.AmountCents,
				Status:         enums.OfferStatusCountered,
				CounterOfferID: &counter.ID,
				DecidedAt:      now,
			},
		})
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, pendingOfferConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a pending offer already exists for this buyer and listing")
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "counter offer")
	}
	return NewOfferDTO(counter), nil
}

// ClearExpired deletes the caller's expired and declined offers on both
// sides of the table.
func (s *service) ClearExpired(ctx context.Context, userID uuid.UUID) (*ClearExpiredResult, error) {
	deleted, err := s.repo.DeleteExpiredAndDeclinedFor(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear expired offers")
	}
	return &ClearExpiredResult{Deleted: deleted}, nil
}

// ExpireBatch flips pending offers past their expiry and emits the
// matching events. Called by the cron sweep; a per-row failure is
// logged and skipped.
func (s *service) ExpireBatch(ctx context.Context, now time.Time, batchSize int) (int, error) {
	rows, err := s.repo.FindExpiredPending(ctx, now, batchSize)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load expired offers")
	}

	expired := 0
	for i := range rows {
		offer := rows[i]
		offer.Status = enums.OfferStatusExpired
		offer.RespondedAt = &now
		if err := s.persistDecision(ctx, &offer, enums.EventOfferExpired, nil, now, uuid.Nil); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "offer_id", offer.ID.String()), "expire offer failed", err)
			continue
		}
		expired++
	}
	return expired, nil
}

func (s *service) decide(ctx context.Context, callerID, offerID uuid.UUID, status enums.OfferStatus, eventType enums.OutboxEventType) (*OfferDTO, error) {
	offer, err := s.load(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if responderOf(offer) != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "caller may not respond to this offer")
	}
	if offer.Status != enums.OfferStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offer is no longer pending")
	}
	now := time.Now().UTC()
	if now.After(offer.ExpiresAt) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offer has expired")
	}

	offer.Status = status
	offer.RespondedAt = &now
	if err := s.persistDecision(ctx, offer, eventType, nil, now, callerID); err != nil {
		return nil, err
	}
	return NewOfferDTO(offer), nil
}

func (s *service) persistDecision(ctx context.Context, offer *models.Offer, eventType enums.OutboxEventType, counterID *uuid.UUID, now time.Time, actorID uuid.UUID) error {
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Save(ctx, offer); err != nil {
			return err
		}
		event := outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateOffer,
			AggregateID:   offer.ID,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.OfferDecisionEvent{
				OfferID:        offer.ID,
				ListingID:      offer.ListingID,
				BuyerID:        offer.BuyerID,
				SellerID:       offer.SellerID,
				AmountCents:    offer.AmountCents,
				Status:         offer.Status,
				CounterOfferID: counterID,
				DecidedAt:      now,
			},
		}
		if actorID != uuid.Nil {
			event.Actor = &outbox.ActorRef{UserID: actorID, Role: string(enums.RoleUser)}
		}
		// The sweep can revisit a row it already flipped if a later batch
		// fails midway, so event emission has to be re-run safe.
		return s.outbox.EmitIfNotExists(ctx, tx, event)
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist offer decision")
	}
	return nil
}

func (s *service) load(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	offer, err := s.repo.FindByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	return offer, nil
}

func (s *service) absoluteCeiling() int64 {
	if s.cfg.AbsoluteCeilingCents > 0 {
		return s.cfg.AbsoluteCeilingCents
	}
	return 5_000_000
}

func (s *service) priceMultipleCap() int64 {
	if s.cfg.PriceMultipleCap > 0 {
		return s.cfg.PriceMultipleCap
	}
	return 2
}

// resolveExpiryHours picks the offer window. Premium accounts may choose
// from the configured set; everyone else gets the default.
func (s *service) resolveExpiryHours(tier enums.AccountTier, requested *int) (int, error) {
	defaultHours := s.cfg.DefaultExpiryHrs
	if defaultHours <= 0 {
		defaultHours = 24
	}
	if requested == nil || *requested == defaultHours {
		return defaultHours, nil
	}
	if tier != enums.AccountTierPremium {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "custom offer expiry requires a premium account")
	}
	for _, allowed := range s.cfg.PremiumExpiryHrs {
		if *requested == allowed {
			return *requested, nil
		}
	}
	return 0, pkgerrors.New(pkgerrors.CodeValidation, "unsupported offer expiry window")
}

// proposerOf returns who made the row's proposal: the buyer for an
// original offer, the seller for a counter.
func proposerOf(offer *models.Offer) uuid.UUID {
	if offer.ParentOfferID != nil {
		return offer.SellerID
	}
	return offer.BuyerID
}

// responderOf is the other side of proposerOf.
func responderOf(offer *models.Offer) uuid.UUID {
	if offer.ParentOfferID != nil {
		return offer.BuyerID
	}
	return offer.SellerID
}

func snapshotOf(listing *models.Listing) *types.ListingSnapshot {
	snapshot := &types.ListingSnapshot{
		ListingID:  listing.ID,
		SellerID:   listing.SellerID,
		Title:      listing.Title,
		Game:       listing.Game,
		SetName:    listing.SetName,
		CardNumber: listing.CardNumber,
		Condition:  listing.Condition,
		PriceCents: listing.PriceCents,
	}
	if len(listing.Images) > 0 {
		image := listing.Images[0]
		snapshot.ImageURL = &image
	}
	return snapshot
}
