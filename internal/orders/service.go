package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardbinder/cardbinder-backend/internal/listings"
	"github.com/cardbinder/cardbinder-backend/internal/offers"
	dbpkg "github.com/cardbinder/cardbinder-backend/pkg/db"
	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
	"github.com/cardbinder/cardbinder-backend/pkg/outbox"
	"github.com/cardbinder/cardbinder-backend/pkg/outbox/payloads"
)

const orderPerOfferConstraint = "uq_orders_offer_id"

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type payoutChecker interface {
	AccountPayoutsEnabled(ctx context.Context, accountID string) (bool, error)
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	Repo        *Repository
	OfferRepo   *offers.Repository
	ListingRepo *listings.Repository
	UserRepo    userLoader
	Stripe      payoutChecker
	DBClient    *dbpkg.Client
	Outbox      *outbox.Service
	Logger      *logger.Logger
}

// Service materializes orders from accepted offers and walks them
// through fulfillment.
type Service interface {
	CreateFromOffer(ctx context.Context, sellerID uuid.UUID, input CreateOrderInput) (*OrderDTO, error)
	Get(ctx context.Context, callerID, orderID uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, input ListOrdersInput) ([]OrderDTO, error)
	MarkPaid(ctx context.Context, callerID, orderID uuid.UUID) (*OrderDTO, error)
	MarkShipped(ctx context.Context, callerID, orderID uuid.UUID, input ShipOrderInput) (*OrderDTO, error)
	Complete(ctx context.Context, callerID, orderID uuid.UUID) (*OrderDTO, error)
	Cancel(ctx context.Context, callerID, orderID uuid.UUID) (*OrderDTO, error)
}

type service struct {
	repo        *Repository
	offerRepo   *offers.Repository
	listingRepo *listings.Repository
	userRepo    userLoader
	stripe      payoutChecker
	dbClient    *dbpkg.Client
	outbox      *outbox.Service
	logg        *logger.Logger
}

// NewService builds an order service with the required dependencies.
// Stripe is optional; without it every order is treated as lacking a
// payout account.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	if params.OfferRepo == nil {
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
		offerRepo:   params.OfferRepo,
		listingRepo: params.ListingRepo,
		userRepo:    params.UserRepo,
		stripe:      params.Stripe,
		dbClient:    params.DBClient,
		outbox:      params.Outbox,
		logg:        params.Logger,
	}, nil
}

// CreateFromOffer turns an accepted offer into an order in one
// transaction: insert the order, mark the offer cleared, optionally mark
// the listing sold, and emit the order event. The unique offer_id index
// makes the second concurrent call fail with a conflict instead of a
// duplicate order.
func (s *service) CreateFromOffer(ctx context.Context, sellerID uuid.UUID, input CreateOrderInput) (*OrderDTO, error) {
	offer, err := s.offerRepo.FindByID(ctx, input.OfferID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	if offer.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the seller may create an order from an offer")
	}
	if offer.Status != enums.OfferStatusAccepted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offer has not been accepted")
	}

	order := buildOrder(offer, s.sellerHasPayouts(ctx, sellerID))

	now := time.Now().UTC()
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}

		txOffers := s.offerRepo.WithTx(tx)
		offer.Cleared = true
		if _, err := txOffers.Save(ctx, offer); err != nil {
			return err
		}

		if input.MarkAsSold {
			if err := s.markListingSold(ctx, tx, order, now); err != nil {
				return err
			}
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: sellerID, Role: string(enums.RoleUser)},
			Version:       1,
			OccurredAt:    now,
			Data: payloads.OrderCreatedEvent{
				OrderID:           order.ID,
				OfferID:           order.OfferID,
				ListingID:         order.ListingID,
				BuyerID:           order.BuyerID,
				SellerID:          order.SellerID,
				AmountCents:       order.AmountCents,
				FulfillmentMethod: order.FulfillmentMethod,
			},
		})
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, orderPerOfferConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an order already exists for this offer")
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return NewOrderDTO(order), nil
}

// Get returns the order to either party.
func (s *service) Get(ctx context.Context, callerID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadInvolved(ctx, callerID, orderID)
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

// List returns the caller's order history.
func (s *service) List(ctx context.Context, input ListOrdersInput) ([]OrderDTO, error) {
	rows, err := s.repo.ListForUser(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewOrderDTO(&rows[i]))
	}
	return dtos, nil
}

// MarkPaid is the buyer confirming payment.
func (s *service) MarkPaid(ctx context.Context, callerID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadInvolved(ctx, callerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer may mark an order paid")
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment")
	}

	now := time.Now().UTC()
	order.Status = enums.OrderStatusPaid
	order.PaidAt = &now
	return s.save(ctx, order)
}

// MarkShipped is the seller recording the handoff with a tracking number.
func (s *service) MarkShipped(ctx context.Context, callerID, orderID uuid.UUID, input ShipOrderInput) (*OrderDTO, error) {
	order, err := s.loadInvolved(ctx, callerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the seller may mark an order shipped")
	}
	if order.FulfillmentMethod != enums.FulfillmentShipping {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "pickup orders are not shipped")
	}
	if order.Status != enums.OrderStatusPending && order.Status != enums.OrderStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be shipped from its current status")
	}

	tracking := strings.TrimSpace(input.TrackingNumber)
	now := time.Now().UTC()
	order.Status = enums.OrderStatusShipped
	order.ShippedAt = &now
	if tracking != "" {
		order.TrackingNumber = &tracking
	}
	return s.save(ctx, order)
}

// Complete is the buyer confirming receipt.
func (s *service) Complete(ctx context.Context, callerID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadInvolved(ctx, callerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the buyer may complete an order")
	}

	allowed := order.Status == enums.OrderStatusShipped ||
		(order.FulfillmentMethod == enums.FulfillmentPickup && order.Status != enums.OrderStatusCancelled && order.Status != enums.OrderStatusCompleted)
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be completed from its current status")
	}

	now := time.Now().UTC()
	order.Status = enums.OrderStatusCompleted
	order.CompletedAt = &now
	return s.save(ctx, order)
}

// Cancel voids an order that has not shipped. Either party may cancel.
func (s *service) Cancel(ctx context.Context, callerID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadInvolved(ctx, callerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPending && order.Status != enums.OrderStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled")
	}

	now := time.Now().UTC()
	order.Status = enums.OrderStatusCancelled
	order.CancelledAt = &now
	return s.save(ctx, order)
}

// markListingSold flips the listing inside the order transaction and
// emits the sold event.
func (s *service) markListingSold(ctx context.Context, tx *gorm.DB, order *models.Order, now time.Time) error {
	txListings := s.listingRepo.WithTx(tx)
	listing, err := txListings.FindByID(ctx, order.ListingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The listing may already be purged; the order still stands on
			// its snapshot.
			return nil
		}
		return err
	}

	listing.Status = enums.ListingStatusSold
	listing.SoldAt = &now
	listing.SoldTo = &order.BuyerID
	if _, err := txListings.Save(ctx, listing); err != nil {
		return err
	}

	return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventListingSold,
		AggregateType: enums.AggregateListing,
		AggregateID:   listing.ID,
		Version:       1,
		OccurredAt:    now,
		Data: payloads.ListingSoldEvent{
			ListingID: listing.ID,
			SellerID:  listing.SellerID,
			OrderID:   order.ID,
			SoldAt:    now,
		},
	})
}

// sellerHasPayouts asks Stripe whether the seller can be paid out. A
// lookup failure degrades to false rather than blocking the order.
func (s *service) sellerHasPayouts(ctx context.Context, sellerID uuid.UUID) bool {
	if s.stripe == nil {
		return false
	}
	seller, err := s.userRepo.FindByID(ctx, sellerID)
	if err != nil || seller.StripeAccountID == nil {
		return false
	}
	enabled, err := s.stripe.AccountPayoutsEnabled(ctx, *seller.StripeAccountID)
	if err != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, sellerID.String()), "stripe payout lookup failed")
		return false
	}
	return enabled
}

func (s *service) save(ctx context.Context, order *models.Order) (*OrderDTO, error) {
	if _, err := s.repo.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order")
	}
	return NewOrderDTO(order), nil
}

// buildOrder shapes the order row from the accepted offer. The amount
// is the accepted offer amount, not the listing price; pickup orders
// need no payment and carry no shipping address. A shipping order
// without a stored address is left pending until the buyer supplies one.
func buildOrder(offer *models.Offer, sellerHasPayouts bool) *models.Order {
	fulfillment := enums.FulfillmentShipping
	paymentRequired := true
	address := offer.ShippingAddress
	if offer.IsPickup {
		fulfillment = enums.FulfillmentPickup
		paymentRequired = false
		address = nil
	}
	return &models.Order{
		OfferID:                &offer.ID,
		ListingID:              offer.ListingID,
		BuyerID:                offer.BuyerID,
		SellerID:               offer.SellerID,
		AmountCents:            offer.AmountCents,
		Status:                 enums.OrderStatusPending,
		FulfillmentMethod:      fulfillment,
		ShippingAddress:        address,
		ListingSnapshot:        offer.ListingSnapshot,
		SellerHasStripeAccount: sellerHasPayouts,
		PaymentRequired:        paymentRequired,
	}
}

func (s *service) loadInvolved(ctx context.Context, callerID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.BuyerID != callerID && order.SellerID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not involve caller")
	}
	return order, nil
}
