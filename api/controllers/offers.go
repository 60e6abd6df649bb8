package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/api/responses"
	"github.com/cardbinder/cardbinder-backend/api/validators"
	"github.com/cardbinder/cardbinder-backend/internal/offers"
	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
	"github.com/cardbinder/cardbinder-backend/pkg/types"
)

type createOfferPayload struct {
	ListingID            string         `json:"listingId" validate:"required"`
	AmountCents          int64          `json:"amountCents" validate:"required,gt=0"`
	Message              *string        `json:"message"`
	IsPickup             bool           `json:"isPickup"`
	RequiresShippingInfo bool           `json:"requiresShippingInfo"`
	ShippingAddress      *types.Address `json:"shippingAddress"`
	ExpiryHours          *int           `json:"expiryHours"`
}

type counterOfferPayload struct {
	AmountCents int64   `json:"amountCents" validate:"required,gt=0"`
	Message     *string `json:"message"`
	ExpiryHours *int    `json:"expiryHours"`
}

// offerDecision is the shared accept/decline/counter/cancel plumbing;
// each route differs only in the service call it dispatches.
type offerDecision func(svc offers.Service, r *http.Request, callerID, offerID uuid.UUID) (*offers.OfferDTO, error)

// OfferCreate places an offer on a listing.
func OfferCreate(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}

		buyerID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload createOfferPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		listingID, err := validators.ParsePathUUID(payload.ListingID, "listing id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Create(ctx, buyerID, offers.CreateOfferInput{
			ListingID:            listingID,
			AmountCents:          payload.AmountCents,
			Message:              payload.Message,
			IsPickup:             payload.IsPickup,
			RequiresShippingInfo: payload.RequiresShippingInfo,
			ShippingAddress:      payload.ShippingAddress,
			ExpiryHours:          payload.ExpiryHours,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// OfferList returns the caller's offer dashboard, both sides.
func OfferList(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}

		userID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := offers.ListOffersInput{UserID: userID}
		switch role := strings.TrimSpace(r.URL.Query().Get("role")); role {
		case "", "buyer", "seller":
			input.Role = role
		default:
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "role must be buyer or seller"))
			return
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("includeCleared")); raw != "" {
			value, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid includeCleared value"))
				return
			}
			input.IncludeCleared = value
		}

		rows, err := svc.List(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"offers": rows})
	}
}

// OfferDetail returns one offer visible to either party.
func OfferDetail(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}

		userID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		offerID, err := validators.ParsePathUUID(chi.URLParam(r, "offerID"), "offer id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Get(ctx, userID, offerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// OfferAccept is the seller accepting a pending offer, or the buyer
// accepting a counter.
func OfferAccept(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return decide(svc, logg, func(svc offers.Service, r *http.Request, caller, offerID uuid.UUID) (*offers.OfferDTO, error) {
		return svc.Accept(r.Context(), caller, offerID)
	})
}

// OfferDecline is the seller declining a pending offer, or the buyer
// declining a counter.
func OfferDecline(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return decide(svc, logg, func(svc offers.Service, r *http.Request, caller, offerID uuid.UUID) (*offers.OfferDTO, error) {
		return svc.Decline(r.Context(), caller, offerID)
	})
}

// OfferCancel is the buyer withdrawing their pending offer.
func OfferCancel(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return decide(svc, logg, func(svc offers.Service, r *http.Request, caller, offerID uuid.UUID) (*offers.OfferDTO, error) {
		return svc.Cancel(r.Context(), caller, offerID)
	})
}

// OfferCounter is the seller's counter proposal.
func OfferCounter(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}

		userID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		offerID, err := validators.ParsePathUUID(chi.URLParam(r, "offerID"), "offer id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload counterOfferPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Counter(ctx, userID, offerID, offers.CounterOfferInput{
			AmountCents: payload.AmountCents,
			Message:     payload.Message,
			ExpiryHours: payload.ExpiryHours,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// OfferClearExpired removes the caller's finished offers from the
// dashboard.
func OfferClearExpired(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}

		userID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.ClearExpired(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func decide(svc offers.Service, logg *logger.Logger, fn offerDecision) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}

		userID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		offerID, err := validators.ParsePathUUID(chi.URLParam(r, "offerID"), "offer id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := fn(svc, r, userID, offerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
