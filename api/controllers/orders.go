package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/api/responses"
	"github.com/cardbinder/cardbinder-backend/api/validators"
	"github.com/cardbinder/cardbinder-backend/internal/orders"
	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
)

type createOrderPayload struct {
	OfferID    string `json:"offerId" validate:"required"`
	MarkAsSold bool   `json:"markAsSold"`
}

type shipOrderPayload struct {
	TrackingNumber string `json:"trackingNumber" validate:"required,min=4"`
}

type orderTransition func(svc orders.Service, r *http.Request, callerID, orderID uuid.UUID) (*orders.OrderDTO, error)

// OrderCreate materializes an order from an accepted offer.
func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		sellerID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload createOrderPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		offerID, err := validators.ParsePathUUID(payload.OfferID, "offer id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.CreateFromOffer(ctx, sellerID, orders.CreateOrderInput{
			OfferID:    offerID,
			MarkAsSold: payload.MarkAsSold,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// OrderList returns the caller's order history.
func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := orders.ListOrdersInput{UserID: userID}
		switch role := strings.TrimSpace(r.URL.Query().Get("role")); role {
		case "", "buyer", "seller":
			input.Role = role
		default:
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "role must be buyer or seller"))
			return
		}

		rows, err := svc.List(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"orders": rows})
	}
}

// OrderDetail returns one order visible to either party.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "order id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Get(ctx, userID, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// OrderMarkPaid records buyer payment.
func OrderMarkPaid(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, func(svc orders.Service, r *http.Request, caller, orderID uuid.UUID) (*orders.OrderDTO, error) {
		return svc.MarkPaid(r.Context(), caller, orderID)
	})
}

// OrderComplete closes out a delivered order.
func OrderComplete(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, func(svc orders.Service, r *http.Request, caller, orderID uuid.UUID) (*orders.OrderDTO, error) {
		return svc.Complete(r.Context(), caller, orderID)
	})
}

// OrderCancel aborts an order that has not shipped.
func OrderCancel(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return transition(svc, logg, func(svc orders.Service, r *http.Request, caller, orderID uuid.UUID) (*orders.OrderDTO, error) {
		return svc.Cancel(r.Context(), caller, orderID)
	})
}

// OrderMarkShipped records the tracking number and flips the order to
// shipped.
func OrderMarkShipped(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "order id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload shipOrderPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.MarkShipped(ctx, userID, orderID, orders.ShipOrderInput{
			TrackingNumber: payload.TrackingNumber,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func transition(svc orders.Service, logg *logger.Logger, fn orderTransition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "order id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := fn(svc, r, userID, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
