package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cardbinder/cardbinder-backend/api/responses"
	"github.com/cardbinder/cardbinder-backend/api/validators"
	"github.com/cardbinder/cardbinder-backend/internal/listings"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
	"github.com/cardbinder/cardbinder-backend/pkg/pagination"
)

// PublicListingList is the unauthenticated browse and search endpoint.
func PublicListingList(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := listings.ListInput{
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("game")); raw != "" {
			game, err := enums.ParseGameCategory(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid game"))
				return
			}
			input.Filters.Game = &game
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("condition")); raw != "" {
			condition, err := enums.ParseCardCondition(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition"))
				return
			}
			input.Filters.Condition = &condition
		}

		priceMin, err := validators.ParseQueryInt64(r, "priceMin")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input.Filters.PriceMinCents = priceMin

		priceMax, err := validators.ParseQueryInt64(r, "priceMax")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input.Filters.PriceMaxCents = priceMax

		if raw := strings.TrimSpace(r.URL.Query().Get("seller")); raw != "" {
			sellerID, err := validators.ParsePathUUID(raw, "seller")
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			input.Filters.SellerID = &sellerID
		}
		input.Filters.Query = strings.TrimSpace(r.URL.Query().Get("q"))

		result, err := svc.List(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PublicListingDetail returns a single listing and counts the view.
func PublicListingDetail(svc listings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "listing service unavailable"))
			return
		}

		listingID, err := validators.ParsePathUUID(chi.URLParam(r, "listingID"), "listing id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Get(ctx, listingID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
