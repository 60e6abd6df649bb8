package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardbinder/cardbinder-backend/api/responses"
	"github.com/cardbinder/cardbinder-backend/api/validators"
	"github.com/cardbinder/cardbinder-backend/internal/account"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
	"github.com/cardbinder/cardbinder-backend/pkg/types"
)

type updateAccountPayload struct {
	DisplayName *string `json:"displayName"`
}

type setTierPayload struct {
	Tier      string          `json:"tier" validate:"required"`
	ExpiresAt *types.FlexTime `json:"expiresAt"`
}

// AccountGet returns the caller's profile including tier.
func AccountGet(svc account.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "account service unavailable"))
			return
		}

		userID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.Get(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// AccountUpdate edits the caller-editable profile fields. Tier changes
// are rejected here; those go through the admin endpoint.
func AccountUpdate(svc account.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "account service unavailable"))
			return
		}

		userID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateAccountPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.UpdateProfile(ctx, userID, account.UpdateProfileInput{
			DisplayName: payload.DisplayName,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// AdminSetTier assigns the account tier for any user.
func AdminSetTier(svc account.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "account service unavailable"))
			return
		}

		userID, err := validators.ParsePathUUID(chi.URLParam(r, "userID"), "user id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload setTierPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		tier, err := enums.ParseAccountTier(payload.Tier)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tier"))
			return
		}

		input := account.SetTierInput{Tier: tier}
		if payload.ExpiresAt != nil {
			at := payload.ExpiresAt.Time.UTC()
			input.ExpiresAt = &at
		}

		dto, err := svc.SetTier(ctx, userID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}
