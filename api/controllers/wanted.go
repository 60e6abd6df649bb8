package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cardbinder/cardbinder-backend/api/responses"
	"github.com/cardbinder/cardbinder-backend/api/validators"
	"github.com/cardbinder/cardbinder-backend/internal/wanted"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
	"github.com/cardbinder/cardbinder-backend/pkg/pagination"
)

type createWantedPayload struct {
	Game          string  `json:"game" validate:"required"`
	CardName      string  `json:"cardName" validate:"required,min=2,max=140"`
	SetName       *string `json:"setName"`
	MinCondition  *string `json:"minCondition"`
	MaxPriceCents *int64  `json:"maxPriceCents"`
	Notes         *string `json:"notes"`
}

type updateWantedPayload struct {
	CardName      *string `json:"cardName"`
	SetName       *string `json:"setName"`
	MinCondition  *string `json:"minCondition"`
	MaxPriceCents *int64  `json:"maxPriceCents"`
	Notes         *string `json:"notes"`
	Status        *string `json:"status"`
}

// WantedCreate opens a wanted post for the caller.
func WantedCreate(svc wanted.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wanted post service unavailable"))
			return
		}

		userID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload createWantedPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		game, err := enums.ParseGameCategory(payload.Game)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid game"))
			return
		}

		input := wanted.CreateWantedPostInput{
			Game:          game,
			CardName:      payload.CardName,
			SetName:       payload.SetName,
			MaxPriceCents: payload.MaxPriceCents,
			Notes:         payload.Notes,
		}
		if payload.MinCondition != nil {
			condition, err := enums.ParseCardCondition(*payload.MinCondition)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition"))
				return
			}
			input.MinCondition = &condition
		}

		dto, err := svc.Create(ctx, userID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// WantedUpdate applies a partial edit to the caller's post.
func WantedUpdate(svc wanted.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wanted post service unavailable"))
			return
		}

		userID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		postID, err := validators.ParsePathUUID(chi.URLParam(r, "postID"), "post id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateWantedPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := wanted.UpdateWantedPostInput{
			CardName:      payload.CardName,
			SetName:       payload.SetName,
			MaxPriceCents: payload.MaxPriceCents,
			Notes:         payload.Notes,
		}
		if payload.MinCondition != nil {
			condition, err := enums.ParseCardCondition(*payload.MinCondition)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition"))
				return
			}
			input.MinCondition = &condition
		}
		if payload.Status != nil {
			status, err := enums.ParseWantedPostStatus(*payload.Status)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}

		dto, err := svc.Update(ctx, userID, postID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// WantedDelete removes the caller's post.
func WantedDelete(svc wanted.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wanted post service unavailable"))
			return
		}

		userID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		postID, err := validators.ParsePathUUID(chi.URLParam(r, "postID"), "post id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, userID, postID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

// WantedMine returns the caller's posts in every status.
func WantedMine(svc wanted.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wanted post service unavailable"))
			return
		}

		userID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.ListMine(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"posts": rows})
	}
}

// PublicWantedList is the unauthenticated wanted board.
func PublicWantedList(svc wanted.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wanted post service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := wanted.ListPublicInput{
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
			input.Game = &game
		}

		result, err := svc.ListPublic(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
