package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/api/responses"
	"github.com/cardbinder/cardbinder-backend/api/validators"
	"github.com/cardbinder/cardbinder-backend/internal/messages"
	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
	"github.com/cardbinder/cardbinder-backend/pkg/pagination"
)

type sendMessagePayload struct {
	RecipientID string  `json:"recipientId" validate:"required"`
	ListingID   *string `json:"listingId"`
	Body        string  `json:"body" validate:"required"`
}

// MessageSend delivers a message into the sender/recipient thread.
func MessageSend(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "message service unavailable"))
			return
		}

		senderID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload sendMessagePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		recipientID, err := validators.ParsePathUUID(payload.RecipientID, "recipient id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := messages.SendMessageInput{
			RecipientID: recipientID,
			Body:        payload.Body,
		}
		if payload.ListingID != nil {
			listingID, err := validators.ParsePathUUID(*payload.ListingID, "listing id")
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			input.ListingID = &listingID
		}

		dto, err := svc.Send(ctx, senderID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// MessageThreads returns the caller's inbox, newest thread first.
func MessageThreads(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "message service unavailable"))
			return
		}

		userID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		threads, err := svc.ListThreads(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		unread, err := svc.CountUnread(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"threads": threads, "unread_count": unread})
	}
}

// MessageThread pages through one conversation.
func MessageThread(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "message service unavailable"))
			return
		}

		userID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		threadKey, err := parseThreadKey(chi.URLParam(r, "threadKey"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := svc.ListThread(ctx, userID, threadKey, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// MessageThreadRead marks the conversation read for the caller.
func MessageThreadRead(svc messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "message service unavailable"))
			return
		}

		userID, err := callerID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		threadKey, err := parseThreadKey(chi.URLParam(r, "threadKey"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		updated, err := svc.MarkThreadRead(ctx, userID, threadKey)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"marked_read": updated})
	}
}

// parseThreadKey sanity-checks the uid:uid:anchor path segment. Full
// participant enforcement happens in the repository query.
func parseThreadKey(raw string) (string, error) {
	key := strings.TrimSpace(raw)
	if key == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "thread key is required")
	}
	parts := strings.Split(key, ":")
	if len(parts) != 3 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "malformed thread key")
	}
	for _, part := range parts[:2] {
		if _, err := uuid.Parse(part); err != nil {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "malformed thread key")
		}
	}
	return key, nil
}
