package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/cardbinder/cardbinder-backend/api/responses"
	"github.com/cardbinder/cardbinder-backend/api/validators"
	"github.com/cardbinder/cardbinder-backend/internal/listings"
	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
)

type adminCleanupPayload struct {
	ListingID *string `json:"listingId"`
}

type backupCleanupPayload struct {
	EmergencyOnly bool   `json:"emergencyOnly"`
	Reason        string `json:"reason"`
	MaxDeletions  int    `json:"maxDeletions"`
}

// AdminCleanup runs the consolidated lifecycle sweep on demand, for one
// listing when listingId is supplied or the full batch otherwise.
func AdminCleanup(svc *listings.CleanupService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cleanup service unavailable"))
			return
		}

		var payload adminCleanupPayload
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}

		now := time.Now().UTC()
		if payload.ListingID != nil && strings.TrimSpace(*payload.ListingID) != "" {
			listingID, err := validators.ParsePathUUID(*payload.ListingID, "listing id")
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			report, err := svc.SweepOne(ctx, listingID, now)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			responses.WriteSuccess(w, report)
			return
		}

		report, err := svc.Sweep(ctx, now)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// AdminBackupCleanup is the operator compensating sweep for archived
// rows the cron never purged.
func AdminBackupCleanup(svc *listings.CleanupService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cleanup service unavailable"))
			return
		}

		var payload backupCleanupPayload
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}
		if payload.MaxDeletions < 0 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "maxDeletions must not be negative"))
			return
		}

		report, err := svc.BackupCleanup(ctx, listings.BackupCleanupInput{
			EmergencyOnly: payload.EmergencyOnly,
			Reason:        strings.TrimSpace(payload.Reason),
			MaxDeletions:  payload.MaxDeletions,
		}, time.Now().UTC())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

// AdminTTLMonitor reports lifecycle debt buckets and the cron schedule
// prediction.
func AdminTTLMonitor(svc *listings.CleanupService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cleanup service unavailable"))
			return
		}

		report, err := svc.TTLMonitor(ctx, time.Now().UTC())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
