package listings

import (
	"time"

	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
)

const (
	freeTierDuration    = 48 * time.Hour
	premiumTierDuration = 720 * time.Hour

	// How long an inactive listing may sit untouched before it is archived,
	// and how long an archived listing is retained before the purge.
	inactivityWindow = 7 * 24 * time.Hour
	purgeRetention   = 7 * 24 * time.Hour
)

// TierDuration returns how long a listing stays live for the given tier.
func TierDuration(tier enums.AccountTier) time.Duration {
	if tier == enums.AccountTierPremium {
		return premiumTierDuration
	}
	return freeTierDuration
}

// ExpiresAt computes the expiry instant for a listing activated at the
// given time under the given tier.
func ExpiresAt(activatedAt time.Time, tier enums.AccountTier) time.Time {
	return activatedAt.Add(TierDuration(tier))
}

// RemainingSeconds returns whole seconds until expiry, clamped at zero.
func RemainingSeconds(expiresAt, now time.Time) int64 {
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int64(remaining / time.Second)
}

// DeleteAt computes the purge deadline for a listing archived at the
// given time.
func DeleteAt(archivedAt time.Time) time.Time {
	return archivedAt.Add(purgeRetention)
}

// TransitionKind names the two state changes the sweep can apply.
type TransitionKind string

const (
	TransitionArchive TransitionKind = "archive"
	TransitionPurge   TransitionKind = "purge"
)

// Transition is a pending lifecycle change for one listing.
type Transition struct {
	Kind      TransitionKind
	ListingID string
	Reason    enums.ExpirationReason
}

// EvaluateTransition decides what, if anything, should happen to the
// listing at the given instant. It is the only place the archive and
// purge rules live; the cron sweep, the admin endpoints, and the expiry
// read path all call it. A nil result means the listing is left alone,
// which is what makes repeated sweeps idempotent.
func EvaluateTransition(listing *models.Listing, now time.Time) *Transition {
	switch listing.Status {
	case enums.ListingStatusActive:
		expiresAt := listing.ExpiresAt
		if expiresAt == nil {
			computed := ExpiresAt(listing.ActivatedAt, listing.SellerTier)
			expiresAt = &computed
		}
		if now.After(*expiresAt) {
			return &Transition{
				Kind:      TransitionArchive,
				ListingID: listing.ID.String(),
				Reason:    enums.ExpirationReasonTierDurationExceeded,
			}
		}
	case enums.ListingStatusInactive:
		if now.Sub(listing.LastActivityAt) >= inactivityWindow {
			return &Transition{
				Kind:      TransitionArchive,
				ListingID: listing.ID.String(),
				Reason:    enums.ExpirationReasonInactiveTimeout,
			}
		}
	case enums.ListingStatusExpired:
		// Legacy status still present in migrated rows; archive on sight.
		return &Transition{
			Kind:      TransitionArchive,
			ListingID: listing.ID.String(),
			Reason:    enums.ExpirationReasonTierDurationExceeded,
		}
	case enums.ListingStatusArchived:
		deadline := listing.DeleteAt
		if deadline == nil && listing.ArchivedAt != nil {
			computed := DeleteAt(*listing.ArchivedAt)
			deadline = &computed
		}
		if deadline != nil && now.After(*deadline) {
			return &Transition{
				Kind:      TransitionPurge,
				ListingID: listing.ID.String(),
			}
		}
	}
	return nil
}
