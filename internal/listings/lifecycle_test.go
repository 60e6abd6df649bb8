package listings

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
)

func TestExpiresAtPerTier(t *testing.T) {
	activated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if got := ExpiresAt(activated, enums.AccountTierFree); !got.Equal(activated.Add(48 * time.Hour)) {
		t.Fatalf("free expiry = %v, want %v", got, activated.Add(48*time.Hour))
	}
	if got := ExpiresAt(activated, enums.AccountTierPremium); !got.Equal(activated.Add(720 * time.Hour)) {
		t.Fatalf("premium expiry = %v, want %v", got, activated.Add(720*time.Hour))
	}
}

func TestRemainingSecondsClampsAtZero(t *testing.T) {
	expires := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)

	if got := RemainingSeconds(expires, expires.Add(-90*time.Second)); got != 90 {
		t.Fatalf("remaining = %d, want 90", got)
	}
	if got := RemainingSeconds(expires, expires); got != 0 {
		t.Fatalf("remaining at expiry = %d, want 0", got)
	}
	if got := RemainingSeconds(expires, expires.Add(time.Hour)); got != 0 {
		t.Fatalf("remaining past expiry = %d, want 0", got)
	}
}

func TestDeleteAtIsSevenDays(t *testing.T) {
	archived := time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)
	if got := DeleteAt(archived); !got.Equal(archived.Add(7 * 24 * time.Hour)) {
		t.Fatalf("delete at = %v, want %v", got, archived.Add(7*24*time.Hour))
	}
}

func activeListing(activatedAt time.Time, tier enums.AccountTier) *models.Listing {
	expires := ExpiresAt(activatedAt, tier)
	return &models.Listing{
		ID:             uuid.New(),
		SellerID:       uuid.New(),
		Status:         enums.ListingStatusActive,
		SellerTier:     tier,
		ActivatedAt:    activatedAt,
		ExpiresAt:      &expires,
		LastActivityAt: activatedAt,
	}
}

func TestEvaluateTransitionFreeTierBoundary(t *testing.T) {
	activated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	listing := activeListing(activated, enums.AccountTierFree)

	if got := EvaluateTransition(listing, activated.Add(48*time.Hour-time.Minute)); got != nil {
		t.Fatalf("transition at T+47h59m = %+v, want nil", got)
	}

	got := EvaluateTransition(listing, activated.Add(48*time.Hour+time.Minute))
	if got == nil {
		t.Fatal("transition at T+48h1m = nil, want archive")
	}
	if got.Kind != TransitionArchive {
		t.Fatalf("transition kind = %s, want archive", got.Kind)
	}
	if got.Reason != enums.ExpirationReasonTierDurationExceeded {
		t.Fatalf("reason = %s, want tier_duration_exceeded", got.Reason)
	}
}

func TestEvaluateTransitionComputesMissingExpiry(t *testing.T) {
	activated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	listing := activeListing(activated, enums.AccountTierPremium)
	listing.ExpiresAt = nil

	if got := EvaluateTransition(listing, activated.Add(719*time.Hour)); got != nil {
		t.Fatalf("premium transition before 720h = %+v, want nil", got)
	}
	if got := EvaluateTransition(listing, activated.Add(721*time.Hour)); got == nil || got.Kind != TransitionArchive {
		t.Fatalf("premium transition after 720h = %+v, want archive", got)
	}
}

func TestEvaluateTransitionInactiveTimeout(t *testing.T) {
	lastActivity := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	listing := &models.Listing{
		ID:             uuid.New(),
		Status:         enums.ListingStatusInactive,
		LastActivityAt: lastActivity,
	}

	if got := EvaluateTransition(listing, lastActivity.Add(7*24*time.Hour-time.Minute)); got != nil {
		t.Fatalf("transition before inactivity window = %+v, want nil", got)
	}

	got := EvaluateTransition(listing, lastActivity.Add(7*24*time.Hour))
	if got == nil || got.Kind != TransitionArchive {
		t.Fatalf("transition at inactivity window = %+v, want archive", got)
	}
	if got.Reason != enums.ExpirationReasonInactiveTimeout {
		t.Fatalf("reason = %s, want inactive_timeout", got.Reason)
	}
}

func TestEvaluateTransitionLegacyExpiredStatus(t *testing.T) {
	listing := &models.Listing{ID: uuid.New(), Status: enums.ListingStatusExpired}
	got := EvaluateTransition(listing, time.Now())
	if got == nil || got.Kind != TransitionArchive {
		t.Fatalf("transition for expired status = %+v, want archive", got)
	}
}

func TestEvaluateTransitionPurgeBoundary(t *testing.T) {
	archivedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	deleteAt := DeleteAt(archivedAt)
	listing := &models.Listing{
		ID:         uuid.New(),
		Status:     enums.ListingStatusArchived,
		ArchivedAt: &archivedAt,
		DeleteAt:   &deleteAt,
	}

	if got := EvaluateTransition(listing, deleteAt); got != nil {
		t.Fatalf("transition at delete_at = %+v, want nil", got)
	}
	got := EvaluateTransition(listing, deleteAt.Add(time.Second))
	if got == nil || got.Kind != TransitionPurge {
		t.Fatalf("transition past delete_at = %+v, want purge", got)
	}
}

func TestEvaluateTransitionPurgeFallsBackToArchivedAt(t *testing.T) {
	archivedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	listing := &models.Listing{
		ID:         uuid.New(),
		Status:     enums.ListingStatusArchived,
		ArchivedAt: &archivedAt,
	}

	if got := EvaluateTransition(listing, archivedAt.Add(6*24*time.Hour)); got != nil {
		t.Fatalf("transition inside retention = %+v, want nil", got)
	}
	if got := EvaluateTransition(listing, archivedAt.Add(8*24*time.Hour)); got == nil || got.Kind != TransitionPurge {
		t.Fatalf("transition past retention = %+v, want purge", got)
	}
}

func TestEvaluateTransitionTerminalStatesStay(t *testing.T) {
	now := time.Now()
	for _, status := range []enums.ListingStatus{enums.ListingStatusSold} {
		listing := &models.Listing{ID: uuid.New(), Status: status}
		if got := EvaluateTransition(listing, now); got != nil {
			t.Fatalf("transition for %s = %+v, want nil", status, got)
		}
	}

	// An archived listing inside its retention window is also left alone,
	// which is what makes back-to-back sweeps idempotent.
	archivedAt := now.Add(-time.Hour)
	deleteAt := DeleteAt(archivedAt)
	listing := &models.Listing{ID: uuid.New(), Status: enums.ListingStatusArchived, ArchivedAt: &archivedAt, DeleteAt: &deleteAt}
	if got := EvaluateTransition(listing, now); got != nil {
		t.Fatalf("transition for fresh archive = %+v, want nil", got)
	}
}

func TestSweepScheduleEveryTwoHoursAtFifteen(t *testing.T) {
	now := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	last, next := sweepSchedule(now)
	if want := time.Date(2026, 3, 1, 12, 15, 0, 0, time.UTC); !last.Equal(want) {
		t.Fatalf("last run = %v, want %v", last, want)
	}
	if want := time.Date(2026, 3, 1, 14, 15, 0, 0, time.UTC); !next.Equal(want) {
		t.Fatalf("next run = %v, want %v", next, want)
	}

	// Before :15 the current slot has not fired yet.
	now = time.Date(2026, 3, 1, 12, 10, 0, 0, time.UTC)
	last, next = sweepSchedule(now)
	if want := time.Date(2026, 3, 1, 10, 15, 0, 0, time.UTC); !last.Equal(want) {
		t.Fatalf("last run before :15 = %v, want %v", last, want)
	}
	if want := time.Date(2026, 3, 1, 12, 15, 0, 0, time.UTC); !next.Equal(want) {
		t.Fatalf("next run before :15 = %v, want %v", next, want)
	}
}
