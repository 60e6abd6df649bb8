package listings

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cardbinder/cardbinder-backend/pkg/config"
	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	"github.com/cardbinder/cardbinder-backend/pkg/enums"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
)

type fakeSweepSource struct {
	candidates []models.Listing
	overdue    []models.Listing
	counts     OverdueCounts
}

func (f *fakeSweepSource) FindSweepCandidates(_ context.Context, _ time.Time, batchSize int) ([]models.Listing, error) {
	if len(f.candidates) > batchSize {
		return f.candidates[:batchSize], nil
	}
	return f.candidates, nil
}

func (f *fakeSweepSource) FindOverdueArchived(_ context.Context, _ time.Time, _ time.Duration, limit int) ([]models.Listing, error) {
	if len(f.overdue) > limit {
		return f.overdue[:limit], nil
	}
	return f.overdue, nil
}

func (f *fakeSweepSource) CountOverdue(context.Context, time.Time, time.Duration) (*OverdueCounts, error) {
	counts := f.counts
	return &counts, nil
}

type fakeApplier struct {
	transitions map[uuid.UUID]*Transition
	errs        map[uuid.UUID]error
	applied     []uuid.UUID
}

func (f *fakeApplier) ApplyTransition(_ context.Context, listingID uuid.UUID, _ time.Time) (*Transition, error) {
	f.applied = append(f.applied, listingID)
	if err, ok := f.errs[listingID]; ok {
		return nil, err
	}
	return f.transitions[listingID], nil
}

func testCleanupService(t *testing.T, repo sweepSource, svc transitionApplier) *CleanupService {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "listings-test", Level: zerolog.ErrorLevel, Output: io.Discard})
	cleanup, err := NewCleanupService(repo, svc, logg, config.CleanupConfig{
		BatchSize:               500,
		EmergencyOverdueMinutes: 180,
		MaxDeletionsPerRun:      50,
	})
	if err != nil {
		t.Fatalf("NewCleanupService: %v", err)
	}
	return cleanup
}

func TestSweepCountsTransitionsAndSkipsFailures(t *testing.T) {
	archiveID := uuid.New()
	purgeID := uuid.New()
	failID := uuid.New()
	noopID := uuid.New()

	repo := &fakeSweepSource{candidates: []models.Listing{
		{ID: archiveID}, {ID: purgeID}, {ID: failID}, {ID: noopID},
	}}
	applier := &fakeApplier{
		transitions: map[uuid.UUID]*Transition{
			archiveID: {Kind: TransitionArchive, ListingID: archiveID.String(), Reason: enums.ExpirationReasonTierDurationExceeded},
			purgeID:   {Kind: TransitionPurge, ListingID: purgeID.String()},
		},
		errs: map[uuid.UUID]error{failID: errors.New("boom")},
	}
	svc := testCleanupService(t, repo, applier)

	report, err := svc.Sweep(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if report.Scanned != 4 {
		t.Fatalf("scanned = %d, want 4", report.Scanned)
	}
	if report.Archived != 1 {
		t.Fatalf("archived = %d, want 1", report.Archived)
	}
	if report.Deleted != 1 {
		t.Fatalf("deleted = %d, want 1", report.Deleted)
	}
	if report.Failed != 1 {
		t.Fatalf("failed = %d, want 1", report.Failed)
	}
	if len(applier.applied) != 4 {
		t.Fatalf("applied %d listings, want all 4 despite the failure", len(applier.applied))
	}
}

func TestSweepSecondRunIsIdempotent(t *testing.T) {
	id := uuid.New()
	repo := &fakeSweepSource{candidates: []models.Listing{{ID: id}}}
	applier := &fakeApplier{transitions: map[uuid.UUID]*Transition{
		id: {Kind: TransitionArchive, ListingID: id.String()},
	}}
	svc := testCleanupService(t, repo, applier)

	first, err := svc.Sweep(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if first.Archived != 1 {
		t.Fatalf("first sweep archived = %d, want 1", first.Archived)
	}

	// After archiving, the evaluator yields nil for the same row.
	applier.transitions = map[uuid.UUID]*Transition{}
	second, err := svc.Sweep(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if second.Archived != 0 || second.Deleted != 0 {
		t.Fatalf("second sweep changed rows: %+v", second)
	}
}

func TestBackupCleanupCapsDeletions(t *testing.T) {
	var overdue []models.Listing
	for i := 0; i < 5; i++ {
		deleteAt := time.Now().Add(-4 * time.Hour)
		overdue = append(overdue, models.Listing{ID: uuid.New(), DeleteAt: &deleteAt})
	}
	repo := &fakeSweepSource{overdue: overdue, counts: OverdueCounts{ArchivedCritical: 2}}
	applier := &fakeApplier{transitions: map[uuid.UUID]*Transition{}}
	for i := range overdue {
		applier.transitions[overdue[i].ID] = &Transition{Kind: TransitionPurge, ListingID: overdue[i].ID.String()}
	}
	svc := testCleanupService(t, repo, applier)

	report, err := svc.BackupCleanup(context.Background(), BackupCleanupInput{
		EmergencyOnly: true,
		Reason:        "cron worker down",
		MaxDeletions:  3,
	}, time.Now())
	if err != nil {
		t.Fatalf("BackupCleanup: %v", err)
	}
	if report.Deleted != 3 {
		t.Fatalf("deleted = %d, want 3", report.Deleted)
	}
	if len(report.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(report.Entries))
	}
	if len(report.Recommendations) == 0 {
		t.Fatal("expected recommendations for a capped emergency run")
	}
}

func TestTTLMonitorBucketsAndHealth(t *testing.T) {
	repo := &fakeSweepSource{counts: OverdueCounts{ActivePastExpiry: 7, ArchivedDue: 3, ArchivedCritical: 1}}
	svc := testCleanupService(t, repo, &fakeApplier{})

	now := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	report, err := svc.TTLMonitor(context.Background(), now)
	if err != nil {
		t.Fatalf("TTLMonitor: %v", err)
	}
	if report.ActivePastExpiry != 7 || report.ArchivedDue != 3 || report.ArchivedCritical != 1 {
		t.Fatalf("buckets = %+v", report)
	}
	if report.Healthy {
		t.Fatal("expected unhealthy report with critical backlog")
	}
	if !report.NextExpectedRun.After(report.LastExpectedRun) {
		t.Fatalf("schedule not ordered: last=%v next=%v", report.LastExpectedRun, report.NextExpectedRun)
	}
}
