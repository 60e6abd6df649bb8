package listings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cardbinder/cardbinder-backend/pkg/config"
	"github.com/cardbinder/cardbinder-backend/pkg/db/models"
	pkgerrors "github.com/cardbinder/cardbinder-backend/pkg/errors"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
)

// SweepReport summarizes one lifecycle sweep run.
type SweepReport struct {
	Scanned  int `json:"scanned"`
	Archived int `json:"archived"`
	Deleted  int `json:"deleted"`
	Failed   int `json:"failed"`
}

// BackupCleanupInput tunes the operator-triggered compensating sweep.
type BackupCleanupInput struct {
	EmergencyOnly bool
	Reason        string
	MaxDeletions  int
}

// BackupCleanupEntry reports one purged listing.
type BackupCleanupEntry struct {
	ListingID string     `json:"listing_id"`
	DeleteAt  *time.Time `json:"delete_at,omitempty"`
	OverdueBy string     `json:"overdue_by,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// BackupCleanupReport is the response for the manual compensating sweep.
type BackupCleanupReport struct {
	Reason          string               `json:"reason,omitempty"`
	EmergencyOnly   bool                 `json:"emergency_only"`
	Deleted         int                  `json:"deleted"`
	Failed          int                  `json:"failed"`
	Entries         []BackupCleanupEntry `json:"entries"`
	Recommendations []string             `json:"recommendations"`
}

// TTLMonitorReport buckets lifecycle debt and predicts the sweep schedule.
type TTLMonitorReport struct {
	ActivePastExpiry int64     `json:"active_past_expiry"`
	ArchivedDue      int64     `json:"archived_due"`
	ArchivedCritical int64     `json:"archived_critical"`
	Healthy          bool      `json:"healthy"`
	LastExpectedRun  time.Time `json:"last_expected_run"`
	NextExpectedRun  time.Time `json:"next_expected_run"`
}

type sweepSource interface {
	FindSweepCandidates(ctx context.Context, now time.Time, batchSize int) ([]models.Listing, error)
	FindOverdueArchived(ctx context.Context, now time.Time, overdueBy time.Duration, limit int) ([]models.Listing, error)
	CountOverdue(ctx context.Context, now time.Time, emergency time.Duration) (*OverdueCounts, error)
}

type transitionApplier interface {
	ApplyTransition(ctx context.Context, listingID uuid.UUID, now time.Time) (*Transition, error)
}

// CleanupService is the batch side of the listing lifecycle: the cron
// sweep, the operator backup sweep, and the TTL monitor all run on the
// same evaluator as the per-listing path.
type CleanupService struct {
	repo    sweepSource
	svc     transitionApplier
	logg    *logger.Logger
	cleanup config.CleanupConfig
}

// NewCleanupService wires the batch lifecycle entry points.
func NewCleanupService(repo sweepSource, svc transitionApplier, logg *logger.Logger, cleanup config.CleanupConfig) (*CleanupService, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing repo is required")
	}
	if svc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing service is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &CleanupService{repo: repo, svc: svc, logg: logg, cleanup: cleanup}, nil
}

// Sweep processes one batch of lifecycle candidates. A per-listing
// failure is logged and skipped; it never aborts the batch. Running the
// sweep twice back to back archives and deletes nothing the second time.
func (c *CleanupService) Sweep(ctx context.Context, now time.Time) (*SweepReport, error) {
	batchSize := c.cleanup.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}

	candidates, err := c.repo.FindSweepCandidates(ctx, now, batchSize)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sweep candidates")
	}

	report := &SweepReport{Scanned: len(candidates)}
	for i := range candidates {
		transition, err := c.svc.ApplyTransition(ctx, candidates[i].ID, now)
		if err != nil {
			report.Failed++
			c.logg.Error(c.logg.WithListingID(ctx, candidates[i].ID.String()), "sweep transition failed", err)
			continue
		}
		if transition == nil {
			continue
		}
		switch transition.Kind {
		case TransitionArchive:
			report.Archived++
		case TransitionPurge:
			report.Deleted++
		}
	}
	return report, nil
}

// SweepOne applies the lifecycle rule to a single listing, for the
// per-listing admin trigger.
func (c *CleanupService) SweepOne(ctx context.Context, listingID uuid.UUID, now time.Time) (*SweepReport, error) {
	report := &SweepReport{Scanned: 1}
	transition, err := c.svc.ApplyTransition(ctx, listingID, now)
	if err != nil {
		return nil, err
	}
	switch {
	case transition == nil:
	case transition.Kind == TransitionArchive:
		report.Archived++
	case transition.Kind == TransitionPurge:
		report.Deleted++
	}
	return report, nil
}

// BackupCleanup is the operator's compensating action for a sweep that
// is believed to have failed. It only purges archived listings that are
// already past their deadline, most overdue first, capped to bound the
// blast radius.
func (c *CleanupService) BackupCleanup(ctx context.Context, input BackupCleanupInput, now time.Time) (*BackupCleanupReport, error) {
	maxDeletions := input.MaxDeletions
	if maxDeletions <= 0 || maxDeletions > c.cleanup.MaxDeletionsPerRun {
		maxDeletions = c.cleanup.MaxDeletionsPerRun
	}
	if maxDeletions <= 0 {
		maxDeletions = 50
	}

	overdueBy := time.Duration(0)
	if input.EmergencyOnly {
		overdueBy = time.Duration(c.cleanup.EmergencyOverdueMinutes) * time.Minute
	}

	rows, err := c.repo.FindOverdueArchived(ctx, now, overdueBy, maxDeletions)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load overdue listings")
	}

	report := &BackupCleanupReport{
		Reason:        input.Reason,
		EmergencyOnly: input.EmergencyOnly,
		Entries:       make([]BackupCleanupEntry, 0, len(rows)),
	}
	for i := range rows {
		entry := BackupCleanupEntry{ListingID: rows[i].ID.String(), DeleteAt: rows[i].DeleteAt}
		if rows[i].DeleteAt != nil {
			entry.OverdueBy = now.Sub(*rows[i].DeleteAt).Round(time.Minute).String()
		}
		if _, err := c.svc.ApplyTransition(ctx, rows[i].ID, now); err != nil {
			entry.Error = err.Error()
			report.Failed++
		} else {
			report.Deleted++
		}
		report.Entries = append(report.Entries, entry)
	}

	report.Recommendations = c.recommendations(ctx, now, len(rows), maxDeletions)
	return report, nil
}

// TTLMonitor reports lifecycle debt plus the expected sweep schedule,
// assuming the worker runs every two hours at fifteen past.
func (c *CleanupService) TTLMonitor(ctx context.Context, now time.Time) (*TTLMonitorReport, error) {
	emergency := time.Duration(c.cleanup.EmergencyOverdueMinutes) * time.Minute
	counts, err := c.repo.CountOverdue(ctx, now, emergency)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count overdue listings")
	}

	last, next := sweepSchedule(now)
	return &TTLMonitorReport{
		ActivePastExpiry: counts.ActivePastExpiry,
		ArchivedDue:      counts.ArchivedDue,
		ArchivedCritical: counts.ArchivedCritical,
		Healthy:          counts.ArchivedCritical == 0,
		LastExpectedRun:  last,
		NextExpectedRun:  next,
	}, nil
}

func (c *CleanupService) recommendations(ctx context.Context, now time.Time, purged, cap int) []string {
	var recs []string
	if purged == cap {
		recs = append(recs, fmt.Sprintf("deletion cap of %d reached; re-run to drain the remaining backlog", cap))
	}
	emergency := time.Duration(c.cleanup.EmergencyOverdueMinutes) * time.Minute
	counts, err := c.repo.CountOverdue(ctx, now, emergency)
	if err != nil {
		c.logg.Warn(ctx, "overdue recount for recommendations failed")
		return recs
	}
	if counts.ArchivedCritical > 0 {
		recs = append(recs, fmt.Sprintf("%d archived listings remain overdue by more than %d minutes; check the cron worker", counts.ArchivedCritical, c.cleanup.EmergencyOverdueMinutes))
	}
	if counts.ActivePastExpiry > 0 {
		recs = append(recs, fmt.Sprintf("%d active listings are past expiry and waiting on the next sweep", counts.ActivePastExpiry))
	}
	if len(recs) == 0 {
		recs = append(recs, "no lifecycle backlog detected")
	}
	return recs
}

// sweepSchedule returns the previous and next expected sweep instants
// for the every-two-hours-at-:15 schedule.
func sweepSchedule(now time.Time) (last, next time.Time) {
	now = now.UTC()
	anchor := time.Date(now.Year(), now.Month(), now.Day(), now.Hour()-now.Hour()%2, 15, 0, 0, time.UTC)
	if anchor.After(now) {
		anchor = anchor.Add(-2 * time.Hour)
	}
	return anchor, anchor.Add(2 * time.Hour)
}
