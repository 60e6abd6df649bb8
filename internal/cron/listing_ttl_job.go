package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/cardbinder/cardbinder-backend/internal/listings"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
	"github.com/cardbinder/cardbinder-backend/pkg/metrics"
)

type listingSweeper interface {
	Sweep(ctx context.Context, now time.Time) (*listings.SweepReport, error)
}

// ListingTTLJobParams configure the listing lifecycle sweep.
type ListingTTLJobParams struct {
	Logger  *logger.Logger
	Sweeper listingSweeper
	Metrics *metrics.CronJobMetrics
}

// NewListingTTLJob builds the job that archives expired listings and
// purges archived ones past their retention window.
func NewListingTTLJob(params ListingTTLJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("listing sweeper required")
	}
	return &listingTTLJob{
		logg:    params.Logger,
		sweeper: params.Sweeper,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

type listingTTLJob struct {
	logg    *logger.Logger
	sweeper listingSweeper
	metrics *metrics.CronJobMetrics
	now     func() time.Time
}

func (j *listingTTLJob) Name() string { return "listing-ttl" }

func (j *listingTTLJob) Run(ctx context.Context) error {
	report, err := j.sweeper.Sweep(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("listing sweep: %w", err)
	}

	if j.metrics != nil {
		j.metrics.AddSwept(j.Name(), report.Archived+report.Deleted)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"scanned":  report.Scanned,
		"archived": report.Archived,
		"deleted":  report.Deleted,
		"failed":   report.Failed,
	})
	j.logg.Info(logCtx, "listing sweep complete")
	if report.Failed > 0 {
		return fmt.Errorf("listing sweep had %d failed transitions", report.Failed)
	}
	return nil
}
