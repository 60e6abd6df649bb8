package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cardbinder/cardbinder-backend/internal/listings"
	"github.com/cardbinder/cardbinder-backend/pkg/logger"
)

type fakeSweeper struct {
	report *listings.SweepReport
	err    error
	lastAt time.Time
	called int
}

func (f *fakeSweeper) Sweep(_ context.Context, now time.Time) (*listings.SweepReport, error) {
	f.called++
	f.lastAt = now
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func newListingTTLJob(t *testing.T, sweeper *fakeSweeper) *listingTTLJob {
	t.Helper()
	jobIface, err := NewListingTTLJob(ListingTTLJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Sweeper: sweeper,
	})
	if err != nil {
		t.Fatalf("NewListingTTLJob: %v", err)
	}
	job, ok := jobIface.(*listingTTLJob)
	if !ok {
		t.Fatalf("expected listingTTLJob, got %T", jobIface)
	}
	return job
}

func TestListingTTLJobRunsSweep(t *testing.T) {
	now := time.Date(2026, 2, 1, 14, 15, 0, 0, time.UTC)
	sweeper := &fakeSweeper{report: &listings.SweepReport{Scanned: 10, Archived: 6, Deleted: 3}}
	job := newListingTTLJob(t, sweeper)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sweeper.called != 1 {
		t.Fatalf("expected one sweep, got %d", sweeper.called)
	}
	if !sweeper.lastAt.Equal(now) {
		t.Fatalf("expected sweep at %s, got %s", now, sweeper.lastAt)
	}
}

func TestListingTTLJobReportsFailedTransitions(t *testing.T) {
	sweeper := &fakeSweeper{report: &listings.SweepReport{Scanned: 5, Archived: 4, Failed: 1}}
	job := newListingTTLJob(t, sweeper)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error when transitions fail")
	}
}

func TestListingTTLJobPropagatesErrors(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("db down")}
	job := newListingTTLJob(t, sweeper)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
