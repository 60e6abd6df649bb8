package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cardbinder/cardbinder-backend/pkg/logger"
)

type fakeExpirer struct {
	batches []int
	err     error
	calls   int
}

func (f *fakeExpirer) ExpireBatch(_ context.Context, _ time.Time, _ int) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.calls >= len(f.batches) {
		return 0, nil
	}
	expired := f.batches[f.calls]
	f.calls++
	return expired, nil
}

func newOfferTTLJob(t *testing.T, expirer *fakeExpirer, batchSize int) *offerTTLJob {
	t.Helper()
	jobIface, err := NewOfferTTLJob(OfferTTLJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Expirer:   expirer,
		BatchSize: batchSize,
	})
	if err != nil {
		t.Fatalf("NewOfferTTLJob: %v", err)
	}
	job, ok := jobIface.(*offerTTLJob)
	if !ok {
		t.Fatalf("expected offerTTLJob, got %T", jobIface)
	}
	return job
}

func TestOfferTTLJobDrainsFullBatches(t *testing.T) {
	expirer := &fakeExpirer{batches: []int{3, 3, 1}}
	job := newOfferTTLJob(t, expirer, 3)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if expirer.calls != 3 {
		t.Fatalf("expected 3 batches, got %d", expirer.calls)
	}
}

func TestOfferTTLJobStopsOnShortBatch(t *testing.T) {
	expirer := &fakeExpirer{batches: []int{2}}
	job := newOfferTTLJob(t, expirer, 5)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if expirer.calls != 1 {
		t.Fatalf("expected a single batch, got %d", expirer.calls)
	}
}

func TestOfferTTLJobPropagatesErrors(t *testing.T) {
	expirer := &fakeExpirer{err: errors.New("boom")}
	job := newOfferTTLJob(t, expirer, 5)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
