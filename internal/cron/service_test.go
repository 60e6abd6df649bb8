package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cardbinder/cardbinder-backend/pkg/logger"
)

type fakeLock struct {
	allow    bool
	acquired int
	released int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	f.acquired++
	return f.allow, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.released++
	return nil
}

type countingJob struct {
	name string
	runs int
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.runs++
	return nil
}

func newCronService(t *testing.T, lock *fakeLock, jobs ...Job) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Registry: NewRegistry(jobs...),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRunOnceExecutesJobsUnderLock(t *testing.T) {
	lock := &fakeLock{allow: true}
	first := &countingJob{name: "first"}
	second := &countingJob{name: "second"}
	svc := newCronService(t, lock, first, second)

	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if first.runs != 1 || second.runs != 1 {
		t.Fatalf("expected each job to run once, got %d and %d", first.runs, second.runs)
	}
	if lock.acquired != 1 || lock.released != 1 {
		t.Fatalf("expected lock acquire and release, got %d and %d", lock.acquired, lock.released)
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	lock := &fakeLock{allow: false}
	job := &countingJob{name: "skipped"}
	svc := newCronService(t, lock, job)

	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected the job to be skipped, ran %d times", job.runs)
	}
	if lock.released != 0 {
		t.Fatalf("expected no release without acquire")
	}
}

type failingJob struct {
	name string
}

func (j *failingJob) Name() string { return j.name }

func (j *failingJob) Run(context.Context) error {
	return errors.New("boom")
}

func TestRunOnceCollectsFailuresAndKeepsGoing(t *testing.T) {
	lock := &fakeLock{allow: true}
	bad := &failingJob{name: "bad"}
	good := &countingJob{name: "good"}
	svc := newCronService(t, lock, bad, good)

	err := svc.RunOnce(context.Background())
	if err == nil {
		t.Fatalf("expected aggregated error from failing job")
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Fatalf("error should name the failing job: %v", err)
	}
	if good.runs != 1 {
		t.Fatalf("later job should still run, ran %d times", good.runs)
	}
}

func TestUntilNextAnchorLandsOnOffset(t *testing.T) {
	interval := 2 * time.Hour

	now := time.Date(2026, 2, 1, 13, 0, 0, 0, time.UTC)
	wait := untilNextAnchor(now, interval)
	if next := now.Add(wait); !next.Equal(time.Date(2026, 2, 1, 14, 15, 0, 0, time.UTC)) {
		t.Fatalf("unexpected next run %s", next)
	}

	now = time.Date(2026, 2, 1, 12, 10, 0, 0, time.UTC)
	wait = untilNextAnchor(now, interval)
	if next := now.Add(wait); !next.Equal(time.Date(2026, 2, 1, 12, 15, 0, 0, time.UTC)) {
		t.Fatalf("unexpected next run %s", next)
	}

	now = time.Date(2026, 2, 1, 12, 15, 0, 0, time.UTC)
	wait = untilNextAnchor(now, interval)
	if next := now.Add(wait); !next.Equal(time.Date(2026, 2, 1, 14, 15, 0, 0, time.UTC)) {
		t.Fatalf("unexpected next run %s", next)
	}
}
