package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/cardbinder/cardbinder-backend/pkg/logger"
	"github.com/cardbinder/cardbinder-backend/pkg/metrics"
)

const offerExpiryBatchSize = 200

type offerExpirer interface {
	ExpireBatch(ctx context.Context, now time.Time, batchSize int) (int, error)
}

// OfferTTLJobParams configure the offer expiry sweep.
type OfferTTLJobParams struct {
	Logger    *logger.Logger
	Expirer   offerExpirer
	Metrics   *metrics.CronJobMetrics
	BatchSize int
}

// NewOfferTTLJob builds the job that expires pending offers past their
// response deadline.
func NewOfferTTLJob(params OfferTTLJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Expirer == nil {
		return nil, fmt.Errorf("offer expirer required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = offerExpiryBatchSize
	}
	return &offerTTLJob{
		logg:      params.Logger,
		expirer:   params.Expirer,
		metrics:   params.Metrics,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type offerTTLJob struct {
	logg      *logger.Logger
	expirer   offerExpirer
	metrics   *metrics.CronJobMetrics
	batchSize int
	now       func() time.Time
}

func (j *offerTTLJob) Name() string { return "offer-ttl" }

func (j *offerTTLJob) Run(ctx context.Context) error {
	total := 0
	for {
		expired, err := j.expirer.ExpireBatch(ctx, j.now().UTC(), j.batchSize)
		if err != nil {
			return fmt.Errorf("offer expiry batch: %w", err)
		}
		total += expired
		if expired < j.batchSize {
			break
		}
	}

	if j.metrics != nil {
		j.metrics.AddSwept(j.Name(), total)
	}
	j.logg.Info(j.logg.WithField(ctx, "expired", total), "offer expiry sweep complete")
	return nil
}
