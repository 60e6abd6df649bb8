package cron

import (
	"context"
	"fmt"

	"github.com/cardbinder/cardbinder-backend/pkg/logger"
)

type wantedMigrator interface {
	Run(ctx context.Context) (int, error)
}

// WantedMigrationJobParams configure the legacy wanted post backfill.
type WantedMigrationJobParams struct {
	Logger   *logger.Logger
	Migrator wantedMigrator
}

// NewWantedMigrationJob builds the job that drains the legacy wanted
// post staging table. Once the table is empty every run is a no-op.
func NewWantedMigrationJob(params WantedMigrationJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Migrator == nil {
		return nil, fmt.Errorf("wanted migrator required")
	}
	return &wantedMigrationJob{
		logg:     params.Logger,
		migrator: params.Migrator,
	}, nil
}

type wantedMigrationJob struct {
	logg     *logger.Logger
	migrator wantedMigrator
}

func (j *wantedMigrationJob) Name() string { return "wanted-post-migration" }

func (j *wantedMigrationJob) Run(ctx context.Context) error {
	migrated, err := j.migrator.Run(ctx)
	if err != nil {
		return fmt.Errorf("wanted post migration: %w", err)
	}
	if migrated > 0 {
		j.logg.Info(j.logg.WithField(ctx, "migrated", migrated), "legacy wanted posts migrated")
	}
	return nil
}
