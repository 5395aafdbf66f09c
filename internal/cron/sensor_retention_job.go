package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/caec/caec-backend/pkg/logger"
	"github.com/caec/caec-backend/pkg/metrics"
	"gorm.io/gorm"
)

const (
	SensorRetentionJobName = "sensor-data-retention"

	defaultSensorRetentionDays = 90
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type sensorPruner interface {
	DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type SensorRetentionJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository sensorPruner
	Metrics    *metrics.CronJobMetrics
	// Retention is expressed in days.
	Retention int
}

func NewSensorRetentionJob(params SensorRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("sensor repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultSensorRetentionDays
	}
	return &sensorRetentionJob{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		metrics:   params.Metrics,
		retention: retention,
		now:       time.Now,
	}, nil
}

type sensorRetentionJob struct {
	logg      *logger.Logger
	db        txRunner
	repo      sensorPruner
	metrics   *metrics.CronJobMetrics
	retention int
	now       func() time.Time
}

func (j *sensorRetentionJob) Name() string { return SensorRetentionJobName }

func (j *sensorRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeleteOlderThan(ctx, tx, cutoff)
		if err != nil {
			return err
		}
		deleted = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("sensor retention: %w", err)
	}
	if j.metrics != nil {
		j.metrics.AddRowsDeleted(j.Name(), deleted)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "sensor retention complete")
	return nil
}
