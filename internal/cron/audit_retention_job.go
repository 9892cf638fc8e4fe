package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/shoplens/shoplens-backend/pkg/logger"
)

const auditRetentionDays = 90

// AuditRetentionJobParams configure the audit trail purge.
type AuditRetentionJobParams struct {
	Logger    *logger.Logger
	Audit     auditPurger
	Retention int
}

type auditPurger interface {
	Purge(ctx context.Context, now time.Time, retentionDays int) (int64, error)
}

// NewAuditRetentionJob drops audit events older than the retention
// window.
func NewAuditRetentionJob(params AuditRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit service required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = auditRetentionDays
	}
	return &auditRetentionJob{
		logg:      params.Logger,
		purger:    params.Audit,
		retention: retention,
		now:       time.Now,
	}, nil
}

type auditRetentionJob struct {
	logg      *logger.Logger
	purger    auditPurger
	retention int
	now       func() time.Time
}

func (j *auditRetentionJob) Name() string { return "audit-retention" }

func (j *auditRetentionJob) Run(ctx context.Context) error {
	deleted, err := j.purger.Purge(ctx, j.now().UTC(), j.retention)
	if err != nil {
		return fmt.Errorf("audit retention: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "audit retention complete")
	return nil
}
