package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/shoplens/shoplens-backend/internal/sessions"
	"github.com/shoplens/shoplens-backend/pkg/logger"
)

// SessionCleanupJobParams configure the session sweep.
type SessionCleanupJobParams struct {
	Logger   *logger.Logger
	Sessions sessionSweeper
}

type sessionSweeper interface {
	Sweep(ctx context.Context, now time.Time) (sessions.SweepResult, error)
}

// NewSessionCleanupJob retires expired or idle sessions and deletes
// rows past the retention window.
func NewSessionCleanupJob(params SessionCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("sessions service required")
	}
	return &sessionCleanupJob{
		logg:     params.Logger,
		sessions: params.Sessions,
		now:      time.Now,
	}, nil
}

type sessionCleanupJob struct {
	logg     *logger.Logger
	sessions sessionSweeper
	now      func() time.Time
}

func (j *sessionCleanupJob) Name() string { return "session-cleanup" }

func (j *sessionCleanupJob) Run(ctx context.Context) error {
	result, err := j.sessions.Sweep(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("session sweep: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"deactivated": result.Deactivated,
		"purged":      result.Purged,
	})
	j.logg.Info(logCtx, "session cleanup complete")
	return nil
}
