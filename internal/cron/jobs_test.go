package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shoplens/shoplens-backend/internal/sessions"
)

type fakeSweeper struct {
	result sessions.SweepResult
	err    error
	calls  int
}

func (f *fakeSweeper) Sweep(_ context.Context, _ time.Time) (sessions.SweepResult, error) {
	f.calls++
	return f.result, f.err
}

type fakePurger struct {
	deleted   int64
	err       error
	retention int
}

func (f *fakePurger) PurgeDeleted(_ context.Context, _ time.Time, retentionDays int) (int64, error) {
	f.retention = retentionDays
	return f.deleted, f.err
}

func (f *fakePurger) Purge(_ context.Context, _ time.Time, retentionDays int) (int64, error) {
	f.retention = retentionDays
	return f.deleted, f.err
}

func TestSessionCleanupJob(t *testing.T) {
	sweeper := &fakeSweeper{result: sessions.SweepResult{Deactivated: 2, Purged: 1}}
	job, err := NewSessionCleanupJob(SessionCleanupJobParams{
		Logger:   testLogger(),
		Sessions: sweeper,
	})
	if err != nil {
		t.Fatalf("NewSessionCleanupJob: %v", err)
	}
	if job.Name() != "session-cleanup" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sweeper.calls != 1 {
		t.Fatalf("expected one sweep, got %d", sweeper.calls)
	}
}

func TestSessionCleanupJobError(t *testing.T) {
	job, _ := NewSessionCleanupJob(SessionCleanupJobParams{
		Logger:   testLogger(),
		Sessions: &fakeSweeper{err: errors.New("db down")},
	})
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error to surface")
	}
}

func TestNotificationCleanupJobDefaultsRetention(t *testing.T) {
	purger := &fakePurger{deleted: 3}
	job, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:        testLogger(),
		Notifications: purger,
	})
	if err != nil {
		t.Fatalf("NewNotificationCleanupJob: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if purger.retention != notificationRetentionDays {
		t.Fatalf("expected default retention %d, got %d", notificationRetentionDays, purger.retention)
	}
}

func TestAuditRetentionJob(t *testing.T) {
	purger := &fakePurger{deleted: 10}
	job, err := NewAuditRetentionJob(AuditRetentionJobParams{
		Logger:    testLogger(),
		Audit:     purger,
		Retention: 45,
	})
	if err != nil {
		t.Fatalf("NewAuditRetentionJob: %v", err)
	}
	if job.Name() != "audit-retention" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if purger.retention != 45 {
		t.Fatalf("expected retention 45, got %d", purger.retention)
	}
}

func TestJobConstructorsValidate(t *testing.T) {
	if _, err := NewSessionCleanupJob(SessionCleanupJobParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected error without sessions service")
	}
	if _, err := NewNotificationCleanupJob(NotificationCleanupJobParams{Logger: testLogger()}); err == nil {
		t.Fatal("expected error without notifications service")
	}
	if _, err := NewAuditRetentionJob(AuditRetentionJobParams{Audit: &fakePurger{}}); err == nil {
		t.Fatal("expected error without logger")
	}
}
