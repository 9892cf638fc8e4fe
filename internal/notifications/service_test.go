package notifications

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplens/shoplens-backend/pkg/db/models"
	"github.com/shoplens/shoplens-backend/pkg/enums"
	pkgerrors "github.com/shoplens/shoplens-backend/pkg/errors"
	"github.com/shoplens/shoplens-backend/pkg/pagination"
)

type fakeRepo struct {
	rows []*models.Notification
}

func (f *fakeRepo) WithTx(_ *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(_ context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	copied := *n
	f.rows = append(f.rows, &copied)
	return nil
}

func (f *fakeRepo) visibleTo(shopID, sessionID uuid.UUID, n *models.Notification) bool {
	if n.ShopID != shopID || n.Deleted {
		return false
	}
	return n.SessionID == nil || *n.SessionID == sessionID
}

func (f *fakeRepo) List(_ context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	var out []models.Notification
	for _, n := range f.rows {
		if !f.visibleTo(params.ShopID, params.SessionID, n) {
			continue
		}
		if params.UnreadOnly && n.ReadAt != nil {
			continue
		}
		if params.Category != "" && n.Category != params.Category {
			continue
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() > out[j].ID.String()
	})
	normalized := pagination.NormalizeLimit(params.Limit)
	if len(out) > normalized {
		next := out[normalized]
		return out[:normalized], &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return out, nil, nil
}

func (f *fakeRepo) UnreadCount(_ context.Context, shopID, sessionID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range f.rows {
		if f.visibleTo(shopID, sessionID, n) && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) MarkRead(_ context.Context, shopID, sessionID, notificationID uuid.UUID, now time.Time) (markResult, error) {
	for _, n := range f.rows {
		if n.ID != notificationID || !f.visibleTo(shopID, sessionID, n) {
			continue
		}
		if n.ReadAt != nil {
			return markResult{Found: true}, nil
		}
		at := now
		n.ReadAt = &at
		return markResult{Found: true, Updated: true}, nil
	}
	return markResult{}, nil
}

func (f *fakeRepo) MarkAllRead(_ context.Context, shopID, sessionID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	for _, n := range f.rows {
		if f.visibleTo(shopID, sessionID, n) && n.ReadAt == nil {
			at := now
			n.ReadAt = &at
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) SoftDelete(_ context.Context, shopID, sessionID, notificationID uuid.UUID, now time.Time) (markResult, error) {
	for _, n := range f.rows {
		if n.ID == notificationID && f.visibleTo(shopID, sessionID, n) {
			n.Deleted = true
			at := now
			n.DeletedAt = &at
			return markResult{Found: true, Updated: true}, nil
		}
	}
	return markResult{}, nil
}

func (f *fakeRepo) PurgeDeletedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var kept []*models.Notification
	var count int64
	for _, n := range f.rows {
		aged := !n.CreatedAt.After(cutoff)
		softDeleted := n.Deleted && n.DeletedAt != nil && !n.DeletedAt.After(cutoff)
		if aged || softDeleted {
			count++
			continue
		}
		kept = append(kept, n)
	}
	f.rows = kept
	return count, nil
}

func newTestService(t *testing.T) (Service, *fakeRepo) {
	t.Helper()
	repo := &fakeRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo
}

func seed(t *testing.T, svc Service, shopID uuid.UUID, sessionID *uuid.UUID, title string) *models.Notification {
	t.Helper()
	n, err := svc.Create(context.Background(), CreateParams{
		ShopID:    shopID,
		SessionID: sessionID,
		Title:     title,
		Message:   "body",
		Type:      enums.NotificationTypeSystemAnnouncement,
	})
	if err != nil {
		t.Fatalf("Create(%s): %v", title, err)
	}
	return n
}

func TestListIncludesShopWideRows(t *testing.T) {
	svc, _ := newTestService(t)
	shopID := uuid.New()
	mySession := uuid.New()
	otherSession := uuid.New()

	seed(t, svc, shopID, nil, "shop wide")
	seed(t, svc, shopID, &mySession, "mine")
	seed(t, svc, shopID, &otherSession, "not mine")
	seed(t, svc, uuid.New(), nil, "other shop")

	result, err := svc.List(context.Background(), ListParams{ShopID: shopID, SessionID: mySession})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected shop-wide plus own rows, got %d", len(result.Items))
	}
	for _, item := range result.Items {
		if item.Title == "not mine" || item.Title == "other shop" {
			t.Fatalf("leaked row %q into the feed", item.Title)
		}
	}
}

func TestListHidesSoftDeleted(t *testing.T) {
	svc, _ := newTestService(t)
	shopID := uuid.New()
	sessionID := uuid.New()

	n := seed(t, svc, shopID, &sessionID, "doomed")
	seed(t, svc, shopID, &sessionID, "kept")

	if err := svc.Delete(context.Background(), shopID, sessionID, n.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	result, err := svc.List(context.Background(), ListParams{ShopID: shopID, SessionID: sessionID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].Title != "kept" {
		t.Fatalf("soft-deleted row still visible: %+v", result.Items)
	}
}

func TestListPagination(t *testing.T) {
	svc, repo := newTestService(t)
	shopID := uuid.New()
	sessionID := uuid.New()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		n := seed(t, svc, shopID, &sessionID, "n")
		repo.rows[i].CreatedAt = base.Add(time.Duration(i) * time.Second)
		_ = n
	}

	first, err := svc.List(context.Background(), ListParams{ShopID: shopID, SessionID: sessionID, Limit: 3})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Items) != 3 || first.Cursor == "" {
		t.Fatalf("expected 3 rows and a cursor, got %d %q", len(first.Items), first.Cursor)
	}

	second, err := svc.List(context.Background(), ListParams{ShopID: shopID, SessionID: sessionID, Limit: 3, Cursor: first.Cursor})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Items) == 0 {
		t.Fatal("expected a second page")
	}
}

func TestUnreadCountAndMarkAll(t *testing.T) {
	svc, _ := newTestService(t)
	shopID := uuid.New()
	sessionID := uuid.New()

	seed(t, svc, shopID, nil, "a")
	seed(t, svc, shopID, &sessionID, "b")

	count, err := svc.UnreadCount(context.Background(), shopID, sessionID)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 unread, got %d", count)
	}

	marked, err := svc.MarkAllRead(context.Background(), shopID, sessionID)
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if marked != 2 {
		t.Fatalf("expected 2 marked, got %d", marked)
	}

	count, _ = svc.UnreadCount(context.Background(), shopID, sessionID)
	if count != 0 {
		t.Fatalf("expected 0 unread after mark all, got %d", count)
	}
}

func TestMarkReadUnknownNotification(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMarkReadForeignSessionRow(t *testing.T) {
	svc, _ := newTestService(t)
	shopID := uuid.New()
	owner := uuid.New()
	intruder := uuid.New()

	n := seed(t, svc, shopID, &owner, "private")

	err := svc.MarkRead(context.Background(), shopID, intruder, n.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("foreign session must not see the row, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), CreateParams{
		ShopID:  uuid.New(),
		Title:   "t",
		Message: "m",
		Type:    enums.NotificationType("bogus"),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateDefaultsCategoryAndScope(t *testing.T) {
	svc, _ := newTestService(t)

	n, err := svc.Create(context.Background(), CreateParams{
		ShopID:  uuid.New(),
		Title:   "t",
		Message: "m",
		Type:    enums.NotificationTypeCompetitorAlert,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n.Category != enums.NotificationCategoryGeneral {
		t.Fatalf("expected default category, got %s", n.Category)
	}
	if n.Scope != enums.NotificationScopeInbox {
		t.Fatalf("expected default scope, got %s", n.Scope)
	}
}

func TestPurgeDeletedRespectsRetention(t *testing.T) {
	svc, repo := newTestService(t)
	shopID := uuid.New()
	sessionID := uuid.New()
	now := time.Now().UTC()

	oldRow := seed(t, svc, shopID, &sessionID, "old")
	recent := seed(t, svc, shopID, &sessionID, "recent")

	_ = svc.Delete(context.Background(), shopID, sessionID, oldRow.ID)
	_ = svc.Delete(context.Background(), shopID, sessionID, recent.ID)

	past := now.AddDate(0, 0, -45)
	for _, n := range repo.rows {
		if n.ID == oldRow.ID {
			n.DeletedAt = &past
		}
	}

	purged, err := svc.PurgeDeleted(context.Background(), now, 30)
	if err != nil {
		t.Fatalf("PurgeDeleted: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged, got %d", purged)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected the recent soft-deleted row to survive, rows=%d", len(repo.rows))
	}
}
