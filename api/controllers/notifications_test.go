package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/shoplens/shoplens-backend/internal/notifications"
	"github.com/shoplens/shoplens-backend/pkg/enums"
)

func TestListNotificationsPassesFilters(t *testing.T) {
	shopID := uuid.New()
	sessionID := uuid.New()
	svc := &fakeNotificationsService{
		listFn: func(_ context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
			if params.ShopID != shopID || params.SessionID != sessionID {
				t.Fatalf("unexpected scope %s/%s", params.ShopID, params.SessionID)
			}
			if params.Limit != 10 || !params.UnreadOnly || params.Category != "competitors" {
				t.Fatalf("filters not forwarded: %+v", params)
			}
			return &notifications.ListResult{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/shopify/notifications?limit=10&unreadOnly=true&category=competitors", nil)
	req = seedSession(req, shopID, sessionID)
	resp := httptest.NewRecorder()
	ListNotifications(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestListNotificationsRejectsBadLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/shopify/notifications?limit=zero", nil)
	req = seedSession(req, uuid.New(), uuid.New())
	resp := httptest.NewRecorder()
	ListNotifications(&fakeNotificationsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestListNotificationsMissingSessionContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/shopify/notifications", nil)
	resp := httptest.NewRecorder()
	ListNotifications(&fakeNotificationsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestUnreadNotificationCount(t *testing.T) {
	svc := &fakeNotificationsService{
		unreadFn: func(_ context.Context, _, _ uuid.UUID) (int64, error) { return 7, nil },
	}
	req := seedSession(httptest.NewRequest(http.MethodGet, "/api/auth/shopify/notifications/unread-count", nil), uuid.New(), uuid.New())
	resp := httptest.NewRecorder()
	UnreadNotificationCount(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data map[string]int64 `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["unread"] != 7 {
		t.Fatalf("expected unread=7 got %v", envelope.Data)
	}
}

func TestMarkNotificationReadAudits(t *testing.T) {
	shopID := uuid.New()
	sessionID := uuid.New()
	notificationID := uuid.New()
	called := false
	svc := &fakeNotificationsService{
		markReadFn: func(_ context.Context, sid, sess, nid uuid.UUID) error {
			called = true
			if sid != shopID || sess != sessionID || nid != notificationID {
				t.Fatalf("unexpected args %s/%s/%s", sid, sess, nid)
			}
			return nil
		},
	}
	auditSvc := &recordedAudit{}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/shopify/notifications/"+notificationID.String()+"/read", nil)
	req = seedSession(req, shopID, sessionID)
	req = addRouteParam(req, "notificationId", notificationID.String())
	resp := httptest.NewRecorder()
	MarkNotificationRead(svc, auditSvc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
	if len(auditSvc.events) != 1 || auditSvc.events[0].Action != enums.AuditActionNotificationRead {
		t.Fatalf("expected notification_read audit event, got %v", auditSvc.events)
	}
}

func TestMarkNotificationReadInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/shopify/notifications/invalid/read", nil)
	req = seedSession(req, uuid.New(), uuid.New())
	req = addRouteParam(req, "notificationId", "invalid")
	resp := httptest.NewRecorder()
	MarkNotificationRead(&fakeNotificationsService{}, nil, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestMarkAllNotificationsRead(t *testing.T) {
	svc := &fakeNotificationsService{
		markAllReadFn: func(_ context.Context, _, _ uuid.UUID) (int64, error) { return 5, nil },
	}
	req := seedSession(httptest.NewRequest(http.MethodPost, "/api/auth/shopify/notifications/read-all", nil), uuid.New(), uuid.New())
	resp := httptest.NewRecorder()
	MarkAllNotificationsRead(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data map[string]int64 `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["updated"] != 5 {
		t.Fatalf("expected updated=5 got %v", envelope.Data)
	}
}

func TestDeleteNotification(t *testing.T) {
	notificationID := uuid.New()
	called := false
	svc := &fakeNotificationsService{
		deleteFn: func(_ context.Context, _, _, nid uuid.UUID) error {
			called = true
			if nid != notificationID {
				t.Fatalf("unexpected notification %s", nid)
			}
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/auth/shopify/notifications/"+notificationID.String(), nil)
	req = seedSession(req, uuid.New(), uuid.New())
	req = addRouteParam(req, "notificationId", notificationID.String())
	resp := httptest.NewRecorder()
	DeleteNotification(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
}
