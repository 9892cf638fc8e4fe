package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/shoplens/shoplens-backend/internal/competitors"
	"github.com/shoplens/shoplens-backend/pkg/enums"
)

func TestListSuggestionsForwardsFilters(t *testing.T) {
	shopID := uuid.New()
	productID := uuid.New()
	svc := &fakeCompetitorsService{
		listFn: func(_ context.Context, params competitors.ListParams) (*competitors.ListResult, error) {
			if params.ShopID != shopID {
				t.Fatalf("unexpected shop %s", params.ShopID)
			}
			if params.ProductID != productID || params.Status != "new" || params.Limit != 25 {
				t.Fatalf("filters not forwarded: %+v", params)
			}
			return &competitors.ListResult{}, nil
		},
	}

	target := "/api/competitors?productId=" + productID.String() + "&status=new&limit=25"
	req := seedSession(httptest.NewRequest(http.MethodGet, target, nil), shopID, uuid.New())
	resp := httptest.NewRecorder()
	ListSuggestions(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestReviewSuggestionAudits(t *testing.T) {
	shopID := uuid.New()
	suggestionID := uuid.New()
	var gotStatus enums.SuggestionStatus
	svc := &fakeCompetitorsService{
		reviewFn: func(_ context.Context, sid, id uuid.UUID, status enums.SuggestionStatus) error {
			if sid != shopID || id != suggestionID {
				t.Fatalf("unexpected args %s/%s", sid, id)
			}
			gotStatus = status
			return nil
		},
	}
	auditSvc := &recordedAudit{}

	body := strings.NewReader(`{"status":"approved"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/competitors/"+suggestionID.String()+"/status", body)
	req.Header.Set("Content-Type", "application/json")
	req = seedSession(req, shopID, uuid.New())
	req = addRouteParam(req, "suggestionId", suggestionID.String())
	resp := httptest.NewRecorder()
	ReviewSuggestion(svc, auditSvc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if gotStatus != enums.SuggestionStatusApproved {
		t.Fatalf("unexpected status %s", gotStatus)
	}
	if len(auditSvc.events) != 1 || auditSvc.events[0].Action != enums.AuditActionSuggestionReview {
		t.Fatalf("expected suggestion_review audit event, got %v", auditSvc.events)
	}
}

func TestReviewSuggestionRejectsUnknownStatus(t *testing.T) {
	suggestionID := uuid.New()
	body := strings.NewReader(`{"status":"maybe"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/competitors/"+suggestionID.String()+"/status", body)
	req = seedSession(req, uuid.New(), uuid.New())
	req = addRouteParam(req, "suggestionId", suggestionID.String())
	resp := httptest.NewRecorder()
	ReviewSuggestion(&fakeCompetitorsService{}, nil, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestReviewSuggestionRequiresBody(t *testing.T) {
	suggestionID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/competitors/"+suggestionID.String()+"/status", strings.NewReader(`{}`))
	req = seedSession(req, uuid.New(), uuid.New())
	req = addRouteParam(req, "suggestionId", suggestionID.String())
	resp := httptest.NewRecorder()
	ReviewSuggestion(&fakeCompetitorsService{}, nil, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSuggestionSummary(t *testing.T) {
	shopID := uuid.New()
	svc := &fakeCompetitorsService{
		summaryFn: func(_ context.Context, sid uuid.UUID) (*competitors.SummaryResult, error) {
			if sid != shopID {
				t.Fatalf("unexpected shop %s", sid)
			}
			return &competitors.SummaryResult{Total: 4, Approved: 2}, nil
		},
	}

	req := seedSession(httptest.NewRequest(http.MethodGet, "/api/competitors/summary", nil), shopID, uuid.New())
	resp := httptest.NewRecorder()
	SuggestionSummary(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}
