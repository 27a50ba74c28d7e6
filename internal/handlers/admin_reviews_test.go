package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kitzone/api/internal/domain"
	"github.com/kitzone/api/internal/services"
)

func TestAdminReviewHandlers_ListModerationQueue(t *testing.T) {
	svc := &stubReviewService{moderationResp: domain.CursorPage[services.Review]{
		Items: []services.Review{{ID: "rev_1", ProductID: "prd_1", Rating: 4, Status: domain.ReviewStatusPending}},
	}}
	router := newAdminRouter(AdminHandlersDeps{Reviews: svc})

	req := authenticate(httptest.NewRequest(http.MethodGet, "/reviews/?status=pending", nil), "admin-1", "admin")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if len(svc.moderationFilter.Status) != 1 || svc.moderationFilter.Status[0] != domain.ReviewStatusPending {
		t.Fatalf("unexpected filter: %+v", svc.moderationFilter)
	}
}

func TestAdminReviewHandlers_Approve(t *testing.T) {
	svc := &stubReviewService{moderateResp: services.Review{ID: "rev_1", Status: domain.ReviewStatusApproved}}
	router := newAdminRouter(AdminHandlersDeps{Reviews: svc})

	payload, _ := json.Marshal(map[string]any{"approve": true})
	req := authenticate(httptest.NewRequest(http.MethodPost, "/reviews/rev_1/moderate", bytes.NewReader(payload)), "admin-1", "admin")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !svc.moderateCmd.Approve || svc.moderateCmd.ReviewID != "rev_1" || svc.moderateCmd.ActorID != "admin-1" {
		t.Fatalf("unexpected command: %+v", svc.moderateCmd)
	}
}

func TestAdminReviewHandlers_ModerateMissingReview(t *testing.T) {
	router := newAdminRouter(AdminHandlersDeps{Reviews: &stubReviewService{moderateErr: services.ErrReviewNotFound}})

	payload, _ := json.Marshal(map[string]any{"approve": false})
	req := authenticate(httptest.NewRequest(http.MethodPost, "/reviews/rev_missing/moderate", bytes.NewReader(payload)), "admin-1", "admin")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestAdminReviewHandlers_Delete(t *testing.T) {
	svc := &stubReviewService{}
	router := newAdminRouter(AdminHandlersDeps{Reviews: svc})

	req := authenticate(httptest.NewRequest(http.MethodDelete, "/reviews/rev_1", nil), "admin-1", "admin")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if svc.deletedID != "rev_1" {
		t.Fatalf("expected rev_1 deleted, got %q", svc.deletedID)
	}
}
