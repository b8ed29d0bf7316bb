package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"prompt-tracker/internal/domain"
	"prompt-tracker/internal/repository"
	"prompt-tracker/internal/service"

	"go.uber.org/zap"
)

// newPromptHandlerFixture 组装内存依赖的完整通知栈
func newPromptHandlerFixture() *PromptHandler {
	individuals := repository.NewMemoryIndividualsRepo()
	types := repository.NewMemoryPromptTypesRepo()
	users := repository.NewMemoryUsersRepo()
	prompts := repository.NewMemoryPromptsRepo()
	auditRepo := repository.NewMemoryAuditRepo(users)

	individuals.AddIndividual(domain.Individual{CdcrNumber: "A12345", FirstName: "John", LastName: "Doe", FacilityID: 1, HousingUnit: "A-1"})
	types.AddPromptType(domain.PromptType{Name: "Meal", Category: "daily"})
	users.AddUser(domain.User{Username: "officer1", FirstName: "Dana", LastName: "Reyes", BadgeNumber: "B-1042", Role: domain.RoleOfficer, FacilityID: 1})

	logger := zap.NewNop()
	audit := service.NewAuditRecorder(auditRepo, prompts, individuals, types, logger)
	svc := service.NewPromptService(prompts, individuals, types, users, audit, nil, logger)
	return NewPromptHandler(svc, logger)
}

func TestCreatePrompt_RequiresIdentity(t *testing.T) {
	h := newPromptHandlerFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/prompts", strings.NewReader(`{"individualId":1,"promptTypeId":1,"status":"PENDING"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "User not authenticated") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestCreatePrompt_Created(t *testing.T) {
	h := newPromptHandlerFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/prompts", strings.NewReader(`{"individualId":1,"promptTypeId":1,"status":"PENDING","notes":"cell front"}`))
	req.Header.Set("X-User-ID", "1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, `"status":"PENDING"`) {
		t.Fatalf("expected status in body: %s", body)
	}
	if !strings.Contains(body, `"cdcrNumber":"A12345"`) {
		t.Fatalf("expected individual summary in body: %s", body)
	}
}

func TestCreatePrompt_SignedWithoutSignature(t *testing.T) {
	h := newPromptHandlerFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/prompts", strings.NewReader(`{"individualId":1,"promptTypeId":1,"status":"SIGNED"}`))
	req.Header.Set("X-User-ID", "1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateStatus_InvalidID(t *testing.T) {
	h := newPromptHandlerFixture()

	req := httptest.NewRequest(http.MethodPatch, "/api/prompts/abc", strings.NewReader(`{"status":"REFUSED"}`))
	req.Header.Set("X-User-ID", "1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	h := newPromptHandlerFixture()

	req := httptest.NewRequest(http.MethodPatch, "/api/prompts/999", strings.NewReader(`{"status":"REFUSED"}`))
	req.Header.Set("X-User-ID", "1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateStatus_Roundtrip(t *testing.T) {
	h := newPromptHandlerFixture()

	create := httptest.NewRequest(http.MethodPost, "/api/prompts", strings.NewReader(`{"individualId":1,"promptTypeId":1,"status":"PENDING"}`))
	create.Header.Set("X-User-ID", "1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, create)
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", w.Code, w.Body.String())
	}

	patch := httptest.NewRequest(http.MethodPatch, "/api/prompts/1", strings.NewReader(`{"status":"SIGNED","signature":"base64sig"}`))
	patch.Header.Set("X-User-ID", "1")
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, patch)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w2.Code, w2.Body.String())
	}
	if !strings.Contains(w2.Body.String(), `"status":"SIGNED"`) {
		t.Fatalf("unexpected body: %s", w2.Body.String())
	}

	list := httptest.NewRequest(http.MethodGet, "/api/prompts?status=SIGNED", nil)
	list.Header.Set("X-User-ID", "1")
	w3 := httptest.NewRecorder()
	h.ServeHTTP(w3, list)
	if w3.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w3.Code, w3.Body.String())
	}
	if !strings.Contains(w3.Body.String(), `"signature":"base64sig"`) {
		t.Fatalf("expected signed prompt in list: %s", w3.Body.String())
	}
}
