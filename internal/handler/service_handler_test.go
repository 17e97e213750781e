package handler

import (
	"net/http"
	"strings"
	"testing"
)

type serviceResponse struct {
	Success bool        `json:"success"`
	Data    serviceView `json:"data"`
	Message string      `json:"message"`
}

func createService(t *testing.T, env *testEnv, body map[string]any) serviceView {
	t.Helper()
	rr := env.doJSON(t, http.MethodPost, "/admin/services/create/", env.token, body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp serviceResponse
	decodeBody(t, rr, &resp)
	if resp.Message != msgServiceCreated {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
	return resp.Data
}

func TestCreateServiceValidation(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.doJSON(t, http.MethodPost, "/admin/services/create/", env.token, map[string]any{
		"name":  "",
		"order": 1.5,
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var resp struct {
		Errors map[string][]string `json:"errors"`
	}
	decodeBody(t, rr, &resp)
	if len(resp.Errors["name"]) == 0 {
		t.Fatalf("expected name error, got %v", resp.Errors)
	}
	if len(resp.Errors["order"]) == 0 {
		t.Fatalf("expected order error, got %v", resp.Errors)
	}
}

func TestCreateServiceNameTooLong(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.doJSON(t, http.MethodPost, "/admin/services/create/", env.token, map[string]any{
		"name": strings.Repeat("x", 101),
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "no more than 100 characters") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestCreateServiceFromForm(t *testing.T) {
	env := setupTestEnv(t)

	req := newFormRequest(http.MethodPost, "/admin/services/create/", "name=Design&icon=palette&order=2&is_active=on")
	rr := env.do(req, env.token)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp serviceResponse
	decodeBody(t, rr, &resp)
	if resp.Data.Name != "Design" || resp.Data.Icon != "palette" || resp.Data.Order != 2 || !resp.Data.IsActive {
		t.Fatalf("unexpected service: %+v", resp.Data)
	}
}

func TestUpdateServiceKeepsUnsubmittedFields(t *testing.T) {
	env := setupTestEnv(t)
	created := createService(t, env, map[string]any{
		"name":        "Consulting",
		"icon":        "briefcase",
		"description": "Advice",
		"order":       4,
	})

	rr := env.doJSON(t, http.MethodPatch, idPath("/admin/services/%d/update/", created.ID), env.token, map[string]any{
		"is_active": false,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp serviceResponse
	decodeBody(t, rr, &resp)
	got := resp.Data
	if got.IsActive {
		t.Fatalf("expected is_active=false")
	}
	if got.Name != "Consulting" || got.Icon != "briefcase" || got.Description != "Advice" || got.Order != 4 {
		t.Fatalf("unsubmitted fields changed: %+v", got)
	}

	rr = env.doJSON(t, http.MethodGet, "/services/", "", nil)
	var public []serviceView
	decodeBody(t, rr, &public)
	if len(public) != 0 {
		t.Fatalf("inactive service should be hidden from public list, got %d", len(public))
	}
}

func TestServiceListsOrdered(t *testing.T) {
	env := setupTestEnv(t)
	createService(t, env, map[string]any{"name": "B", "icon": "b", "order": 2})
	createService(t, env, map[string]any{"name": "A", "icon": "a", "order": 1})
	createService(t, env, map[string]any{"name": "C", "icon": "c", "order": 2})

	rr := env.doJSON(t, http.MethodGet, "/services/", "", nil)
	var public []serviceView
	decodeBody(t, rr, &public)
	names := make([]string, 0, len(public))
	for _, item := range public {
		names = append(names, item.Name)
	}
	if strings.Join(names, ",") != "A,B,C" {
		t.Fatalf("unexpected order: %v", names)
	}
}

func TestDeleteServiceNotFound(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.doJSON(t, http.MethodDelete, "/admin/services/42/delete/", env.token, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	want := `{"message":"Service not found","success":false}`
	if got := strings.TrimSpace(rr.Body.String()); got != want {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestDeleteService(t *testing.T) {
	env := setupTestEnv(t)
	created := createService(t, env, map[string]any{"name": "Temp", "icon": "clock"})

	rr := env.doJSON(t, http.MethodDelete, idPath("/admin/services/%d/delete/", created.ID), env.token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	rr = env.doJSON(t, http.MethodGet, "/admin/services/", env.token, nil)
	var all []serviceView
	decodeBody(t, rr, &all)
	if len(all) != 0 {
		t.Fatalf("expected no services after delete, got %d", len(all))
	}
}

func TestMethodNotAllowedEnvelope(t *testing.T) {
	env := setupTestEnv(t)

	rr := env.doJSON(t, http.MethodPost, "/services/", "", map[string]any{})
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `Method \"POST\" not allowed.`) {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}
