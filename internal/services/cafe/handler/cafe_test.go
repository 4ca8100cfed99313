package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kasir-system/internal/api"
	"kasir-system/internal/database/models"
	"kasir-system/internal/middleware"
	"kasir-system/internal/services/cafe/service"
	"kasir-system/internal/services/cafe/store"
	"kasir-system/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type noRevocations struct{}

func (noRevocations) IsRevoked(context.Context, string) (bool, error) { return false, nil }

type testEnv struct {
	router *gin.Engine
	tokens map[models.Role]string
	menuID int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	svc := service.NewService(st, nil, nil, nil)
	menu, err := svc.CreateMenu(context.Background(), service.MenuInput{Name: "Nasi Goreng", Price: decimal.NewFromInt(25000)})
	if err != nil {
		t.Fatalf("seed menu: %v", err)
	}

	issuer := utils.NewTokenIssuer("secret", time.Hour, "cafe")
	env := &testEnv{tokens: map[models.Role]string{}, menuID: menu.ID}
	for i, role := range models.CafeRoles {
		token, _, err := issuer.GenerateToken(models.User{ID: int64(i + 1), Role: role})
		if err != nil {
			t.Fatalf("token for %s: %v", role, err)
		}
		env.tokens[role] = token
	}

	r := gin.New()
	NewCafeHTTPHandler(svc).RegisterRoutes(r.Group("/api/v1", middleware.JWTAuth(issuer, noRevocations{})))
	env.router = r
	return env
}

func (e *testEnv) do(method, path string, role models.Role, body string) (*httptest.ResponseRecorder, api.APIResponse) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token, ok := e.tokens[role]; ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp api.APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func (e *testEnv) placeOrder(t *testing.T) int64 {
	t.Helper()
	body := fmt.Sprintf(`{"table_number":"7","items":[{"menu_id":%d,"quantity":2}]}`, e.menuID)
	w, resp := e.do(http.MethodPost, "/api/v1/orders", models.RoleKasir, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("place order: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data := resp.Data.(map[string]interface{})
	if data["total_price"] != "50000" {
		t.Fatalf("expected total 50000, got %v", data["total_price"])
	}
	return int64(data["id"].(float64))
}

func TestOrderFlow(t *testing.T) {
	env := newTestEnv(t)
	id := env.placeOrder(t)

	path := fmt.Sprintf("/api/v1/orders/%d/status", id)
	if w, _ := env.do(http.MethodPatch, path, models.RoleKasir, `{"status":"processing"}`); w.Code != http.StatusForbidden {
		t.Fatalf("kasir status change: expected 403, got %d", w.Code)
	}
	if w, _ := env.do(http.MethodPatch, path, models.RoleChef, `{"status":"processing"}`); w.Code != http.StatusOK {
		t.Fatalf("chef status change: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w, _ := env.do(http.MethodPatch, path, models.RoleChef, `{"status":"pending"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("backward move: expected 400, got %d", w.Code)
	}

	checkout := fmt.Sprintf("/api/v1/orders/%d/checkout", id)
	if w, _ := env.do(http.MethodPost, checkout, models.RoleKasir, ""); w.Code != http.StatusOK {
		t.Fatalf("checkout: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w, resp := env.do(http.MethodPost, checkout, models.RoleKasir, "")
	if w.Code != http.StatusBadRequest || resp.Message != "Pesanan ini sudah selesai atau telah dibatalkan." {
		t.Fatalf("second checkout: expected 400 with closed message, got %d %q", w.Code, resp.Message)
	}
	if w, _ := env.do(http.MethodPatch, path, models.RoleAdmin, `{"status":"cancelled"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("cancel completed: expected 400, got %d", w.Code)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(http.MethodPost, "/api/v1/orders", models.RoleKasir, `{"table_number":"1","items":[{"menu_id":1,"quantity":0}]}`)
	if w.Code != http.StatusUnprocessableEntity || resp.Errors["items.0.quantity"] == "" {
		t.Fatalf("expected quantity violation, got %d %v", w.Code, resp.Errors)
	}

	w, resp = env.do(http.MethodPost, "/api/v1/orders", models.RoleKasir, `{"table_number":"1","items":[{"menu_id":999,"quantity":1}]}`)
	if w.Code != http.StatusUnprocessableEntity || resp.Errors["items.0.menu_id"] == "" {
		t.Fatalf("expected unknown menu violation, got %d %v", w.Code, resp.Errors)
	}

	if w, _ := env.do(http.MethodPost, "/api/v1/orders", models.RoleChef, `{"table_number":"1","items":[{"menu_id":1,"quantity":1}]}`); w.Code != http.StatusForbidden {
		t.Fatalf("chef placing order: expected 403, got %d", w.Code)
	}
	if w, _ := env.do(http.MethodPost, "/api/v1/orders", "", `{}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", w.Code)
	}
}

func TestMenuRoleGates(t *testing.T) {
	env := newTestEnv(t)

	if w, _ := env.do(http.MethodGet, "/api/v1/menus", models.RoleChef, ""); w.Code != http.StatusOK {
		t.Fatalf("list menus: expected 200, got %d", w.Code)
	}
	if w, _ := env.do(http.MethodPost, "/api/v1/menus", models.RoleKasir, `{"name":"Es Jeruk","price":9000}`); w.Code != http.StatusForbidden {
		t.Fatalf("kasir creating menu: expected 403, got %d", w.Code)
	}
	w, resp := env.do(http.MethodPost, "/api/v1/menus", models.RoleAdmin, `{"name":"Es Jeruk"}`)
	if w.Code != http.StatusUnprocessableEntity || resp.Errors["price"] == "" {
		t.Fatalf("missing price: expected 422, got %d %v", w.Code, resp.Errors)
	}
	if w, _ := env.do(http.MethodPost, "/api/v1/menus", models.RoleAdmin, `{"name":"Es Jeruk","price":"9000"}`); w.Code != http.StatusCreated {
		t.Fatalf("admin creating menu: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if w, _ := env.do(http.MethodGet, "/api/v1/menus/abc", models.RoleAdmin, ""); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad id: expected 422, got %d", w.Code)
	}
}

func TestReportAndCafes(t *testing.T) {
	env := newTestEnv(t)
	id := env.placeOrder(t)
	env.do(http.MethodPost, fmt.Sprintf("/api/v1/orders/%d/checkout", id), models.RoleKasir, "")

	w, resp := env.do(http.MethodGet, "/api/v1/reports", models.RoleOwner, "")
	if w.Code != http.StatusOK {
		t.Fatalf("report: expected 200, got %d", w.Code)
	}
	if got := resp.Data.(map[string]interface{})["total_revenue"]; got != "50000" {
		t.Fatalf("expected revenue 50000, got %v", got)
	}
	if w, _ := env.do(http.MethodGet, "/api/v1/reports", models.RoleKasir, ""); w.Code != http.StatusForbidden {
		t.Fatalf("kasir report: expected 403, got %d", w.Code)
	}

	if w, _ := env.do(http.MethodPost, "/api/v1/cafes", models.RoleAdmin, `{"name":"Cabang Baru"}`); w.Code != http.StatusForbidden {
		t.Fatalf("admin creating cafe: expected 403, got %d", w.Code)
	}
	if w, _ := env.do(http.MethodPost, "/api/v1/cafes", models.RoleSuperadmin, `{"name":"Cabang Baru"}`); w.Code != http.StatusCreated {
		t.Fatalf("superadmin creating cafe: expected 201, got %d", w.Code)
	}
}
