package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tinythreads/internal/config"
	"github.com/tinythreads/internal/provider"

	"github.com/gin-gonic/gin"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Server.Mode = "debug"
	return SetupRouter(cfg, &provider.Container{Config: cfg})
}

func TestSetupRouterHealth(t *testing.T) {
	r := setupTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || w.Body.String() != `{"status":"ok"}` {
		t.Fatalf("unexpected health response: %d %s", w.Code, w.Body.String())
	}
}

func TestSetupRouterAdminRequiresAuth(t *testing.T) {
	r := setupTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil))
	if code := decodeStatusCode(t, w); code != 401 {
		t.Fatalf("admin route without auth want 401 got %d", code)
	}
}

func TestBuildAdminPermissionCatalog(t *testing.T) {
	r := setupTestRouter(t)
	items := buildAdminPermissionCatalog(r)
	if len(items) == 0 {
		t.Fatalf("catalog should not be empty")
	}

	index := make(map[string]adminPermissionCatalogItem, len(items))
	for _, item := range items {
		if item.Object == "/admin/login" {
			t.Fatalf("login route must not be listed")
		}
		index[item.Permission] = item
	}
	status, ok := index["PATCH:/admin/inquiries/:id/status"]
	if !ok || status.Module != "inquiries" {
		t.Fatalf("inquiry status permission missing: %+v", status)
	}
	roles, ok := index["GET:/admin/authz/roles/:role/policies"]
	if !ok || roles.Module != "authz" {
		t.Fatalf("authz permission missing: %+v", roles)
	}
	if _, ok := index["GET:/public/products"]; ok {
		t.Fatalf("public routes must not be listed")
	}

	for i := 1; i < len(items); i++ {
		if items[i-1].Module > items[i].Module {
			t.Fatalf("catalog should be sorted by module")
		}
	}
}

func TestDeriveAdminPermissionModule(t *testing.T) {
	cases := map[string]string{
		"":                            "system",
		"/admin/products/:id":         "products",
		"/admin/authz/admins/:id":     "authz",
		"/admin/inquiries/:id/status": "inquiries",
		"/health":                     "health",
	}
	for object, want := range cases {
		if got := deriveAdminPermissionModule(object); got != want {
			t.Fatalf("module for %q want %s got %s", object, want, got)
		}
	}
}
