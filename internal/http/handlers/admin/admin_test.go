package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tinythreads/internal/authz"
	"github.com/tinythreads/internal/config"
	"github.com/tinythreads/internal/models"
	"github.com/tinythreads/internal/provider"
	"github.com/tinythreads/internal/repository"
	"github.com/tinythreads/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type apiResponse struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type adminFixture struct {
	engine      *gin.Engine
	db          *gorm.DB
	products    *service.ProductService
	inquiryRepo repository.InquiryRepository
}

func setupAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	authzService, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}

	store := config.StoreConfig{}
	categories := service.NewCategoryService(repository.NewCategoryRepository(db))
	products := service.NewProductService(repository.NewProductRepository(db), categories, store)
	inquiryRepo := repository.NewInquiryRepository(db)
	h := New(&provider.Container{
		Config:          &config.Config{Store: store},
		AuthzService:    authzService,
		CategoryService: categories,
		ProductService:  products,
		InquiryService:  service.NewInquiryService(inquiryRepo, nil, store),
	})

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("admin_id", uint(1))
		c.Set("username", "admin")
		c.Next()
	})
	r.POST("/categories", h.CreateCategory)
	r.GET("/categories/:id", h.GetAdminCategory)
	r.DELETE("/categories/:id", h.DeleteCategory)
	r.GET("/inquiries", h.GetAdminInquiries)
	r.PATCH("/inquiries/:id/status", h.UpdateInquiryStatus)
	r.DELETE("/authz/roles/:role", h.DeleteAuthzRole)
	r.POST("/authz/policies", h.GrantAuthzPolicy)
	r.GET("/authz/roles", h.ListAuthzRoles)

	return &adminFixture{engine: r, db: db, products: products, inquiryRepo: inquiryRepo}
}

func (f *adminFixture) call(t *testing.T, method, path string, body any) apiResponse {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encode body failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v (%s)", err, w.Body.String())
	}
	return resp
}

func TestCategoryAdminLifecycle(t *testing.T) {
	f := setupAdminFixture(t)

	resp := f.call(t, http.MethodPost, "/categories", gin.H{"name": "Boys Tops", "gender": "boys"})
	if resp.StatusCode != 0 || resp.Msg != `Category "Boys Tops" created successfully!` {
		t.Fatalf("unexpected create response: %d %s", resp.StatusCode, resp.Msg)
	}
	var category models.Category
	if err := json.Unmarshal(resp.Data, &category); err != nil {
		t.Fatalf("decode category failed: %v", err)
	}
	if category.Slug != "boys-tops" {
		t.Fatalf("slug want boys-tops got %s", category.Slug)
	}

	if resp = f.call(t, http.MethodPost, "/categories", gin.H{"name": "boys tops"}); resp.StatusCode != 409 {
		t.Fatalf("duplicate slug want 409 got %d", resp.StatusCode)
	}

	resp = f.call(t, http.MethodPost, "/categories", gin.H{"name": "Hats", "gender": "men"})
	var invalid struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(resp.Data, &invalid); err != nil {
		t.Fatalf("decode validation data failed: %v", err)
	}
	if resp.StatusCode != 400 || invalid.Fields["gender"] == "" {
		t.Fatalf("invalid gender want 400 with field error, got %d %+v", resp.StatusCode, invalid)
	}

	if _, err := f.products.Create(service.ProductInput{
		Name:          "Striped Polo",
		Price:         models.NewMoneyFromFloat(18.5),
		StockQuantity: 2,
		CategoryID:    category.ID,
	}); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	resp = f.call(t, http.MethodDelete, "/categories/"+category.ID, nil)
	if resp.StatusCode != 409 || !strings.Contains(resp.Msg, "linked to existing products") {
		t.Fatalf("category in use want 409, got %d %s", resp.StatusCode, resp.Msg)
	}

	if resp = f.call(t, http.MethodGet, "/categories/8d2f7b2e-0000-4000-8000-000000000000", nil); resp.StatusCode != 404 {
		t.Fatalf("missing category want 404 got %d", resp.StatusCode)
	}
}

func TestInquiryStatusEndpoint(t *testing.T) {
	f := setupAdminFixture(t)
	record := &models.Inquiry{FirstName: "Maya", LastName: "Patel", Email: "maya@example.com", Subject: "Sizes", Message: "Is the hoodie true to size?"}
	if err := f.inquiryRepo.Create(record); err != nil {
		t.Fatalf("create inquiry failed: %v", err)
	}

	resp := f.call(t, http.MethodPatch, "/inquiries/"+record.ID+"/status", gin.H{"status": "responded"})
	if resp.StatusCode != 0 {
		t.Fatalf("status update want 0 got %d (%s)", resp.StatusCode, resp.Msg)
	}
	if resp = f.call(t, http.MethodPatch, "/inquiries/"+record.ID+"/status", gin.H{"status": "shipped"}); resp.StatusCode != 400 {
		t.Fatalf("invalid status want 400 got %d", resp.StatusCode)
	}
	if resp = f.call(t, http.MethodPatch, "/inquiries/6f1c1a43-0000-4000-8000-000000000000/status", gin.H{"status": "read"}); resp.StatusCode != 404 {
		t.Fatalf("missing inquiry want 404 got %d", resp.StatusCode)
	}
	if resp = f.call(t, http.MethodPatch, "/inquiries/"+record.ID+"/status", gin.H{}); resp.StatusCode != 400 {
		t.Fatalf("missing status want 400 got %d", resp.StatusCode)
	}

	if resp = f.call(t, http.MethodGet, "/inquiries?status=lost", nil); resp.StatusCode != 400 {
		t.Fatalf("invalid status filter want 400 got %d", resp.StatusCode)
	}
	resp = f.call(t, http.MethodGet, "/inquiries?status=responded", nil)
	var records []models.Inquiry
	if err := json.Unmarshal(resp.Data, &records); err != nil {
		t.Fatalf("decode inquiries failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != record.ID {
		t.Fatalf("status filter should return the updated inquiry: %+v", records)
	}
}

func TestBuiltinRolesAreImmutable(t *testing.T) {
	f := setupAdminFixture(t)

	if resp := f.call(t, http.MethodDelete, "/authz/roles/catalog_editor", nil); resp.StatusCode != 403 {
		t.Fatalf("delete builtin role want 403 got %d", resp.StatusCode)
	}
	policy := gin.H{"role": "readonly_auditor", "object": "/admin/products", "action": "DELETE"}
	if resp := f.call(t, http.MethodPost, "/authz/policies", policy); resp.StatusCode != 403 {
		t.Fatalf("grant on builtin role want 403 got %d", resp.StatusCode)
	}

	policy["role"] = "merchandiser"
	if resp := f.call(t, http.MethodPost, "/authz/policies", policy); resp.StatusCode != 0 {
		t.Fatalf("grant on custom role want 0 got %d (%s)", resp.StatusCode, resp.Msg)
	}
	if resp := f.call(t, http.MethodDelete, "/authz/roles/merchandiser", nil); resp.StatusCode != 0 {
		t.Fatalf("delete custom role want 0 got %d (%s)", resp.StatusCode, resp.Msg)
	}

	resp := f.call(t, http.MethodGet, "/authz/roles", nil)
	var roles []struct {
		Role      string `json:"role"`
		Immutable bool   `json:"immutable"`
	}
	if err := json.Unmarshal(resp.Data, &roles); err != nil {
		t.Fatalf("decode roles failed: %v", err)
	}
	immutable := 0
	for _, role := range roles {
		if role.Immutable {
			immutable++
		}
	}
	if immutable != len(authz.BuiltinRoleSeeds()) {
		t.Fatalf("all builtin roles should be flagged immutable: %+v", roles)
	}
}
