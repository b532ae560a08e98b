package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tinythreads/internal/cache"
	"github.com/tinythreads/internal/config"
	"github.com/tinythreads/internal/models"
	"github.com/tinythreads/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type catalogFixture struct {
	db         *gorm.DB
	categories *CategoryService
	products   *ProductService
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func setupCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	db := setupServiceDB(t)
	categories := NewCategoryService(repository.NewCategoryRepository(db))
	products := NewProductService(repository.NewProductRepository(db), categories, config.StoreConfig{
		NewProductDays: 7,
		TrendingLimit:  2,
	})
	return &catalogFixture{db: db, categories: categories, products: products}
}

func useMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.UseClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "tt")
	t.Cleanup(cache.Reset)
	return mr
}

func mustCreateCategory(t *testing.T, svc *CategoryService, name, gender string) *models.Category {
	t.Helper()
	category, err := svc.Create(context.Background(), CategoryInput{Name: name, Gender: gender})
	if err != nil {
		t.Fatalf("create category %q failed: %v", name, err)
	}
	return category
}

func mustCreateProduct(t *testing.T, svc *ProductService, categoryID, name string, price float64, trending bool) *models.Product {
	t.Helper()
	product, err := svc.Create(ProductInput{
		Name:          name,
		Price:         models.NewMoneyFromFloat(price),
		StockQuantity: 3,
		CategoryID:    categoryID,
		ImageURL:      "https://cdn.example.com/" + strings.ToLower(strings.ReplaceAll(name, " ", "-")) + ".jpg",
		Sizes:         []string{"1-3", " 3-6 "},
		IsTrending:    trending,
	})
	if err != nil {
		t.Fatalf("create product %q failed: %v", name, err)
	}
	return product
}

func TestCategoryServiceCreateDerivesSlug(t *testing.T) {
	f := setupCatalogFixture(t)
	ctx := context.Background()

	category := mustCreateCategory(t, f.categories, "  3/4 Denims ", "")
	if category.Slug != "34-denims" {
		t.Fatalf("slug want 34-denims, got %q", category.Slug)
	}
	if category.Gender != "unisex" {
		t.Fatalf("gender should default to unisex, got %q", category.Gender)
	}

	if _, err := f.categories.Create(ctx, CategoryInput{Name: "3/4 denims"}); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("duplicate slug want ErrSlugExists, got %v", err)
	}

	_, err := f.categories.Create(ctx, CategoryInput{Name: "A", Gender: "men", ImageURL: "not a url"})
	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("want validation error, got %v", err)
	}
	if verr.Message != CategoryInvalidMessage {
		t.Fatalf("unexpected message: %s", verr.Message)
	}
	want := map[string]string{
		"name":      "Category name must be at least 2 characters.",
		"gender":    "Gender must be boys, girls or unisex.",
		"image_url": "Image URL must be a valid URL.",
	}
	for field, msg := range want {
		if verr.Fields[field] != msg {
			t.Fatalf("field %s want %q, got %q", field, msg, verr.Fields[field])
		}
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("validation error should match ErrInvalidInput")
	}

	_, err = f.categories.Create(ctx, CategoryInput{Name: "!!!"})
	if verr, ok := AsValidationError(err); !ok || verr.Fields["name"] == "" {
		t.Fatalf("name without letters should fail, got %v", err)
	}
}

func TestCategoryServiceUpdateKeepsOwnSlug(t *testing.T) {
	f := setupCatalogFixture(t)
	ctx := context.Background()
	category := mustCreateCategory(t, f.categories, "Rompers", "girls")
	mustCreateCategory(t, f.categories, "Dresses", "girls")

	updated, err := f.categories.Update(ctx, category.ID, CategoryInput{Name: "Rompers", Description: "Soft cotton", Gender: "GIRLS"})
	if err != nil {
		t.Fatalf("update with same name failed: %v", err)
	}
	if updated.Description != "Soft cotton" || updated.Gender != "girls" {
		t.Fatalf("unexpected updated category: %+v", updated)
	}
	if _, err := f.categories.Update(ctx, category.ID, CategoryInput{Name: "dresses"}); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("rename onto existing slug want ErrSlugExists, got %v", err)
	}
	if _, err := f.categories.Update(ctx, "", CategoryInput{Name: "Tops"}); !errors.Is(err, ErrCategoryIDMissing) {
		t.Fatalf("empty id want ErrCategoryIDMissing, got %v", err)
	}
}

func TestCategoryServiceDelete(t *testing.T) {
	f := setupCatalogFixture(t)
	ctx := context.Background()
	used := mustCreateCategory(t, f.categories, "Sleepwear", "")
	empty := mustCreateCategory(t, f.categories, "Hats", "")
	mustCreateProduct(t, f.products, used.ID, "Star Pajamas", 18, false)

	if err := f.categories.Delete(ctx, used.ID); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("delete used category want ErrCategoryInUse, got %v", err)
	}
	if err := f.categories.Delete(ctx, ""); !errors.Is(err, ErrCategoryIDMissing) {
		t.Fatalf("delete empty id want ErrCategoryIDMissing, got %v", err)
	}
	if err := f.categories.Delete(ctx, "6f1c1a43-0000-4000-8000-000000000000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete unknown id want ErrNotFound, got %v", err)
	}
	if err := f.categories.Delete(ctx, empty.ID); err != nil {
		t.Fatalf("delete empty category failed: %v", err)
	}
	if _, err := f.categories.Get(empty.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted category should be gone, got %v", err)
	}
}

func TestCategoryServiceResolveCategoryID(t *testing.T) {
	f := setupCatalogFixture(t)
	girls := mustCreateCategory(t, f.categories, "Baby Girls", "girls")

	// 名称与 slug 不一致时按名称匹配
	legacy := models.Category{Name: "Party Wear", Slug: "occasion", Gender: "unisex"}
	if err := f.db.Create(&legacy).Error; err != nil {
		t.Fatalf("create legacy category failed: %v", err)
	}
	lower := models.Category{Name: "school uniform", Slug: "uniforms", Gender: "unisex"}
	if err := f.db.Create(&lower).Error; err != nil {
		t.Fatalf("create lower category failed: %v", err)
	}

	cases := []struct {
		ref  string
		want string
	}{
		{ref: "baby-girls", want: girls.ID},
		{ref: "Baby-Girls", want: girls.ID},
		{ref: "party-wear", want: legacy.ID},
		{ref: "school-uniform", want: lower.ID},
		{ref: "unknown", want: ""},
		{ref: "  ", want: ""},
	}
	for _, tc := range cases {
		got, err := f.categories.ResolveCategoryID(tc.ref)
		if err != nil {
			t.Fatalf("resolve %q failed: %v", tc.ref, err)
		}
		if got != tc.want {
			t.Fatalf("resolve %q want %q, got %q", tc.ref, tc.want, got)
		}
	}
}

func TestCategoryServiceListPublicUsesCache(t *testing.T) {
	useMiniRedis(t)
	f := setupCatalogFixture(t)
	ctx := context.Background()
	mustCreateCategory(t, f.categories, "Boys Shirts", "boys")

	first, err := f.categories.ListPublic(ctx, "")
	if err != nil {
		t.Fatalf("list public failed: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("want 1 category, got %d", len(first))
	}

	// 绕过服务写入，缓存未失效前读不到
	if err := f.db.Create(&models.Category{Name: "Hidden", Slug: "hidden", Gender: "unisex"}).Error; err != nil {
		t.Fatalf("direct insert failed: %v", err)
	}
	cached, err := f.categories.ListPublic(ctx, "")
	if err != nil {
		t.Fatalf("list public cached failed: %v", err)
	}
	if len(cached) != 1 {
		t.Fatalf("want cached result with 1 category, got %d", len(cached))
	}

	mustCreateCategory(t, f.categories, "Girls Tops", "girls")
	fresh, err := f.categories.ListPublic(ctx, "")
	if err != nil {
		t.Fatalf("list public fresh failed: %v", err)
	}
	if len(fresh) != 3 {
		t.Fatalf("create should invalidate cache, got %d categories", len(fresh))
	}

	boys, err := f.categories.ListPublic(ctx, "Boys")
	if err != nil {
		t.Fatalf("list boys failed: %v", err)
	}
	if len(boys) != 1 || boys[0].Name != "Boys Shirts" {
		t.Fatalf("gender filter failed: %+v", boys)
	}
}

func TestProductServiceValidation(t *testing.T) {
	f := setupCatalogFixture(t)

	_, err := f.products.Create(ProductInput{
		Name:          "X",
		StockQuantity: -1,
		CategoryID:    "not-a-uuid",
		ImageURLs:     []string{"https://cdn.example.com/a.jpg", "bad"},
		Sizes:         []string{"2-4"},
	})
	verr, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("want validation error, got %v", err)
	}
	if verr.Message != ProductInvalidMessage {
		t.Fatalf("unexpected message: %s", verr.Message)
	}
	want := map[string]string{
		"name":           "Product name must be at least 2 characters.",
		"price":          "Price must be a positive number.",
		"stock_quantity": "Stock quantity cannot be negative.",
		"category_id":    "A valid category must be selected.",
		"image_urls":     "Each additional image must be a valid URL.",
		"sizes":          "Sizes must be one of 0-1, 1-3, 3-6, 6-9, 9-12 or 12-15.",
	}
	for field, msg := range want {
		if verr.Fields[field] != msg {
			t.Fatalf("field %s want %q, got %q", field, msg, verr.Fields[field])
		}
	}

	// 格式正确但分类不存在
	_, err = f.products.Create(ProductInput{
		Name:       "Denim Jacket",
		Price:      models.NewMoneyFromFloat(20),
		CategoryID: "6f1c1a43-0000-4000-8000-000000000000",
	})
	verr, ok = AsValidationError(err)
	if !ok || verr.Fields["category_id"] != "A valid category must be selected." {
		t.Fatalf("unknown category should fail validation, got %v", err)
	}
}

func TestProductServiceCRUD(t *testing.T) {
	f := setupCatalogFixture(t)
	category := mustCreateCategory(t, f.categories, "Jackets", "boys")
	product := mustCreateProduct(t, f.products, category.ID, "Denim Jacket", 24.5, false)

	if len(product.Sizes) != 2 || product.Sizes[1] != "3-6" {
		t.Fatalf("sizes should be trimmed, got %v", product.Sizes)
	}

	updated, err := f.products.Update(product.ID, ProductInput{
		Name:          "Denim Jacket Blue",
		Price:         models.NewMoneyFromFloat(26),
		StockQuantity: 0,
		CategoryID:    category.ID,
		IsTrending:    true,
	})
	if err != nil {
		t.Fatalf("update product failed: %v", err)
	}
	if updated.Name != "Denim Jacket Blue" || !updated.IsTrending || updated.Price.String() != "26.00" {
		t.Fatalf("unexpected updated product: %+v", updated)
	}

	if _, err := f.products.Get(""); !errors.Is(err, ErrProductIDMissing) {
		t.Fatalf("empty id want ErrProductIDMissing, got %v", err)
	}
	if err := f.products.Delete(product.ID); err != nil {
		t.Fatalf("delete product failed: %v", err)
	}
	if _, err := f.products.GetPublic(product.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted product want ErrNotFound, got %v", err)
	}
}

func TestProductServiceListPublic(t *testing.T) {
	f := setupCatalogFixture(t)
	girls := mustCreateCategory(t, f.categories, "Girls Dresses", "girls")
	boys := mustCreateCategory(t, f.categories, "Boys Shorts", "boys")
	mustCreateProduct(t, f.products, girls.ID, "Floral Dress", 30, true)
	mustCreateProduct(t, f.products, girls.ID, "Linen Dress", 12, false)
	mustCreateProduct(t, f.products, boys.ID, "Cargo Shorts", 15, true)

	items, total, err := f.products.ListPublic(PublicListInput{Category: "girls-dresses", Sort: "price.asc", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list by category failed: %v", err)
	}
	if total != 2 || len(items) != 2 || items[0].Name != "Linen Dress" {
		t.Fatalf("unexpected category listing: total=%d items=%+v", total, items)
	}
	if items[0].Category == nil || items[0].Category.Name != "Girls Dresses" {
		t.Fatalf("category should be preloaded")
	}

	items, _, err = f.products.ListPublic(PublicListInput{MinPrice: "13", MaxPrice: "abc", Sort: "name.desc"})
	if err != nil {
		t.Fatalf("list by price failed: %v", err)
	}
	if len(items) != 2 || items[0].Name != "Floral Dress" || items[1].Name != "Cargo Shorts" {
		t.Fatalf("invalid max price should be ignored: %+v", items)
	}

	items, total, err = f.products.ListPublic(PublicListInput{Category: "no-such-category"})
	if err != nil {
		t.Fatalf("list unknown category failed: %v", err)
	}
	if total != 0 || len(items) != 0 || items == nil {
		t.Fatalf("unknown category should yield empty list, got %v", items)
	}
}

func TestProductServiceTrendingAndIsNew(t *testing.T) {
	f := setupCatalogFixture(t)
	category := mustCreateCategory(t, f.categories, "Knitwear", "")
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	rows := []struct {
		name     string
		age      time.Duration
		trending bool
	}{
		{name: "Old Cardigan", age: 30 * 24 * time.Hour, trending: true},
		{name: "New Sweater", age: 2 * 24 * time.Hour, trending: true},
		{name: "Newest Vest", age: time.Hour, trending: true},
		{name: "Plain Scarf", age: time.Hour, trending: false},
	}
	for _, row := range rows {
		product := models.Product{
			Name:       row.name,
			Price:      models.NewMoneyFromFloat(10),
			CategoryID: category.ID,
			IsTrending: row.trending,
			CreatedAt:  now.Add(-row.age),
		}
		if err := f.db.Omit("Category").Create(&product).Error; err != nil {
			t.Fatalf("create product failed: %v", err)
		}
	}
	f.products.now = func() time.Time { return now }

	trending, err := f.products.ListTrending()
	if err != nil {
		t.Fatalf("list trending failed: %v", err)
	}
	if len(trending) != 2 {
		t.Fatalf("trending limit should apply, got %d", len(trending))
	}
	if trending[0].Name != "Newest Vest" || trending[1].Name != "New Sweater" {
		t.Fatalf("trending should be newest first: %s, %s", trending[0].Name, trending[1].Name)
	}
	if !trending[0].IsNew || !trending[1].IsNew {
		t.Fatalf("recent products should be marked new")
	}

	all, _, err := f.products.ListPublic(PublicListInput{Sort: "created_at.asc"})
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if all[0].Name != "Old Cardigan" || all[0].IsNew {
		t.Fatalf("old product should not be new: %+v", all[0])
	}
}

func TestParseProductSort(t *testing.T) {
	cases := []struct {
		raw   string
		field string
		desc  bool
	}{
		{raw: "", field: "created_at", desc: true},
		{raw: "price.asc", field: "price", desc: false},
		{raw: "PRICE.DESC", field: "price", desc: true},
		{raw: "name", field: "name", desc: false},
		{raw: "stock_quantity.desc", field: "created_at", desc: true},
	}
	for _, tc := range cases {
		field, desc := ParseProductSort(tc.raw)
		if field != tc.field || desc != tc.desc {
			t.Fatalf("sort %q want %s/%v, got %s/%v", tc.raw, tc.field, tc.desc, field, desc)
		}
	}
}

func TestProductServiceFindByIDs(t *testing.T) {
	f := setupCatalogFixture(t)
	category := mustCreateCategory(t, f.categories, "Socks", "")
	a := mustCreateProduct(t, f.products, category.ID, "Ankle Socks", 4, false)
	b := mustCreateProduct(t, f.products, category.ID, "Knee Socks", 5, false)

	found, err := f.products.FindByIDs([]string{a.ID, b.ID, "missing"})
	if err != nil {
		t.Fatalf("find by ids failed: %v", err)
	}
	if len(found) != 2 || found[a.ID].Name != "Ankle Socks" || found[b.ID].Name != "Knee Socks" {
		t.Fatalf("unexpected lookup result: %+v", found)
	}
}
