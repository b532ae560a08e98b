package service

import (
	"strings"
	"time"

	"github.com/tinythreads/internal/config"
	"github.com/tinythreads/internal/models"
	"github.com/tinythreads/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductInvalidMessage 商品校验失败提示
const ProductInvalidMessage = "Invalid fields for product."

const (
	defaultNewProductDays = 7
	defaultTrendingLimit  = 10
	defaultProductSort    = "created_at.desc"
)

var productFieldRules = fieldRules{
	"name": {
		"":    "Product name must be at least 2 characters.",
		"max": "Product name must be at most 255 characters.",
	},
	"description": {
		"": "Description must be at most 1000 characters.",
	},
	"stock_quantity": {
		"": "Stock quantity cannot be negative.",
	},
	"category_id": {
		"": "A valid category must be selected.",
	},
	"image_url": {
		"": "Image URL must be a valid URL.",
	},
	"image_urls": {
		"": "Each additional image must be a valid URL.",
	},
	"sizes": {
		"": "Sizes must be one of 0-1, 1-3, 3-6, 6-9, 9-12 or 12-15.",
	},
}

// ProductService 商品业务服务
type ProductService struct {
	repo       repository.ProductRepository
	categories *CategoryService
	store      config.StoreConfig
	now        func() time.Time
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, categories *CategoryService, store config.StoreConfig) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		store:      store,
		now:        time.Now,
	}
}

// ProductInput 创建/更新商品输入
type ProductInput struct {
	Name          string       `json:"name" validate:"min=2,max=255"`
	Description   string       `json:"description" validate:"max=1000"`
	Price         models.Money `json:"price" validate:"-"`
	StockQuantity int          `json:"stock_quantity" validate:"gte=0"`
	CategoryID    string       `json:"category_id" validate:"required,uuid"`
	ImageURL      string       `json:"image_url" validate:"omitempty,imageref"`
	ImageURLs     []string     `json:"image_urls" validate:"omitempty,dive,imageref"`
	Sizes         []string     `json:"sizes" validate:"omitempty,dive,oneof=0-1 1-3 3-6 6-9 9-12 12-15"`
	IsTrending    bool         `json:"is_trending"`
}

func (in ProductInput) normalize() ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.ImageURLs = compactStrings(in.ImageURLs)
	in.Sizes = compactStrings(in.Sizes)
	return in
}

// ProductView 对外输出的商品，附带新品标记
type ProductView struct {
	models.Product
	IsNew bool `json:"is_new"`
}

// PublicListInput 前台商品列表参数
type PublicListInput struct {
	Category string
	MinPrice string
	MaxPrice string
	Sort     string
	Page     int
	PageSize int
}

// AdminListInput 后台商品列表参数
type AdminListInput struct {
	CategoryID string
	Search     string
	Page       int
	PageSize   int
}

// ParseProductSort 解析 "field.direction"，非法字段回退到 created_at
func ParseProductSort(raw string) (string, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		raw = defaultProductSort
	}
	field, direction, _ := strings.Cut(raw, ".")
	switch field {
	case repository.ProductSortCreatedAt, repository.ProductSortPrice, repository.ProductSortName:
	default:
		return repository.ProductSortCreatedAt, true
	}
	return field, direction == "desc"
}

// ListPublic 前台商品列表；分类无法解析时返回空列表
func (s *ProductService) ListPublic(input PublicListInput) ([]ProductView, int64, error) {
	filter := repository.ProductListFilter{
		Page:         input.Page,
		PageSize:     input.PageSize,
		MinPrice:     parsePriceBound(input.MinPrice),
		MaxPrice:     parsePriceBound(input.MaxPrice),
		WithCategory: true,
	}
	filter.SortField, filter.SortDesc = ParseProductSort(input.Sort)

	if ref := strings.TrimSpace(input.Category); ref != "" {
		categoryID, err := s.categories.ResolveCategoryID(ref)
		if err != nil {
			return nil, 0, err
		}
		if categoryID == "" {
			return []ProductView{}, 0, nil
		}
		filter.CategoryID = categoryID
	}

	products, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	return s.views(products), total, nil
}

// ListTrending 热门商品，新品在前
func (s *ProductService) ListTrending() ([]ProductView, error) {
	limit := s.store.TrendingLimit
	if limit <= 0 {
		limit = defaultTrendingLimit
	}
	products, _, err := s.repo.List(repository.ProductListFilter{
		Page:         1,
		PageSize:     limit,
		OnlyTrending: true,
		SortField:    repository.ProductSortCreatedAt,
		SortDesc:     true,
		WithCategory: true,
	})
	if err != nil {
		return nil, err
	}
	return s.views(products), nil
}

// ListAdmin 后台商品列表
func (s *ProductService) ListAdmin(input AdminListInput) ([]models.Product, int64, error) {
	return s.repo.List(repository.ProductListFilter{
		Page:         input.Page,
		PageSize:     input.PageSize,
		CategoryID:   strings.TrimSpace(input.CategoryID),
		Search:       input.Search,
		SortField:    repository.ProductSortCreatedAt,
		SortDesc:     true,
		WithCategory: true,
	})
}

// Get 获取商品详情
func (s *ProductService) Get(id string) (*models.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrProductIDMissing
	}
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// GetPublic 前台商品详情
func (s *ProductService) GetPublic(id string) (*ProductView, error) {
	product, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	view := s.view(*product)
	return &view, nil
}

// FindByIDs 批量读取商品，按 ID 建索引
func (s *ProductService) FindByIDs(ids []string) (map[string]models.Product, error) {
	products, err := s.repo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.Product, len(products))
	for _, product := range products {
		out[product.ID] = product
	}
	return out, nil
}

// Create 创建商品
func (s *ProductService) Create(input ProductInput) (*models.Product, error) {
	input = input.normalize()
	if err := s.validate(input); err != nil {
		return nil, err
	}
	product := models.Product{}
	applyProductInput(&product, input)
	if err := s.repo.Create(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update 更新商品
func (s *ProductService) Update(id string, input ProductInput) (*models.Product, error) {
	product, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	input = input.normalize()
	if err := s.validate(input); err != nil {
		return nil, err
	}
	applyProductInput(product, input)
	product.Category = nil
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete 删除商品
func (s *ProductService) Delete(id string) error {
	product, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.repo.Delete(product.ID)
}

func (s *ProductService) validate(input ProductInput) error {
	fields := collectFieldErrors(input, productFieldRules)
	if !input.Price.IsPositive() {
		fields["price"] = "Price must be a positive number."
	}
	if _, bad := fields["category_id"]; !bad {
		category, err := s.categories.repo.GetByID(input.CategoryID)
		if err != nil {
			return err
		}
		if category == nil {
			fields["category_id"] = productFieldRules.message("category_id", "")
		}
	}
	return toValidationError(ProductInvalidMessage, fields)
}

func applyProductInput(product *models.Product, input ProductInput) {
	product.Name = input.Name
	product.Description = input.Description
	product.Price = models.NewMoneyFromDecimal(input.Price.Decimal)
	product.StockQuantity = input.StockQuantity
	product.CategoryID = input.CategoryID
	product.ImageURL = input.ImageURL
	product.ImageURLs = models.StringArray(input.ImageURLs)
	product.Sizes = models.StringArray(input.Sizes)
	product.IsTrending = input.IsTrending
}

func (s *ProductService) views(products []models.Product) []ProductView {
	out := make([]ProductView, 0, len(products))
	for _, product := range products {
		out = append(out, s.view(product))
	}
	return out
}

func (s *ProductService) view(product models.Product) ProductView {
	return ProductView{Product: product, IsNew: product.IsNew(s.now(), s.newProductDays())}
}

func (s *ProductService) newProductDays() int {
	if s.store.NewProductDays > 0 {
		return s.store.NewProductDays
	}
	return defaultNewProductDays
}

// parsePriceBound 非法或空值视为不过滤
func parsePriceBound(raw string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &value
}

func compactStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
