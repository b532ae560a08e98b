package repository

import (
	"strings"

	"github.com/tinythreads/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, int64, error)
	GetByID(id string) (*models.Product, error)
	ListByIDs(ids []string) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	Count() (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Transaction 执行事务
func (r *GormProductRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 商品列表
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	query := r.db.Model(&models.Product{})
	if filter.WithCategory {
		query = query.Preload("Category")
	}
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.OnlyTrending {
		query = query.Where("is_trending = ?", true)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", filter.MinPrice.String())
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", filter.MaxPrice.String())
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := likePattern(strings.ToLower(search))
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	products := make([]models.Product, 0)
	if err := query.Order(productOrder(filter.SortField, filter.SortDesc)).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// productOrder 使用白名单构建排序子句，id 作为稳定的次序
func productOrder(field string, desc bool) string {
	switch field {
	case ProductSortPrice, ProductSortName, ProductSortCreatedAt:
	default:
		field = ProductSortCreatedAt
	}
	direction := "ASC"
	if desc {
		direction = "DESC"
	}
	return field + " " + direction + ", id ASC"
}

// GetByID 根据 ID 获取商品（含分类）
func (r *GormProductRepository) GetByID(id string) (*models.Product, error) {
	return firstOrNil[models.Product](r.db.Preload("Category").Where("id = ?", id))
}

// ListByIDs 批量获取商品
func (r *GormProductRepository) ListByIDs(ids []string) ([]models.Product, error) {
	products := make([]models.Product, 0, len(ids))
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.Preload("Category").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Create 创建商品
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Omit("Category").Create(product).Error
}

// Update 更新商品
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Omit("Category").Save(product).Error
}

// Delete 删除商品
func (r *GormProductRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Product{}).Error
}

// Count 商品总数
func (r *GormProductRepository) Count() (int64, error) {
	return countOf(r.db.Model(&models.Product{}))
}
