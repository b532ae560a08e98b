package repository

import (
	"strings"

	"github.com/tinythreads/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository 分类数据访问接口
type CategoryRepository interface {
	List(filter CategoryListFilter) ([]models.Category, error)
	GetByID(id string) (*models.Category, error)
	GetBySlug(slug string) (*models.Category, error)
	GetByName(name string, caseInsensitive bool) (*models.Category, error)
	Create(category *models.Category) error
	Update(category *models.Category) error
	Delete(id string) error
	CountBySlug(slug string, excludeID *string) (int64, error)
	CountProducts(categoryID string) (int64, error)
	Count() (int64, error)
}

// GormCategoryRepository GORM 实现
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓库
func NewCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// List 分类列表，按名称排序
func (r *GormCategoryRepository) List(filter CategoryListFilter) ([]models.Category, error) {
	query := r.db.Model(&models.Category{})
	if gender := strings.TrimSpace(filter.Gender); gender != "" {
		query = query.Where("gender = ?", gender)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(strings.ToLower(search)))
	}
	categories := make([]models.Category, 0)
	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// GetByID 根据 ID 获取分类
func (r *GormCategoryRepository) GetByID(id string) (*models.Category, error) {
	return firstOrNil[models.Category](r.db.Where("id = ?", id))
}

// GetBySlug 根据 slug 获取分类
func (r *GormCategoryRepository) GetBySlug(slug string) (*models.Category, error) {
	return firstOrNil[models.Category](r.db.Where("slug = ?", slug))
}

// GetByName 根据名称获取分类
func (r *GormCategoryRepository) GetByName(name string, caseInsensitive bool) (*models.Category, error) {
	if caseInsensitive {
		return firstOrNil[models.Category](r.db.Where("LOWER(name) = ?", strings.ToLower(name)))
	}
	return firstOrNil[models.Category](r.db.Where("name = ?", name))
}

// Create 创建分类
func (r *GormCategoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

// Update 更新分类
func (r *GormCategoryRepository) Update(category *models.Category) error {
	return r.db.Save(category).Error
}

// Delete 删除分类
func (r *GormCategoryRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Category{}).Error
}

// CountBySlug 统计 slug 数量
func (r *GormCategoryRepository) CountBySlug(slug string, excludeID *string) (int64, error) {
	query := r.db.Model(&models.Category{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	return countOf(query)
}

// CountProducts 统计某分类下商品数
func (r *GormCategoryRepository) CountProducts(categoryID string) (int64, error) {
	return countOf(r.db.Model(&models.Product{}).Where("category_id = ?", categoryID))
}

// Count 分类总数
func (r *GormCategoryRepository) Count() (int64, error) {
	return countOf(r.db.Model(&models.Category{}))
}
