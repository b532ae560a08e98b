package repository

import (
	"strings"
	"time"

	"github.com/tinythreads/internal/models"

	"gorm.io/gorm"
)

// InquiryRepository 询价单数据访问接口
type InquiryRepository interface {
	Create(inquiry *models.Inquiry) error
	GetByID(id string) (*models.Inquiry, error)
	List(filter InquiryListFilter) ([]models.Inquiry, int64, error)
	UpdateStatus(id, status string, at time.Time) (int64, error)
	CountByStatus() (map[string]int64, error)
}

// GormInquiryRepository GORM 实现
type GormInquiryRepository struct {
	db *gorm.DB
}

// NewInquiryRepository 创建询价单仓库
func NewInquiryRepository(db *gorm.DB) *GormInquiryRepository {
	return &GormInquiryRepository{db: db}
}

// Create 创建询价单
func (r *GormInquiryRepository) Create(inquiry *models.Inquiry) error {
	return r.db.Create(inquiry).Error
}

// GetByID 根据 ID 获取询价单
func (r *GormInquiryRepository) GetByID(id string) (*models.Inquiry, error) {
	return firstOrNil[models.Inquiry](r.db.Where("id = ?", id))
}

// List 询价单列表，按创建时间倒序
func (r *GormInquiryRepository) List(filter InquiryListFilter) ([]models.Inquiry, int64, error) {
	query := r.db.Model(&models.Inquiry{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := likePattern(strings.ToLower(search))
		query = query.Where("LOWER(email) LIKE ? OR LOWER(subject) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	inquiries := make([]models.Inquiry, 0)
	if err := query.Order("created_at DESC, id ASC").Find(&inquiries).Error; err != nil {
		return nil, 0, err
	}
	return inquiries, total, nil
}

// UpdateStatus 更新状态，返回受影响行数
func (r *GormInquiryRepository) UpdateStatus(id, status string, at time.Time) (int64, error) {
	result := r.db.Model(&models.Inquiry{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": at})
	return result.RowsAffected, result.Error
}

// CountByStatus 按状态统计数量
func (r *GormInquiryRepository) CountByStatus() (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}
	var rows []row
	if err := r.db.Model(&models.Inquiry{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, item := range rows {
		out[item.Status] = item.Total
	}
	return out, nil
}
