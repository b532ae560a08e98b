package repository

import (
	"time"

	"github.com/tinythreads/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository 后台仪表盘聚合查询
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetOverview(since time.Time) (DashboardOverviewRow, error)
	GetCategoryBreakdown(limit int) ([]DashboardCategoryRow, error)
	GetInquiryTrends(startAt, endAt time.Time) ([]DashboardInquiryTrendRow, error)
}

// DashboardOverviewRow 总览统计
type DashboardOverviewRow struct {
	CategoryCount    int64
	ProductCount     int64
	TrendingProducts int64
	OutOfStock       int64
	NewProducts      int64
	InquiryCount     int64
}

// DashboardCategoryRow 分类下商品数量
type DashboardCategoryRow struct {
	CategoryID   string
	CategoryName string
	ProductCount int64
}

// DashboardInquiryTrendRow 每日询价数量
type DashboardInquiryTrendRow struct {
	Day   string
	Total int64
}

// GormDashboardRepository GORM 实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// GetOverview 总览，since 用于统计新品数量
func (r *GormDashboardRepository) GetOverview(since time.Time) (DashboardOverviewRow, error) {
	var row DashboardOverviewRow
	var err error
	if row.CategoryCount, err = countOf(r.db.Model(&models.Category{})); err != nil {
		return row, err
	}
	if row.ProductCount, err = countOf(r.db.Model(&models.Product{})); err != nil {
		return row, err
	}
	if row.TrendingProducts, err = countOf(r.db.Model(&models.Product{}).Where("is_trending = ?", true)); err != nil {
		return row, err
	}
	if row.OutOfStock, err = countOf(r.db.Model(&models.Product{}).Where("stock_quantity <= 0")); err != nil {
		return row, err
	}
	if row.NewProducts, err = countOf(r.db.Model(&models.Product{}).Where("created_at >= ?", since)); err != nil {
		return row, err
	}
	if row.InquiryCount, err = countOf(r.db.Model(&models.Inquiry{})); err != nil {
		return row, err
	}
	return row, nil
}

// GetCategoryBreakdown 商品数最多的分类
func (r *GormDashboardRepository) GetCategoryBreakdown(limit int) ([]DashboardCategoryRow, error) {
	rows := make([]DashboardCategoryRow, 0)
	query := r.db.Table("categories c").
		Select("c.id AS category_id, c.name AS category_name, COUNT(p.id) AS product_count").
		Joins("LEFT JOIN products p ON p.category_id = c.id").
		Group("c.id, c.name").
		Order("product_count DESC, c.name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetInquiryTrends 按天统计询价数量，day 为 UTC 日期
func (r *GormDashboardRepository) GetInquiryTrends(startAt, endAt time.Time) ([]DashboardInquiryTrendRow, error) {
	var created []time.Time
	if err := r.db.Model(&models.Inquiry{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Order("created_at ASC").
		Pluck("created_at", &created).Error; err != nil {
		return nil, err
	}
	// 在 Go 侧按天分组，避免不同数据库的日期函数差异
	rows := make([]DashboardInquiryTrendRow, 0)
	index := make(map[string]int)
	for _, at := range created {
		day := at.UTC().Format("2006-01-02")
		if i, ok := index[day]; ok {
			rows[i].Total++
			continue
		}
		index[day] = len(rows)
		rows = append(rows, DashboardInquiryTrendRow{Day: day, Total: 1})
	}
	return rows, nil
}
