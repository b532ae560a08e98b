package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tinythreads/internal/cache"
	"github.com/tinythreads/internal/config"
	"github.com/tinythreads/internal/constants"
	"github.com/tinythreads/internal/repository"
)

const (
	dashboardCacheTTL       = 45 * time.Second
	dashboardTopCategories  = 5
	dashboardDefaultRange   = "14d"
	dashboardTrendMaxDays   = 90
	dashboardTrendDayLayout = "2006-01-02"
)

// DashboardService 仪表盘服务
// 说明：聚合后台首页的目录与询价数据。
type DashboardService struct {
	repo      repository.DashboardRepository
	inquiries repository.InquiryRepository
	store     config.StoreConfig
	now       func() time.Time
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(repo repository.DashboardRepository, inquiries repository.InquiryRepository, store config.StoreConfig) *DashboardService {
	return &DashboardService{repo: repo, inquiries: inquiries, store: store, now: time.Now}
}

// DashboardQueryInput 仪表盘查询输入
type DashboardQueryInput struct {
	Range        string // 7d / 14d / 30d / 90d
	ForceRefresh bool
}

// DashboardCategoryItem 分类商品数
type DashboardCategoryItem struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	ProductCount int64  `json:"product_count"`
}

// DashboardTrendPoint 每日询价数
type DashboardTrendPoint struct {
	Date  string `json:"date"`
	Total int64  `json:"total"`
}

// DashboardOverviewResponse 仪表盘总览
type DashboardOverviewResponse struct {
	CategoryCount         int64                   `json:"category_count"`
	ProductCount          int64                   `json:"product_count"`
	TrendingCount         int64                   `json:"trending_count"`
	OutOfStockCount       int64                   `json:"out_of_stock_count"`
	NewProductCount       int64                   `json:"new_product_count"`
	InquiryCount          int64                   `json:"inquiry_count"`
	InquiryCountsByStatus map[string]int64        `json:"inquiry_counts_by_status"`
	TopCategories         []DashboardCategoryItem `json:"top_categories"`
	InquiryTrend          []DashboardTrendPoint   `json:"inquiry_trend"`
	Range                 string                  `json:"range"`
}

// GetOverview 总览，短时缓存
func (s *DashboardService) GetOverview(ctx context.Context, input DashboardQueryInput) (*DashboardOverviewResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardOverviewResponse{}, nil
	}
	rangeKey, days, err := resolveDashboardRange(input.Range)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	cacheKey := fmt.Sprintf("dashboard:overview:%s:%s", rangeKey, now.Format(dashboardTrendDayLayout))
	if !input.ForceRefresh {
		var cached DashboardOverviewResponse
		if hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached); cacheErr == nil && hit {
			return &cached, nil
		}
	}

	newDays := s.store.NewProductDays
	if newDays <= 0 {
		newDays = defaultNewProductDays
	}
	overview, err := s.repo.GetOverview(now.AddDate(0, 0, -newDays))
	if err != nil {
		return nil, err
	}
	counts, err := s.inquiries.CountByStatus()
	if err != nil {
		return nil, err
	}
	byStatus := make(map[string]int64, len(constants.InquiryStatuses))
	for _, status := range constants.InquiryStatuses {
		byStatus[status] = counts[status]
	}

	categories, err := s.repo.GetCategoryBreakdown(dashboardTopCategories)
	if err != nil {
		return nil, err
	}
	top := make([]DashboardCategoryItem, 0, len(categories))
	for _, row := range categories {
		top = append(top, DashboardCategoryItem(row))
	}

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	startAt := todayStart.AddDate(0, 0, -(days - 1))
	endAt := todayStart.AddDate(0, 0, 1)
	trendRows, err := s.repo.GetInquiryTrends(startAt, endAt)
	if err != nil {
		return nil, err
	}

	response := &DashboardOverviewResponse{
		CategoryCount:         overview.CategoryCount,
		ProductCount:          overview.ProductCount,
		TrendingCount:         overview.TrendingProducts,
		OutOfStockCount:       overview.OutOfStock,
		NewProductCount:       overview.NewProducts,
		InquiryCount:          overview.InquiryCount,
		InquiryCountsByStatus: byStatus,
		TopCategories:         top,
		InquiryTrend:          fillTrend(trendRows, startAt, days),
		Range:                 rangeKey,
	}
	_ = cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL)
	return response, nil
}

func resolveDashboardRange(raw string) (string, int, error) {
	rangeKey := strings.ToLower(strings.TrimSpace(raw))
	if rangeKey == "" {
		rangeKey = dashboardDefaultRange
	}
	var days int
	if _, err := fmt.Sscanf(rangeKey, "%dd", &days); err != nil || days < 1 || days > dashboardTrendMaxDays {
		return "", 0, ErrInvalidInput
	}
	return fmt.Sprintf("%dd", days), days, nil
}

// fillTrend 补齐没有询价的日期
func fillTrend(rows []repository.DashboardInquiryTrendRow, startAt time.Time, days int) []DashboardTrendPoint {
	totals := make(map[string]int64, len(rows))
	for _, row := range rows {
		totals[row.Day] = row.Total
	}
	points := make([]DashboardTrendPoint, 0, days)
	for i := 0; i < days; i++ {
		day := startAt.AddDate(0, 0, i).Format(dashboardTrendDayLayout)
		points = append(points, DashboardTrendPoint{Date: day, Total: totals[day]})
	}
	return points
}
