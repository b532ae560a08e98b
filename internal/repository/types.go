package repository

import "github.com/shopspring/decimal"

// 商品列表排序字段
const (
	ProductSortCreatedAt = "created_at"
	ProductSortPrice     = "price"
	ProductSortName      = "name"
)

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryID   string
	Search       string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	OnlyTrending bool
	SortField    string // created_at / price / name，其余值按 created_at 处理
	SortDesc     bool
	WithCategory bool
}

// CategoryListFilter 查询分类列表的过滤条件
type CategoryListFilter struct {
	Gender string
	Search string
}

// InquiryListFilter 查询询价单列表的过滤条件
type InquiryListFilter struct {
	Page     int
	PageSize int
	Status   string
	Search   string
}
