package repository

import "gorm.io/gorm"

// applyPagination 应用分页参数，pageSize <= 0 时不分页
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if page < 1 {
		page = 1
	}
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}

// likePattern 包装为 LIKE 模式
func likePattern(value string) string {
	return "%" + value + "%"
}
