package repository

import (
	"errors"

	"gorm.io/gorm"
)

// firstOrNil 查询单条记录，不存在时返回 nil, nil
func firstOrNil[T any](query *gorm.DB) (*T, error) {
	var record T
	if err := query.First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// countOf 统计模型数量
func countOf(query *gorm.DB) (int64, error) {
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
