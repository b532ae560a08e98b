package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category 商品分类
type Category struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Slug        string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:varchar(500)" json:"description"`
	ImageURL    string    `gorm:"type:varchar(500)" json:"image_url"`
	Gender      string    `gorm:"type:varchar(10);not null;default:'unisex';index" json:"gender"` // boys/girls/unisex
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}

// BeforeCreate 生成主键
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
