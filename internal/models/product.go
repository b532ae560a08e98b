package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product 商品
type Product struct {
	ID            string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name          string      `gorm:"type:varchar(255);not null;index" json:"name"`
	Description   string      `gorm:"type:varchar(1000)" json:"description"`
	Price         Money       `gorm:"type:decimal(20,2);not null;default:0;index" json:"price"`
	StockQuantity int         `gorm:"not null;default:0" json:"stock_quantity"`
	CategoryID    string      `gorm:"type:varchar(36);not null;index" json:"category_id"`
	ImageURL      string      `gorm:"type:varchar(500)" json:"image_url"`
	ImageURLs     StringArray `gorm:"type:json" json:"image_urls"`
	Sizes         StringArray `gorm:"type:json" json:"sizes"`
	IsTrending    bool        `gorm:"not null;default:false;index" json:"is_trending"`
	CreatedAt     time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"category,omitempty"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// BeforeCreate 生成主键
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// IsNew 创建时间在最近 days 天内
func (p Product) IsNew(now time.Time, days int) bool {
	if days <= 0 || p.CreatedAt.IsZero() {
		return false
	}
	return now.Sub(p.CreatedAt) <= time.Duration(days)*24*time.Hour
}

// PrimaryImage 主图，缺省时取图集第一张
func (p Product) PrimaryImage() string {
	if p.ImageURL != "" {
		return p.ImageURL
	}
	if len(p.ImageURLs) > 0 {
		return p.ImageURLs[0]
	}
	return ""
}
