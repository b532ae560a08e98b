package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InquiryCartItem 提交询价时的购物车快照条目
type InquiryCartItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    *Money  `json:"price,omitempty"`
	Quantity int     `json:"quantity"`
	ImageURL *string `json:"image_url,omitempty"`
}

// InquiryCartItems 快照列表，空列表持久化为 NULL
type InquiryCartItems []InquiryCartItem

// Value 实现 driver.Valuer
func (items InquiryCartItems) Value() (driver.Value, error) {
	if len(items) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner
func (items *InquiryCartItems) Scan(value any) error {
	raw, err := scanJSONBytes(value)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*items = nil
		return nil
	}
	return json.Unmarshal(raw, items)
}

// Inquiry 询价单
type Inquiry struct {
	ID        string           `gorm:"type:varchar(36);primaryKey" json:"id"`
	FirstName string           `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName  string           `gorm:"type:varchar(100);not null" json:"last_name"`
	Email     string           `gorm:"type:varchar(255);not null;index" json:"email"`
	Phone     *string          `gorm:"type:varchar(30)" json:"phone"`
	Subject   string           `gorm:"type:varchar(255);not null" json:"subject"`
	Message   string           `gorm:"type:text;not null" json:"message"`
	Status    string           `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	CartItems InquiryCartItems `gorm:"type:json" json:"cart_items"`
	CreatedAt time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// TableName 指定表名
func (Inquiry) TableName() string {
	return "inquiries"
}

// BeforeCreate 生成主键并填充默认状态
func (i *Inquiry) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Status == "" {
		i.Status = "new"
	}
	return nil
}

// FullName 姓名
func (i Inquiry) FullName() string {
	if i.LastName == "" {
		return i.FirstName
	}
	return i.FirstName + " " + i.LastName
}
