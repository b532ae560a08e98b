// Package inquiry 定义询价表单的校验规则、提交结果结构与客户端提交流程。
// 服务端与客户端流程共用同一份校验规则。
package inquiry

import (
	"encoding/json"
	"strings"

	"github.com/tinythreads/internal/cart"
	"github.com/tinythreads/internal/models"
)

// Field 表单字段名（与 JSON 字段一致）
type Field string

const (
	FieldFirstName Field = "firstName"
	FieldLastName  Field = "lastName"
	FieldEmail     Field = "email"
	FieldPhone     Field = "phone"
	FieldSubject   Field = "subject"
	FieldMessage   Field = "message"
	FieldCartItems Field = "cartItems"
)

// Fields 全部字段，顺序即表单展示顺序
var Fields = []Field{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPhone,
	FieldSubject,
	FieldMessage,
	FieldCartItems,
}

// Known 是否为已知字段
func (f Field) Known() bool {
	for _, field := range Fields {
		if field == f {
			return true
		}
	}
	return false
}

// FieldErrors 字段到错误文案的映射
type FieldErrors map[Field]string

// UnmarshalJSON 丢弃未知字段，避免回放到不存在的表单项
func (fe *FieldErrors) UnmarshalJSON(b []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(FieldErrors, len(raw))
	for k, v := range raw {
		if f := Field(k); f.Known() {
			out[f] = v
		}
	}
	*fe = out
	return nil
}

// Form 询价表单
type Form struct {
	FirstName string       `json:"firstName" validate:"required,max=100"`
	LastName  string       `json:"lastName" validate:"required,max=100"`
	Email     string       `json:"email" validate:"required,email,max=255"`
	Phone     string       `json:"phone" validate:"omitempty,max=30"`
	Subject   string       `json:"subject" validate:"required,min=3,max=255"`
	Message   string       `json:"message" validate:"required,min=10,max=2000"`
	CartItems CartItemList `json:"cartItems,omitempty" validate:"omitempty,dive"`
}

// CartItem 随询价提交的购物车快照条目
type CartItem struct {
	ID       string        `json:"id" validate:"required"`
	Name     string        `json:"name" validate:"required"`
	Price    *models.Money `json:"price" validate:"-"`
	Quantity int           `json:"quantity" validate:"gte=1"`
	ImageURL *string       `json:"image_url,omitempty"`
}

// CartItemList 快照列表
type CartItemList []CartItem

// Normalize 去除首尾空白
func (f Form) Normalize() Form {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Subject = strings.TrimSpace(f.Subject)
	f.Message = strings.TrimSpace(f.Message)
	return f
}

// CartSnapshot 复制当前购物车，之后与购物车解耦
func CartSnapshot(items []cart.LineItem) CartItemList {
	if len(items) == 0 {
		return nil
	}
	out := make(CartItemList, 0, len(items))
	for _, item := range items {
		snapshot := CartItem{ID: item.ID, Name: item.Name, Quantity: item.Quantity}
		if item.Price != nil {
			price := *item.Price
			snapshot.Price = &price
		}
		if item.Image != "" {
			image := item.Image
			snapshot.ImageURL = &image
		}
		out = append(out, snapshot)
	}
	return out
}

// ToModel 转换为持久化结构
func (items CartItemList) ToModel() models.InquiryCartItems {
	if len(items) == 0 {
		return nil
	}
	out := make(models.InquiryCartItems, 0, len(items))
	for _, item := range items {
		out = append(out, models.InquiryCartItem{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
			ImageURL: item.ImageURL,
		})
	}
	return out
}
