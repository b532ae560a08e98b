package cart

import "github.com/tinythreads/internal/models"

// LineItem 购物车行，按商品 ID 唯一
type LineItem struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Price    *models.Money `json:"price"` // nil 表示询价，不等同于 0
	Image    string        `json:"image,omitempty"`
	Quantity int           `json:"quantity"`
	Category string        `json:"category,omitempty"`
	IsNew    bool          `json:"isNew,omitempty"`
}

func (item LineItem) clone() LineItem {
	if item.Price != nil {
		price := *item.Price
		item.Price = &price
	}
	return item
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, item := range items {
		out[i] = item.clone()
	}
	return out
}
