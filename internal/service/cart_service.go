package service

import (
	"context"
	"errors"
	"strings"

	"github.com/tinythreads/internal/cart"
	"github.com/tinythreads/internal/config"
	"github.com/tinythreads/internal/inquiry"
	"github.com/tinythreads/internal/logger"
	"github.com/tinythreads/internal/models"
	"github.com/tinythreads/internal/whatsapp"
)

// CartSlotProvider 按会话提供存储槽位（Redis 或内存）
type CartSlotProvider interface {
	Slot(sessionID string) cart.Slot
}

// AddCartItemInput 加入购物车输入，缺省字段从商品目录补全
type AddCartItemInput struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Price    *models.Money `json:"price"`
	Image    string        `json:"image"`
	Quantity int           `json:"quantity"`
	Category string        `json:"category"`
}

// CartView 购物车响应
type CartView struct {
	Items      []cart.LineItem `json:"items"`
	TotalItems int             `json:"total_items"`
	Subtotal   models.Money    `json:"subtotal"`
}

// CartService 会话购物车服务
type CartService struct {
	slots    CartSlotProvider
	products *ProductService
	store    config.StoreConfig
}

// NewCartService 创建购物车服务
func NewCartService(slots CartSlotProvider, products *ProductService, store config.StoreConfig) *CartService {
	return &CartService{slots: slots, products: products, store: store}
}

// Open 打开会话购物车并立即加载
func (s *CartService) Open(ctx context.Context, sessionID string) (*cart.Store, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || s.slots == nil {
		return nil, ErrCartUnavailable
	}
	return cart.Open(ctx, s.slots.Slot(sessionID), logger.SW("session_id", sessionID)), nil
}

// View 当前购物车
func (s *CartService) View(ctx context.Context, sessionID string) (*CartView, error) {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return viewOf(store), nil
}

// Add 加入购物车
func (s *CartService) Add(ctx context.Context, sessionID string, input AddCartItemInput) (*CartView, error) {
	input.ID = strings.TrimSpace(input.ID)
	if input.ID == "" {
		return nil, ErrCartItemInvalid
	}
	item, err := s.completeItem(input)
	if err != nil {
		return nil, err
	}
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := store.Add(ctx, item); err != nil {
		return nil, storeError(err)
	}
	return viewOf(store), nil
}

// UpdateQuantity 修改数量，小于 1 时移除
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (*CartView, error) {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := store.UpdateQuantity(ctx, strings.TrimSpace(itemID), quantity); err != nil {
		return nil, storeError(err)
	}
	return viewOf(store), nil
}

// Remove 移除商品
func (s *CartService) Remove(ctx context.Context, sessionID, itemID string) (*CartView, error) {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := store.Remove(ctx, strings.TrimSpace(itemID)); err != nil {
		return nil, storeError(err)
	}
	return viewOf(store), nil
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return err
	}
	return storeError(store.Clear(ctx))
}

// WhatsAppLink 生成 WhatsApp 询价链接，提示类错误为 *whatsapp.Notice
func (s *CartService) WhatsAppLink(ctx context.Context, sessionID string) (string, error) {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return whatsapp.Compose(store.Items(), whatsapp.Config{
		Phone:  s.store.WhatsAppPhone,
		Origin: s.store.SiteOrigin,
	})
}

// SubmitInquiry 带购物车快照提交询价，成功后清空购物车
func (s *CartService) SubmitInquiry(ctx context.Context, sessionID string, form inquiry.Form, submitter inquiry.Submitter) (inquiry.State, error) {
	store, err := s.Open(ctx, sessionID)
	if err != nil {
		return inquiry.State{}, err
	}
	form.CartItems = inquiry.CartSnapshot(store.Items())
	workflow := inquiry.NewWorkflow(submitter,
		inquiry.WithCartReset(store.Clear),
		inquiry.WithLogger(logger.SW("session_id", sessionID)),
	)
	return workflow.Submit(ctx, &inquiry.FormState{Values: form}), nil
}

// completeItem 名称、价格、图片缺失时按 ID 从商品目录补全
func (s *CartService) completeItem(input AddCartItemInput) (cart.LineItem, error) {
	item := cart.LineItem{
		ID:       input.ID,
		Name:     strings.TrimSpace(input.Name),
		Price:    input.Price,
		Image:    strings.TrimSpace(input.Image),
		Quantity: input.Quantity,
		Category: strings.TrimSpace(input.Category),
	}
	if item.Name != "" && item.Price != nil && item.Image != "" {
		return item, nil
	}
	if s.products == nil {
		if item.Name == "" {
			return item, ErrCartItemInvalid
		}
		return item, nil
	}

	product, err := s.products.GetPublic(item.ID)
	if errors.Is(err, ErrNotFound) {
		if item.Name == "" {
			return item, ErrNotFound
		}
		return item, nil
	}
	if err != nil {
		return item, err
	}
	if item.Name == "" {
		item.Name = product.Name
	}
	if item.Price == nil {
		item.Price = models.MoneyPtr(product.Price)
	}
	if item.Image == "" {
		item.Image = product.PrimaryImage()
	}
	if item.Category == "" && product.Category != nil {
		item.Category = product.Category.Name
	}
	item.IsNew = product.IsNew
	return item, nil
}

func viewOf(store *cart.Store) *CartView {
	return &CartView{
		Items:      store.Items(),
		TotalItems: store.TotalItems(),
		Subtotal:   store.Subtotal(),
	}
}

func storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, cart.ErrItemIDRequired) {
		return ErrCartItemInvalid
	}
	return errors.Join(ErrCartUnavailable, err)
}
