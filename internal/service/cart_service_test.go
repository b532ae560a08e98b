package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tinythreads/internal/cart"
	"github.com/tinythreads/internal/config"
	"github.com/tinythreads/internal/inquiry"
	"github.com/tinythreads/internal/models"
	"github.com/tinythreads/internal/whatsapp"
)

type brokenSlot struct{}

func (brokenSlot) Get(context.Context) ([]byte, bool, error) { return nil, false, nil }
func (brokenSlot) Set(context.Context, []byte) error { return errors.New("slot write failed") }
func (brokenSlot) Delete(context.Context) error { return errors.New("slot delete failed") }

type brokenSlots struct{}

func (brokenSlots) Slot(string) cart.Slot { return brokenSlot{} }

func setupCartService(t *testing.T) (*CartService, *catalogFixture, *cart.MemorySlots) {
	t.Helper()
	f := setupCatalogFixture(t)
	slots := cart.NewMemorySlots()
	store := config.StoreConfig{WhatsAppPhone: "447700900123", SiteOrigin: "https://tinythreads.test"}
	return NewCartService(slots, f.products, store), f, slots
}

func TestCartServiceAddCompletesFromCatalog(t *testing.T) {
	svc, f, _ := setupCartService(t)
	ctx := context.Background()
	category := mustCreateCategory(t, f.categories, "Girls Dresses", "girls")
	product := mustCreateProduct(t, f.products, category.ID, "Floral Dress", 30, true)

	view, err := svc.Add(ctx, "sess-1", AddCartItemInput{ID: product.ID})
	if err != nil {
		t.Fatalf("add to cart failed: %v", err)
	}
	if len(view.Items) != 1 || view.TotalItems != 1 {
		t.Fatalf("unexpected cart: %+v", view)
	}
	item := view.Items[0]
	if item.Name != "Floral Dress" || item.Price == nil || item.Price.String() != "30.00" {
		t.Fatalf("item should be completed from catalog: %+v", item)
	}
	if item.Image != product.ImageURL || item.Category != "Girls Dresses" || !item.IsNew {
		t.Fatalf("image/category/isNew should be filled: %+v", item)
	}
	if !view.Subtotal.IsZero() {
		t.Fatalf("subtotal must stay zero, got %s", view.Subtotal.String())
	}

	view, err = svc.Add(ctx, "sess-1", AddCartItemInput{ID: product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("add again failed: %v", err)
	}
	if len(view.Items) != 1 || view.TotalItems != 3 {
		t.Fatalf("quantity should accumulate: %+v", view)
	}
}

func TestCartServiceAddValidation(t *testing.T) {
	svc, _, _ := setupCartService(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "sess-1", AddCartItemInput{ID: "  "}); !errors.Is(err, ErrCartItemInvalid) {
		t.Fatalf("blank id want ErrCartItemInvalid, got %v", err)
	}
	if _, err := svc.Add(ctx, "sess-1", AddCartItemInput{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown product without name want ErrNotFound, got %v", err)
	}
	if _, err := svc.Add(ctx, "", AddCartItemInput{ID: "x", Name: "Hat"}); !errors.Is(err, ErrCartUnavailable) {
		t.Fatalf("empty session want ErrCartUnavailable, got %v", err)
	}

	// 客户端给出的字段原样保留，价格缺失表示询价
	view, err := svc.Add(ctx, "sess-1", AddCartItemInput{ID: "custom-1", Name: "Custom Hat", Image: "https://cdn.example.com/hat.jpg"})
	if err != nil {
		t.Fatalf("add custom item failed: %v", err)
	}
	if view.Items[0].Name != "Custom Hat" || view.Items[0].Price != nil {
		t.Fatalf("unexpected custom item: %+v", view.Items[0])
	}
}

func TestCartServiceQuantityRemoveClear(t *testing.T) {
	svc, _, slots := setupCartService(t)
	ctx := context.Background()
	price := models.MoneyPtr(models.NewMoneyFromFloat(9))
	for _, id := range []string{"a", "b"} {
		if _, err := svc.Add(ctx, "sess-2", AddCartItemInput{ID: id, Name: "Item " + id, Price: price, Image: "https://cdn.example.com/" + id + ".jpg"}); err != nil {
			t.Fatalf("add %s failed: %v", id, err)
		}
	}

	view, err := svc.UpdateQuantity(ctx, "sess-2", "a", 4)
	if err != nil {
		t.Fatalf("update quantity failed: %v", err)
	}
	if view.TotalItems != 5 {
		t.Fatalf("total items want 5, got %d", view.TotalItems)
	}
	view, err = svc.UpdateQuantity(ctx, "sess-2", "b", 0)
	if err != nil {
		t.Fatalf("update quantity to zero failed: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].ID != "a" {
		t.Fatalf("zero quantity should remove the item: %+v", view.Items)
	}
	view, err = svc.Remove(ctx, "sess-2", "a")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(view.Items) != 0 || slots.Len() != 0 {
		t.Fatalf("empty cart should delete its slot entry")
	}

	if _, err := svc.Add(ctx, "sess-2", AddCartItemInput{ID: "c", Name: "Item c", Price: price, Image: "x"}); err != nil {
		t.Fatalf("add c failed: %v", err)
	}
	if err := svc.Clear(ctx, "sess-2"); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	view, err = svc.View(ctx, "sess-2")
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("cart should be empty after clear")
	}
}

func TestCartServiceSessionsAreIsolated(t *testing.T) {
	svc, _, _ := setupCartService(t)
	ctx := context.Background()
	if _, err := svc.Add(ctx, "one", AddCartItemInput{ID: "a", Name: "A", Image: "x"}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	view, err := svc.View(ctx, "two")
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("other session should not see items")
	}
}

func TestCartServiceWriteFailureKeepsState(t *testing.T) {
	svc := NewCartService(brokenSlots{}, nil, config.StoreConfig{})
	_, err := svc.Add(context.Background(), "sess", AddCartItemInput{ID: "a", Name: "A"})
	if !errors.Is(err, ErrCartUnavailable) {
		t.Fatalf("write failure want ErrCartUnavailable, got %v", err)
	}
	view, err := svc.View(context.Background(), "sess")
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("failed write must not change the cart")
	}
}

func TestCartServiceWhatsAppLink(t *testing.T) {
	svc, _, _ := setupCartService(t)
	ctx := context.Background()

	_, err := svc.WhatsAppLink(ctx, "sess-3")
	notice, ok := whatsapp.AsNotice(err)
	if !ok || notice != whatsapp.ErrCartEmpty {
		t.Fatalf("empty cart want ErrCartEmpty notice, got %v", err)
	}

	if _, err := svc.Add(ctx, "sess-3", AddCartItemInput{ID: "p-9", Name: "Cozy Hoodie", Image: "x"}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	link, err := svc.WhatsAppLink(ctx, "sess-3")
	if err != nil {
		t.Fatalf("whatsapp link failed: %v", err)
	}
	if !strings.HasPrefix(link, "https://wa.me/447700900123?text=") {
		t.Fatalf("unexpected link prefix: %s", link)
	}
	if !strings.Contains(link, "Product%20Name%3A%20Cozy%20Hoodie") || !strings.Contains(link, "https%3A%2F%2Ftinythreads.test%2Fproducts%2Fp-9") {
		t.Fatalf("link should embed encoded product details: %s", link)
	}

	noPhone := NewCartService(cart.NewMemorySlots(), nil, config.StoreConfig{})
	if _, err := noPhone.WhatsAppLink(ctx, "sess-3"); !errors.Is(err, whatsapp.ErrNotConfigured) {
		t.Fatalf("missing phone want ErrNotConfigured, got %v", err)
	}
}

func TestCartServiceSubmitInquiry(t *testing.T) {
	svc, _, _ := setupCartService(t)
	ctx := context.Background()
	price := models.MoneyPtr(models.NewMoneyFromFloat(15))
	if _, err := svc.Add(ctx, "sess-4", AddCartItemInput{ID: "p-1", Name: "Cargo Shorts", Price: price, Image: "https://cdn.example.com/s.jpg", Quantity: 2}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	var received inquiry.Form
	submitter := inquiry.SubmitFunc(func(ctx context.Context, form inquiry.Form) inquiry.State {
		received = form
		return inquiry.Succeeded(inquiry.MsgSubmitted)
	})

	// 本地校验失败时不提交，购物车保留
	state, err := svc.SubmitInquiry(ctx, "sess-4", inquiry.Form{FirstName: "Ada"}, submitter)
	if err != nil {
		t.Fatalf("submit inquiry failed: %v", err)
	}
	if state.IsSuccess || state.Error != inquiry.MsgInvalidFields || received.Email != "" {
		t.Fatalf("invalid form must not reach submitter: %+v", state)
	}

	state, err = svc.SubmitInquiry(ctx, "sess-4", validInquiryForm(), submitter)
	if err != nil {
		t.Fatalf("submit inquiry failed: %v", err)
	}
	if !state.IsSuccess {
		t.Fatalf("unexpected state: %+v", state)
	}
	if len(received.CartItems) != 1 || received.CartItems[0].Quantity != 2 || received.CartItems[0].Price.String() != "15.00" {
		t.Fatalf("cart snapshot should be submitted: %+v", received.CartItems)
	}
	if received.CartItems[0].ImageURL == nil || *received.CartItems[0].ImageURL != "https://cdn.example.com/s.jpg" {
		t.Fatalf("snapshot should carry the image url")
	}

	view, err := svc.View(ctx, "sess-4")
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("cart should be cleared after a successful inquiry")
	}
}

func TestCartServiceSubmitInquiryFailureKeepsCart(t *testing.T) {
	svc, _, _ := setupCartService(t)
	ctx := context.Background()
	if _, err := svc.Add(ctx, "sess-5", AddCartItemInput{ID: "p-1", Name: "Cap", Image: "x"}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	submitter := inquiry.SubmitFunc(func(ctx context.Context, form inquiry.Form) inquiry.State {
		return inquiry.Failed(inquiry.MsgInvalidFields, inquiry.FieldErrors{inquiry.FieldEmail: "Invalid email address."})
	})
	state, err := svc.SubmitInquiry(ctx, "sess-5", validInquiryForm(), submitter)
	if err != nil {
		t.Fatalf("submit inquiry failed: %v", err)
	}
	if state.IsSuccess || state.Fields[inquiry.FieldEmail] == "" {
		t.Fatalf("server field errors should be returned: %+v", state)
	}
	view, _ := svc.View(ctx, "sess-5")
	if len(view.Items) != 1 {
		t.Fatalf("failed inquiry must keep the cart")
	}
}
