package public

import (
	"errors"
	"strings"

	handlershared "github.com/tinythreads/internal/http/handlers/shared"
	"github.com/tinythreads/internal/http/response"
	"github.com/tinythreads/internal/service"

	"github.com/gin-gonic/gin"
)

// GetConfig 获取店铺公开配置
func (h *Handler) GetConfig(c *gin.Context) {
	data := gin.H{
		"whatsapp_enabled": strings.TrimSpace(h.Config.Store.WhatsAppPhone) != "",
		"site_origin":      h.Config.Store.SiteOrigin,
		"store_name":       h.Config.Store.Name,
	}
	if h.CaptchaService != nil {
		data["captcha"] = h.CaptchaService.PublicSetting()
	}
	response.Success(c, data)
}

// GetCategories 获取分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.ListPublic(c.Request.Context(), c.Query("gender"))
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}
	response.Success(c, categories)
}

// GetProducts 获取商品列表
func (h *Handler) GetProducts(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)

	products, total, err := h.ProductService.ListPublic(service.PublicListInput{
		Category: c.Query("category"),
		MinPrice: c.Query("min_price"),
		MaxPrice: c.Query("max_price"),
		Sort:     c.Query("sort"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetTrendingProducts 获取热门商品
func (h *Handler) GetTrendingProducts(c *gin.Context) {
	products, err := h.ProductService.ListTrending()
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	response.Success(c, products)
}

// GetProduct 根据 ID 获取商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.ProductService.GetPublic(c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.product_not_found", nil)
		case errors.Is(err, service.ErrProductIDMissing):
			respondError(c, response.CodeBadRequest, "error.product_id_missing", nil)
		default:
			respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		}
		return
	}
	response.Success(c, product)
}
