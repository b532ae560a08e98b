package admin

import (
	handlershared "github.com/tinythreads/internal/http/handlers/shared"
	"github.com/tinythreads/internal/http/response"
	"github.com/tinythreads/internal/i18n"
	"github.com/tinythreads/internal/service"

	"github.com/gin-gonic/gin"
)

var productErrorRules = []handlershared.MappedError{
	{Target: service.ErrProductIDMissing, Code: response.CodeBadRequest, Key: "error.product_id_missing"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.product_not_found"},
	{Target: service.ErrProductCategoryInvalid, Code: response.CodeBadRequest, Key: "error.product_category"},
}

// GetAdminProducts 获取商品列表 (Admin)
func (h *Handler) GetAdminProducts(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	products, total, err := h.ProductService.ListAdmin(service.AdminListInput{
		CategoryID: c.Query("category_id"),
		Search:     c.Query("search"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, products, response.NewPagination(page, pageSize, total))
}

// GetAdminProduct 获取商品详情 (Admin)
func (h *Handler) GetAdminProduct(c *gin.Context) {
	product, err := h.ProductService.Get(c.Param("id"))
	if err != nil {
		handlershared.RespondMappedError(c, err, productErrorRules, response.CodeInternal, "error.product_fetch_failed")
		return
	}
	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.Create(req)
	if err != nil {
		handlershared.RespondMappedError(c, err, productErrorRules, response.CodeInternal, "error.save_failed")
		return
	}
	msg := i18n.Sprintf(i18n.ResolveLocale(c), "msg.product_created", product.Name)
	response.SuccessWithMsg(c, msg, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.Update(c.Param("id"), req)
	if err != nil {
		handlershared.RespondMappedError(c, err, productErrorRules, response.CodeInternal, "error.save_failed")
		return
	}
	msg := i18n.Sprintf(i18n.ResolveLocale(c), "msg.product_updated", product.Name)
	response.SuccessWithMsg(c, msg, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.ProductService.Delete(c.Param("id")); err != nil {
		handlershared.RespondMappedError(c, err, productErrorRules, response.CodeInternal, "error.delete_failed")
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "msg.product_deleted"), nil)
}
