package admin

import (
	"errors"

	handlershared "github.com/tinythreads/internal/http/handlers/shared"
	"github.com/tinythreads/internal/http/response"
	"github.com/tinythreads/internal/i18n"
	"github.com/tinythreads/internal/repository"
	"github.com/tinythreads/internal/service"

	"github.com/gin-gonic/gin"
)

var categoryErrorRules = []handlershared.MappedError{
	{Target: service.ErrCategoryIDMissing, Code: response.CodeBadRequest, Key: "error.category_id_missing"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.category_not_found"},
	{Target: service.ErrSlugExists, Code: response.CodeConflict, Key: "error.category_slug_taken"},
	{Target: service.ErrCategoryInUse, Code: response.CodeConflict, Key: "error.category_in_use"},
}

// GetAdminCategories 获取分类列表 (Admin)
func (h *Handler) GetAdminCategories(c *gin.Context) {
	categories, err := h.CategoryService.List(repository.CategoryListFilter{
		Gender: c.Query("gender"),
		Search: c.Query("search"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}
	response.Success(c, categories)
}

// GetAdminCategory 获取分类详情 (Admin)
func (h *Handler) GetAdminCategory(c *gin.Context) {
	category, err := h.CategoryService.Get(c.Param("id"))
	if err != nil {
		handlershared.RespondMappedError(c, err, categoryErrorRules, response.CodeInternal, "error.category_fetch_failed")
		return
	}
	response.Success(c, category)
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req service.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	category, err := h.CategoryService.Create(c.Request.Context(), req)
	if err != nil {
		handlershared.RespondMappedError(c, err, categoryErrorRules, response.CodeInternal, "error.save_failed")
		return
	}
	msg := i18n.Sprintf(i18n.ResolveLocale(c), "msg.category_created", category.Name)
	response.SuccessWithMsg(c, msg, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	var req service.CategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	category, err := h.CategoryService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		handlershared.RespondMappedError(c, err, categoryErrorRules, response.CodeInternal, "error.save_failed")
		return
	}
	msg := i18n.Sprintf(i18n.ResolveLocale(c), "msg.category_updated", category.Name)
	response.SuccessWithMsg(c, msg, category)
}

// DeleteCategory 删除分类，被商品引用时拒绝
func (h *Handler) DeleteCategory(c *gin.Context) {
	err := h.CategoryService.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrCategoryInUse) {
			requestLog(c).Infow("admin_category_delete_in_use", "category_id", c.Param("id"))
		}
		handlershared.RespondMappedError(c, err, categoryErrorRules, response.CodeInternal, "error.delete_failed")
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "msg.category_deleted"), nil)
}
