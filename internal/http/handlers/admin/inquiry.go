package admin

import (
	handlershared "github.com/tinythreads/internal/http/handlers/shared"
	"github.com/tinythreads/internal/http/response"
	"github.com/tinythreads/internal/repository"
	"github.com/tinythreads/internal/service"

	"github.com/gin-gonic/gin"
)

// InquiryStatusRequest 询价单状态修改请求
type InquiryStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

var inquiryErrorRules = []handlershared.MappedError{
	{Target: service.ErrInquiryStatusInvalid, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.inquiry_not_found"},
}

// GetAdminInquiries 询价单列表，按创建时间倒序
func (h *Handler) GetAdminInquiries(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	records, total, err := h.InquiryService.List(repository.InquiryListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
		Search:   c.Query("search"),
	})
	if err != nil {
		handlershared.RespondMappedError(c, err, inquiryErrorRules, response.CodeInternal, "error.inquiry_fetch_failed")
		return
	}
	response.SuccessWithPage(c, records, response.NewPagination(page, pageSize, total))
}

// GetAdminInquiry 询价单详情
func (h *Handler) GetAdminInquiry(c *gin.Context) {
	record, err := h.InquiryService.Get(c.Param("id"))
	if err != nil {
		handlershared.RespondMappedError(c, err, inquiryErrorRules, response.CodeInternal, "error.inquiry_fetch_failed")
		return
	}
	response.Success(c, record)
}

// UpdateInquiryStatus 修改询价单状态
func (h *Handler) UpdateInquiryStatus(c *gin.Context) {
	var req InquiryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	state := h.InquiryService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if state.IsSuccess {
		requestLog(c).Infow("admin_inquiry_status_updated",
			"admin_id", currentAdminID(c),
			"inquiry_id", c.Param("id"),
			"status", req.Status,
		)
	}
	handlershared.RespondInquiryState(c, state)
}
