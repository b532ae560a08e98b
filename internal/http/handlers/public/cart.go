package public

import (
	"errors"

	"github.com/tinythreads/internal/constants"
	handlershared "github.com/tinythreads/internal/http/handlers/shared"
	"github.com/tinythreads/internal/http/response"
	"github.com/tinythreads/internal/i18n"
	"github.com/tinythreads/internal/inquiry"
	"github.com/tinythreads/internal/service"
	"github.com/tinythreads/internal/whatsapp"

	"github.com/gin-gonic/gin"
)

// CartQuantityRequest 修改数量请求
type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// InquiryRequest 询价请求，验证码字段与表单并列
type InquiryRequest struct {
	inquiry.Form
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

var cartErrorRules = []handlershared.MappedError{
	{Target: service.ErrCartItemInvalid, Code: response.CodeBadRequest, Key: "error.cart_item_invalid"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.cart_item_missing"},
	{Target: service.ErrCartUnavailable, Code: response.CodeInternal, Key: "error.cart_unavailable"},
}

func respondCartError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, cartErrorRules, response.CodeInternal, "error.cart_unavailable")
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	sessionID, ok := getCartSession(c)
	if !ok {
		return
	}
	view, err := h.CartService.View(c.Request.Context(), sessionID)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// AddCartItem 加入购物车，缺失的展示字段由商品目录补全
func (h *Handler) AddCartItem(c *gin.Context) {
	sessionID, ok := getCartSession(c)
	if !ok {
		return
	}
	var req service.AddCartItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	view, err := h.CartService.Add(c.Request.Context(), sessionID, req)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// UpdateCartItem 修改数量，小于 1 时移除
func (h *Handler) UpdateCartItem(c *gin.Context) {
	sessionID, ok := getCartSession(c)
	if !ok {
		return
	}
	var req CartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	view, err := h.CartService.UpdateQuantity(c.Request.Context(), sessionID, c.Param("id"), req.Quantity)
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// RemoveCartItem 移除购物车项
func (h *Handler) RemoveCartItem(c *gin.Context) {
	sessionID, ok := getCartSession(c)
	if !ok {
		return
	}
	view, err := h.CartService.Remove(c.Request.Context(), sessionID, c.Param("id"))
	if err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, view)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	sessionID, ok := getCartSession(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(c.Request.Context(), sessionID); err != nil {
		respondCartError(c, err)
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "msg.cart_cleared"), gin.H{"cleared": true})
}

// GetWhatsAppLink 生成 WhatsApp 下单链接
func (h *Handler) GetWhatsAppLink(c *gin.Context) {
	sessionID, ok := getCartSession(c)
	if !ok {
		return
	}
	link, err := h.CartService.WhatsAppLink(c.Request.Context(), sessionID)
	if err != nil {
		if notice, isNotice := whatsapp.AsNotice(err); isNotice {
			code := response.CodeBadRequest
			if errors.Is(err, whatsapp.ErrNotConfigured) {
				code = response.CodeInternal
			}
			response.ErrorWithData(c, code, notice.Title, gin.H{"notice": notice})
			return
		}
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{"url": link})
}

// SubmitCartInquiry 带购物车快照提交询价，成功后清空购物车
func (h *Handler) SubmitCartInquiry(c *gin.Context) {
	sessionID, ok := getCartSession(c)
	if !ok {
		return
	}
	req, ok := h.bindInquiry(c)
	if !ok {
		return
	}
	state, err := h.CartService.SubmitInquiry(c.Request.Context(), sessionID, req.Form, h.InquiryService)
	if err != nil {
		respondCartError(c, err)
		return
	}
	handlershared.RespondInquiryState(c, state)
}

// SubmitInquiry 直接提交询价（仅服务端校验）
func (h *Handler) SubmitInquiry(c *gin.Context) {
	req, ok := h.bindInquiry(c)
	if !ok {
		return
	}
	state := h.InquiryService.Submit(c.Request.Context(), req.Form)
	if !state.IsSuccess {
		requestLog(c).Infow("public_inquiry_rejected", "error", state.Error, "fields", len(state.Fields))
	}
	handlershared.RespondInquiryState(c, state)
}

func (h *Handler) bindInquiry(c *gin.Context) (InquiryRequest, bool) {
	var req InquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return req, false
	}
	if !handlershared.VerifyCaptcha(c, h.CaptchaService, constants.CaptchaSceneInquiry, req.CaptchaPayload) {
		return req, false
	}
	return req, true
}
