package shared

import (
	"errors"
	"strings"

	"github.com/tinythreads/internal/http/response"
	"github.com/tinythreads/internal/service"

	"github.com/gin-gonic/gin"
)

// CaptchaPayloadRequest 验证码请求载荷。
type CaptchaPayloadRequest struct {
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// ToServicePayload 转换为 service 层验证码载荷。
func (r CaptchaPayloadRequest) ToServicePayload() service.CaptchaVerifyPayload {
	return service.CaptchaVerifyPayload{
		CaptchaID:   strings.TrimSpace(r.CaptchaID),
		CaptchaCode: strings.TrimSpace(r.CaptchaCode),
	}
}

// VerifyCaptcha 按场景校验验证码，失败时已写入响应。
func VerifyCaptcha(c *gin.Context, captcha *service.CaptchaService, scene string, payload CaptchaPayloadRequest) bool {
	if captcha == nil {
		return true
	}
	err := captcha.Verify(scene, payload.ToServicePayload())
	switch {
	case err == nil:
		return true
	case errors.Is(err, service.ErrCaptchaRequired):
		RespondError(c, response.CodeBadRequest, "error.captcha_required", nil)
	case errors.Is(err, service.ErrCaptchaInvalid):
		RespondError(c, response.CodeBadRequest, "error.captcha_invalid", nil)
	case errors.Is(err, service.ErrCaptchaConfigInvalid):
		RespondError(c, response.CodeInternal, "error.captcha_config", err)
	default:
		RespondError(c, response.CodeInternal, "error.captcha_unavailable", err)
	}
	return false
}
