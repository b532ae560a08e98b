package public

import (
	"errors"

	"github.com/tinythreads/internal/http/response"
	"github.com/tinythreads/internal/service"

	"github.com/gin-gonic/gin"
)

// GetImageCaptcha 下发图片验证码，未启用图片验证码时返回 400
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	switch {
	case err == nil:
		c.Header("Cache-Control", "no-store")
		response.Success(c, challenge)
	case errors.Is(err, service.ErrCaptchaConfigInvalid):
		respondError(c, response.CodeBadRequest, "error.captcha_unavailable", nil)
	default:
		respondError(c, response.CodeInternal, "error.captcha_generate_failed", err)
	}
}
