package public

import (
	handlershared "github.com/tinythreads/internal/http/handlers/shared"
	"github.com/tinythreads/internal/http/response"
	"github.com/tinythreads/internal/provider"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 店铺前台与游客购物车接口处理器
type Handler struct {
	*provider.Container
}

// New 创建处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

// getCartSession 读取会话中间件写入的购物车 ID
func getCartSession(c *gin.Context) (string, bool) {
	sessionID := handlershared.GetContextString(c, handlershared.CartSessionKey)
	if sessionID == "" {
		respondError(c, response.CodeBadRequest, "error.cart_unavailable", nil)
		return "", false
	}
	return sessionID, true
}
