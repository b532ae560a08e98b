package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/tinythreads/internal/http/handlers/shared"
	"github.com/tinythreads/internal/http/response"
	"github.com/tinythreads/internal/provider"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 后台管理接口处理器，依赖由 provider.Container 注入
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

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "admin_id", "error.admin_id_invalid", "error.admin_id_type_invalid")
}

func currentAdminID(c *gin.Context) uint {
	if value, exists := c.Get("admin_id"); exists {
		if adminID, ok := value.(uint); ok {
			return adminID
		}
	}
	return 0
}

func currentUsername(c *gin.Context) string {
	return handlershared.GetContextString(c, "username")
}

func parseAdminIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.admin_id_invalid", nil)
		return 0, false
	}
	return uint(id), true
}
