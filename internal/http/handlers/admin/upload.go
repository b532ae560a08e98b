package admin

import (
	"errors"
	"net/http"

	handlershared "github.com/tinythreads/internal/http/handlers/shared"
	"github.com/tinythreads/internal/http/response"
	"github.com/tinythreads/internal/service"

	"github.com/gin-gonic/gin"
)

var uploadErrorRules = []handlershared.MappedError{
	{Target: service.ErrUploadFileMissing, Code: response.CodeBadRequest, Key: "error.upload_file_missing"},
	{Target: service.ErrUploadTooLarge, Code: response.CodeBadRequest, Key: "error.upload_too_large"},
	{Target: service.ErrUploadType, Code: response.CodeBadRequest, Key: "error.upload_type"},
	{Target: service.ErrUploadDimensions, Code: response.CodeBadRequest, Key: "error.upload_dimensions"},
}

// UploadFile 上传图片（multipart 字段 file，scene 为 product / category / common）
func (h *Handler) UploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			respondError(c, response.CodeBadRequest, "error.upload_file_missing", nil)
			return
		}
		respondError(c, response.CodeBadRequest, "error.upload_file_missing", err)
		return
	}

	result, err := h.UploadService.SaveFile(file, c.PostForm("scene"))
	if err != nil {
		handlershared.RespondMappedError(c, err, uploadErrorRules, response.CodeInternal, "error.upload_failed")
		return
	}
	requestLog(c).Infow("admin_upload_saved",
		"admin_id", currentAdminID(c),
		"filename", file.Filename,
		"url", result.URL,
	)
	response.Success(c, result)
}
