package shared

import (
	"strings"

	"github.com/tinythreads/internal/http/response"
	"github.com/tinythreads/internal/inquiry"
	"github.com/tinythreads/internal/service"

	"github.com/gin-gonic/gin"
)

// RespondInquiryState 把询价结果写入统一响应，失败时 data 中携带 state。
func RespondInquiryState(c *gin.Context, state inquiry.State) {
	if state.IsSuccess {
		response.SuccessWithMsg(c, state.Message, state)
		return
	}
	response.ErrorWithData(c, InquiryStateCode(state), state.Error, gin.H{"state": state})
}

// InquiryStateCode 失败结果对应的业务状态码。
func InquiryStateCode(state inquiry.State) int {
	switch {
	case state.IsSuccess:
		return response.CodeOK
	case len(state.Fields) > 0, state.Error == inquiry.MsgInvalidFields:
		return response.CodeBadRequest
	case state.Error == service.MsgInquiryNotFound:
		return response.CodeNotFound
	case strings.HasPrefix(state.Error, "Invalid status:"):
		return response.CodeBadRequest
	default:
		return response.CodeInternal
	}
}
