package inquiry

import "context"

// 提交结果提示
const (
	MsgInvalidFields     = "Invalid fields for inquiry."
	MsgSubmitted         = "Inquiry submitted successfully!"
	MsgUnexpectedSubmit  = "An unexpected error occurred while submitting the inquiry."
	MsgStatusUpdated     = "Inquiry status updated successfully!"
	MsgUnexpectedStatus  = "An unexpected error occurred while updating the inquiry status."
	MsgDatabaseErrPrefix = "Database Error: "
)

// State 提交接口返回的统一结构
type State struct {
	IsSuccess bool        `json:"isSuccess"`
	Message   string      `json:"message,omitempty"`
	Error     string      `json:"error,omitempty"`
	Fields    FieldErrors `json:"fields,omitempty"`
}

// Succeeded 成功结果
func Succeeded(message string) State {
	return State{IsSuccess: true, Message: message}
}

// Failed 失败结果，fields 可为空
func Failed(message string, fields FieldErrors) State {
	if len(fields) == 0 {
		fields = nil
	}
	return State{Error: message, Fields: fields}
}

// Submitter 持久化端点
type Submitter interface {
	Submit(ctx context.Context, form Form) State
}

// SubmitFunc 函数形式的 Submitter
type SubmitFunc func(ctx context.Context, form Form) State

// Submit 实现 Submitter
func (f SubmitFunc) Submit(ctx context.Context, form Form) State {
	return f(ctx, form)
}
