package inquiry

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FormState 表单当前取值、字段错误与最近一次结果
type FormState struct {
	Values Form
	Errors FieldErrors
	Result *State
}

// Workflow 询价提交流程：本地校验、提交、回放服务端字段错误、成功后重置
type Workflow struct {
	submitter Submitter
	resetCart func(ctx context.Context) error
	log       *zap.SugaredLogger
}

// Option 流程选项
type Option func(*Workflow)

// WithCartReset 提交成功后清空购物车
func WithCartReset(reset func(ctx context.Context) error) Option {
	return func(w *Workflow) {
		w.resetCart = reset
	}
}

// WithLogger 指定日志
func WithLogger(log *zap.SugaredLogger) Option {
	return func(w *Workflow) {
		if log != nil {
			w.log = log
		}
	}
}

// NewWorkflow 创建提交流程
func NewWorkflow(submitter Submitter, opts ...Option) *Workflow {
	w := &Workflow{submitter: submitter, log: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Submit 校验并提交表单。本地校验失败时不会调用 submitter
func (w *Workflow) Submit(ctx context.Context, fs *FormState) State {
	form := fs.Values.Normalize()
	if fieldErrs := Validate(form); fieldErrs != nil {
		return w.finish(fs, Failed(MsgInvalidFields, fieldErrs))
	}

	state := w.callSubmitter(ctx, form)
	if !state.IsSuccess {
		if state.Error == "" {
			state.Error = MsgUnexpectedSubmit
		}
		return w.finish(fs, state)
	}

	fs.Values = Form{}
	if w.resetCart != nil {
		if err := w.resetCart(ctx); err != nil {
			// 询价已保存，购物车清理失败只记录日志
			w.log.Warnw("inquiry_cart_reset_failed", "error", err)
		}
	}
	return w.finish(fs, state)
}

func (w *Workflow) callSubmitter(ctx context.Context, form Form) (state State) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Errorw("inquiry_submit_panic", "panic", fmt.Sprint(r))
			state = Failed(MsgUnexpectedSubmit, nil)
		}
	}()
	if w.submitter == nil {
		return Failed(MsgUnexpectedSubmit, nil)
	}
	return w.submitter.Submit(ctx, form)
}

func (w *Workflow) finish(fs *FormState, state State) State {
	fs.Errors = nil
	if len(state.Fields) > 0 {
		fs.Errors = make(FieldErrors, len(state.Fields))
		for field, msg := range state.Fields {
			fs.Errors[field] = msg
		}
	}
	result := state
	fs.Result = &result
	return state
}
