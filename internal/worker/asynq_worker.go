package worker

import (
	"context"
	"errors"
	"strings"

	"github.com/tinythreads/internal/logger"
	"github.com/tinythreads/internal/models"
	"github.com/tinythreads/internal/provider"
	"github.com/tinythreads/internal/queue"
	"github.com/tinythreads/internal/service"

	"github.com/hibiken/asynq"
)

// InquiryLoader 按 ID 读取询价单
type InquiryLoader interface {
	Get(id string) (*models.Inquiry, error)
}

// InquiryMailer 询价邮件发送
type InquiryMailer interface {
	Enabled() bool
	SendInquiryStaffNotice(toEmail string, record *models.Inquiry) error
	SendInquiryAck(record *models.Inquiry) error
}

// Consumer 异步任务消费者
type Consumer struct {
	inquiries InquiryLoader
	mailer    InquiryMailer
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	if c == nil {
		return &Consumer{}
	}
	return &Consumer{
		inquiries: c.InquiryService,
		mailer:    c.EmailService,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskInquiryNotifyStaff, c.handleInquiryNotifyStaff)
	mux.HandleFunc(queue.TaskInquiryAckCustomer, c.handleInquiryAckCustomer)
}

func (c *Consumer) handleInquiryNotifyStaff(_ context.Context, task *asynq.Task) error {
	record, payload, err := c.loadInquiry("worker_inquiry_notify", task)
	if err != nil || record == nil {
		return err
	}
	to := strings.TrimSpace(payload.To)
	if to == "" {
		logger.Debugw("worker_inquiry_notify_skip_empty_receiver", "inquiry_id", record.ID)
		return nil
	}
	if err := c.mailer.SendInquiryStaffNotice(to, record); err != nil {
		return sendFailure("worker_inquiry_notify_send_failed", record, to, err)
	}
	return nil
}

func (c *Consumer) handleInquiryAckCustomer(_ context.Context, task *asynq.Task) error {
	record, _, err := c.loadInquiry("worker_inquiry_ack", task)
	if err != nil || record == nil {
		return err
	}
	if err := c.mailer.SendInquiryAck(record); err != nil {
		return sendFailure("worker_inquiry_ack_send_failed", record, record.Email, err)
	}
	return nil
}

// loadInquiry 解析载荷并读取询价单；返回 nil 记录表示跳过
func (c *Consumer) loadInquiry(event string, task *asynq.Task) (*models.Inquiry, queue.InquiryNotifyPayload, error) {
	var payload queue.InquiryNotifyPayload
	if c == nil || task == nil {
		logger.Debugw(event+"_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil, payload, nil
	}
	payload, err := queue.ParseInquiryNotifyPayload(task)
	if err != nil {
		logger.Warnw(event+"_unmarshal_failed", "error", err)
		return nil, payload, errors.Join(err, asynq.SkipRetry)
	}
	if strings.TrimSpace(payload.InquiryID) == "" {
		logger.Debugw(event+"_skip_invalid_payload", "inquiry_id", payload.InquiryID)
		return nil, payload, nil
	}
	if c.mailer == nil || !c.mailer.Enabled() {
		logger.Debugw(event+"_skip_email_disabled", "inquiry_id", payload.InquiryID)
		return nil, payload, nil
	}
	if c.inquiries == nil {
		logger.Warnw(event+"_skip_inquiry_service_nil", "inquiry_id", payload.InquiryID)
		return nil, payload, nil
	}
	record, err := c.inquiries.Get(payload.InquiryID)
	if errors.Is(err, service.ErrNotFound) {
		logger.Debugw(event+"_skip_inquiry_not_found", "inquiry_id", payload.InquiryID)
		return nil, payload, nil
	}
	if err != nil {
		logger.Warnw(event+"_fetch_failed", "inquiry_id", payload.InquiryID, "error", err)
		return nil, payload, err
	}
	return record, payload, nil
}

// sendFailure 收件人被拒绝时不再重试
func sendFailure(event string, record *models.Inquiry, receiver string, err error) error {
	logger.Warnw(event,
		"inquiry_id", record.ID,
		"receiver_email", receiver,
		"error", err,
	)
	switch {
	case errors.Is(err, service.ErrEmailRecipientRejected), errors.Is(err, service.ErrInvalidEmail):
		return errors.Join(err, asynq.SkipRetry)
	default:
		return err
	}
}
