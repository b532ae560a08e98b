package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tinythreads/internal/config"
	"github.com/tinythreads/internal/constants"
	"github.com/tinythreads/internal/inquiry"
	"github.com/tinythreads/internal/logger"
	"github.com/tinythreads/internal/models"
	"github.com/tinythreads/internal/queue"
	"github.com/tinythreads/internal/repository"

	"github.com/hibiken/asynq"
)

// MsgInquiryNotFound 询价单不存在
const MsgInquiryNotFound = "Inquiry not found."

// InquiryTaskQueue 询价相关异步任务
type InquiryTaskQueue interface {
	EnqueueInquiryNotifyStaff(payload queue.InquiryNotifyPayload, opts ...asynq.Option) error
	EnqueueInquiryAckCustomer(payload queue.InquiryNotifyPayload, opts ...asynq.Option) error
}

// InquiryService 询价单服务，实现 inquiry.Submitter
type InquiryService struct {
	repo  repository.InquiryRepository
	queue InquiryTaskQueue
	store config.StoreConfig
	now   func() time.Time
}

// NewInquiryService 创建询价单服务，queue 可为 nil
func NewInquiryService(repo repository.InquiryRepository, taskQueue InquiryTaskQueue, store config.StoreConfig) *InquiryService {
	return &InquiryService{
		repo:  repo,
		queue: taskQueue,
		store: store,
		now:   time.Now,
	}
}

var _ inquiry.Submitter = (*InquiryService)(nil)

// Submit 校验并保存询价单；任何错误都转为失败结果
func (s *InquiryService) Submit(ctx context.Context, form inquiry.Form) (state inquiry.State) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("inquiry_submit_panic", "panic", fmt.Sprint(r))
			state = inquiry.Failed(inquiry.MsgUnexpectedSubmit, nil)
		}
	}()

	form = form.Normalize()
	if fields := inquiry.Validate(form); fields != nil {
		return inquiry.Failed(inquiry.MsgInvalidFields, fields)
	}

	record := &models.Inquiry{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Subject:   form.Subject,
		Message:   form.Message,
		Status:    constants.InquiryStatusNew,
		CartItems: form.CartItems.ToModel(),
	}
	if form.Phone != "" {
		phone := form.Phone
		record.Phone = &phone
	}
	if err := s.repo.Create(record); err != nil {
		logger.Warnw("inquiry_insert_failed", "email", form.Email, "error", err)
		return inquiry.Failed(inquiry.MsgDatabaseErrPrefix+err.Error(), nil)
	}

	logger.Infow("inquiry_submitted", "inquiry_id", record.ID, "cart_items", len(record.CartItems))
	s.enqueueNotifications(record)
	return inquiry.Succeeded(inquiry.MsgSubmitted)
}

// enqueueNotifications 推送通知任务，失败只记日志
func (s *InquiryService) enqueueNotifications(record *models.Inquiry) {
	if s.queue == nil {
		return
	}
	if staff := strings.TrimSpace(s.store.StaffEmail); staff != "" {
		payload := queue.InquiryNotifyPayload{InquiryID: record.ID, To: staff}
		if err := s.queue.EnqueueInquiryNotifyStaff(payload, asynq.Queue(constants.QueueCritical)); err != nil {
			logger.Warnw("inquiry_notify_enqueue_failed", "inquiry_id", record.ID, "error", err)
		}
	}
	payload := queue.InquiryNotifyPayload{InquiryID: record.ID, To: record.Email}
	if err := s.queue.EnqueueInquiryAckCustomer(payload); err != nil {
		logger.Warnw("inquiry_ack_enqueue_failed", "inquiry_id", record.ID, "error", err)
	}
}

// UpdateStatus 修改询价单状态
func (s *InquiryService) UpdateStatus(ctx context.Context, id, status string) (state inquiry.State) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("inquiry_status_panic", "inquiry_id", id, "panic", fmt.Sprint(r))
			state = inquiry.Failed(inquiry.MsgUnexpectedStatus, nil)
		}
	}()

	normalized := strings.TrimSpace(status)
	if !IsInquiryStatus(normalized) {
		return inquiry.Failed(fmt.Sprintf("Invalid status: %s.", status), nil)
	}
	rows, err := s.repo.UpdateStatus(strings.TrimSpace(id), normalized, s.now())
	if err != nil {
		logger.Warnw("inquiry_status_update_failed", "inquiry_id", id, "error", err)
		return inquiry.Failed(inquiry.MsgDatabaseErrPrefix+err.Error(), nil)
	}
	if rows == 0 {
		return inquiry.Failed(MsgInquiryNotFound, nil)
	}
	return inquiry.Succeeded(inquiry.MsgStatusUpdated)
}

// List 询价单列表
func (s *InquiryService) List(filter repository.InquiryListFilter) ([]models.Inquiry, int64, error) {
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	if filter.Status != "" && !IsInquiryStatus(filter.Status) {
		return nil, 0, ErrInquiryStatusInvalid
	}
	return s.repo.List(filter)
}

// Get 询价单详情
func (s *InquiryService) Get(id string) (*models.Inquiry, error) {
	record, err := s.repo.GetByID(strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotFound
	}
	return record, nil
}

// CountByStatus 各状态数量，缺失的状态补 0
func (s *InquiryService) CountByStatus() (map[string]int64, error) {
	counts, err := s.repo.CountByStatus()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(constants.InquiryStatuses))
	for _, status := range constants.InquiryStatuses {
		out[status] = counts[status]
	}
	return out, nil
}

// IsInquiryStatus 是否为合法状态
func IsInquiryStatus(status string) bool {
	for _, allowed := range constants.InquiryStatuses {
		if status == allowed {
			return true
		}
	}
	return false
}
