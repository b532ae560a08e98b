package queue

import (
	"encoding/json"

	"github.com/tinythreads/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskInquiryNotifyStaff 新询价通知店员
	TaskInquiryNotifyStaff = constants.TaskInquiryNotifyStaff
	// TaskInquiryAckCustomer 询价回执邮件
	TaskInquiryAckCustomer = constants.TaskInquiryAckCustomer
)

// InquiryNotifyPayload 询价通知任务载荷
type InquiryNotifyPayload struct {
	InquiryID string `json:"inquiry_id"`
	To        string `json:"to"`
}

// NewInquiryNotifyStaffTask 创建店员通知任务
func NewInquiryNotifyStaffTask(payload InquiryNotifyPayload) (*asynq.Task, error) {
	return newJSONTask(TaskInquiryNotifyStaff, payload)
}

// NewInquiryAckCustomerTask 创建客户回执任务
func NewInquiryAckCustomerTask(payload InquiryNotifyPayload) (*asynq.Task, error) {
	return newJSONTask(TaskInquiryAckCustomer, payload)
}

// ParseInquiryNotifyPayload 解析任务载荷
func ParseInquiryNotifyPayload(task *asynq.Task) (InquiryNotifyPayload, error) {
	var payload InquiryNotifyPayload
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}

func newJSONTask(taskType string, payload any) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, body), nil
}
