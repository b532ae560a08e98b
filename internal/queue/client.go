package queue

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tinythreads/internal/config"
	"github.com/tinythreads/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault

	defaultRedisHost   = "127.0.0.1"
	defaultRedisPort   = 6379
	defaultConcurrency = 10
)

// taskProfile 每类任务的投递参数
type taskProfile struct {
	queue    string
	maxRetry int
	timeout  time.Duration
}

// 店员通知走高优先级队列，客户回执允许更少重试
var taskProfiles = map[string]taskProfile{
	TaskInquiryNotifyStaff: {queue: constants.QueueCritical, maxRetry: 5, timeout: time.Minute},
	TaskInquiryAckCustomer: {queue: DefaultQueue, maxRetry: 3, timeout: time.Minute},
}

// Client 询价任务投递客户端，未启用时所有投递都是空操作
type Client struct {
	client *asynq.Client
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{client: asynq.NewClient(redisOpt(cfg))}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueueInquiryNotifyStaff 推送店员通知任务
func (c *Client) EnqueueInquiryNotifyStaff(payload InquiryNotifyPayload, opts ...asynq.Option) error {
	return c.enqueueInquiry(NewInquiryNotifyStaffTask, payload, opts)
}

// EnqueueInquiryAckCustomer 推送客户回执任务
func (c *Client) EnqueueInquiryAckCustomer(payload InquiryNotifyPayload, opts ...asynq.Option) error {
	return c.enqueueInquiry(NewInquiryAckCustomerTask, payload, opts)
}

func (c *Client) enqueueInquiry(build func(InquiryNotifyPayload) (*asynq.Task, error), payload InquiryNotifyPayload, opts []asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := build(payload)
	if err != nil {
		return fmt.Errorf("build task failed: %w", err)
	}
	_, err = c.client.Enqueue(task, taskOptions(task.Type(), payload.InquiryID, opts)...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		// 同一询价的同类任务已在队列中
		return nil
	}
	return err
}

// taskOptions 合并任务默认参数，调用方传入的选项优先
func taskOptions(taskType, inquiryID string, extra []asynq.Option) []asynq.Option {
	profile, ok := taskProfiles[taskType]
	if !ok {
		profile = taskProfile{queue: DefaultQueue, maxRetry: 5, timeout: time.Minute}
	}
	options := []asynq.Option{
		asynq.Queue(profile.queue),
		asynq.MaxRetry(profile.maxRetry),
		asynq.Timeout(profile.timeout),
	}
	if id := strings.TrimSpace(inquiryID); id != "" {
		options = append(options, asynq.TaskID(taskType+":"+id))
	}
	return append(options, extra...)
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{constants.QueueCritical: 6, DefaultQueue: 3},
	}
	if cfg != nil && cfg.Concurrency > 0 {
		serverCfg.Concurrency = cfg.Concurrency
	}
	if cfg != nil && len(cfg.Queues) > 0 {
		serverCfg.Queues = cfg.Queues
	}
	return redisOpt(cfg), serverCfg
}

func redisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: fmt.Sprintf("%s:%d", defaultRedisHost, defaultRedisPort)}
	if cfg == nil {
		return opt
	}
	host, port := strings.TrimSpace(cfg.Host), cfg.Port
	if host == "" {
		host = defaultRedisHost
	}
	if port <= 0 {
		port = defaultRedisPort
	}
	opt.Addr = fmt.Sprintf("%s:%d", host, port)
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
