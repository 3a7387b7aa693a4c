package queue

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/marketgate/internal/config"
	"github.com/marketgate/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault

	defaultConcurrency    = 10
	reconcileUniqueWindow = 10 * time.Minute
	reconcileTimeout      = 30 * time.Minute
	reconcileMaxRetry     = 2
)

var (
	// ErrQueueDisabled 队列未启用
	ErrQueueDisabled = errors.New("queue disabled")
	// ErrTaskDuplicated 已有相同任务等待执行
	ErrTaskDuplicated = errors.New("task already queued")
)

// Client asynq 客户端封装；未启用时所有入队操作返回 ErrQueueDisabled
type Client struct {
	inner *asynq.Client
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{inner: asynq.NewClient(RedisOpt(cfg))}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.inner != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.inner.Close()
}

// EnqueueApprovalReconcile 推送审核字段修复任务。同一时间窗口内只保留一个待执行任务。
func (c *Client) EnqueueApprovalReconcile(ctx context.Context, payload ApprovalReconcilePayload, opts ...asynq.Option) (string, error) {
	if !c.Enabled() {
		return "", ErrQueueDisabled
	}
	task, err := NewApprovalReconcileTask(payload)
	if err != nil {
		return "", err
	}
	options := []asynq.Option{
		asynq.Queue(constants.QueueCritical),
		asynq.MaxRetry(reconcileMaxRetry),
		asynq.Timeout(reconcileTimeout),
		asynq.Unique(reconcileUniqueWindow),
	}
	info, err := c.inner.EnqueueContext(ctx, task, append(options, opts...)...)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return "", ErrTaskDuplicated
	}
	if err != nil {
		return "", err
	}
	return info.ID, nil
}

// BuildServerConfig 生成 worker 端 asynq 配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{constants.QueueCritical: 6, DefaultQueue: 3},
	}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			serverCfg.Concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			serverCfg.Queues = cfg.Queues
		}
	}
	return RedisOpt(cfg), serverCfg
}

// RedisOpt 队列使用的 Redis 连接参数，缺省 127.0.0.1:6379
func RedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
