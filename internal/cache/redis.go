package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/marketgate/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisHost   = "127.0.0.1"
	defaultRedisPort   = 6379
	defaultRedisPrefix = "mg"
)

// store 进程内唯一的 Redis 连接与 key 前缀；client 为 nil 表示缓存关闭
type store struct {
	client *redis.Client
	prefix string
}

var current = &store{prefix: defaultRedisPrefix}

// InitRedis 按配置初始化 Redis 客户端，未启用时所有缓存操作都是空操作
func InitRedis(cfg *config.RedisConfig) error {
	if current.client != nil {
		_ = current.client.Close()
	}
	if cfg == nil || !cfg.Enabled {
		current = &store{prefix: defaultRedisPrefix}
		return nil
	}

	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = defaultRedisHost
	}
	port := cfg.Port
	if port <= 0 {
		port = defaultRedisPort
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	current = &store{
		client: redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		prefix: prefix,
	}
	return nil
}

// Enabled 缓存是否启用
func Enabled() bool {
	return current.client != nil
}

// Client 原始客户端，供限流等需要直接执行脚本的组件使用
func Client() *redis.Client {
	return current.client
}

// Close 关闭连接
func Close() error {
	if current.client == nil {
		return nil
	}
	err := current.client.Close()
	current = &store{prefix: current.prefix}
	return err
}

// getJSON 读取并解码缓存，未命中返回 (nil, false, nil)
func getJSON[T any](ctx context.Context, key string) (*T, bool, error) {
	if current.client == nil {
		return nil, false, nil
	}
	raw, err := current.client.Get(ctx, current.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, false, err
	}
	return &value, true, nil
}

func setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if current.client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return current.client.Set(ctx, current.key(key), payload, ttl).Err()
}

func del(ctx context.Context, keys ...string) error {
	if current.client == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		full = append(full, current.key(key))
	}
	return current.client.Del(ctx, full...).Err()
}

func (s *store) key(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return s.prefix
	}
	return s.prefix + ":" + trimmed
}
