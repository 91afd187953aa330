package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"rifa-digital/backend/config"
)

// Client Redis 客户端封装
// 当前用于限流计数与公开进度接口的售出数缓存
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 限流计数 ──

// CheckRateLimit 固定窗口限流：窗口内第 limit+1 次请求返回 false
// 使用 INCR + 首次设置 EXPIRE，窗口边界上可能短暂超限，对本场景足够
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// ── 售出数缓存 ──

const soldCountKey = "raffle:sold_count"

// CacheSoldCount 缓存当前售出号码总数
func (c *Client) CacheSoldCount(ctx context.Context, count int, ttl time.Duration) error {
	return c.rdb.Set(ctx, soldCountKey, count, ttl).Err()
}

// SoldCount 读取缓存的售出号码总数；缓存未命中时 ok=false
func (c *Client) SoldCount(ctx context.Context) (count int, ok bool, err error) {
	val, err := c.rdb.Get(ctx, soldCountKey).Result()
	if err == goredis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, nil // 缓存值损坏按未命中处理
	}
	return n, true, nil
}

// InvalidateSoldCount 使售出数缓存失效（认领成功后调用）
func (c *Client) InvalidateSoldCount(ctx context.Context) error {
	return c.rdb.Del(ctx, soldCountKey).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
