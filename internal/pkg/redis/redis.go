package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/lk2023060901/world-explorer/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client Redis 客户端封装
type Client struct {
	config *Config
	logger *logger.Logger
	rdb    *redis.Client
}

// New connects to Redis and pings it once before returning
func New(cfg *Config, log *logger.Logger) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.L()
	}

	c := &Client{
		config: cfg,
		logger: log.Named("redis"),
		rdb: redis.NewClient(&redis.Options{
			Addr:         cfg.Addr,
			Username:     cfg.Username,
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			MaxRetries:   cfg.MaxRetries,
		}),
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout+time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		_ = c.rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	c.logger.Info("redis client initialized", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return c, nil
}

// Ping 健康检查
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return ErrNotInitialized
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		c.logger.Error("redis ping failed", zap.Error(err))
		return err
	}
	return nil
}

// Eval 执行 Lua 脚本
func (c *Client) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	if c == nil || c.rdb == nil {
		return nil, ErrNotInitialized
	}
	result, err := c.rdb.Eval(ctx, script, keys, args...).Result()
	if err != nil && !IsNil(err) {
		c.logger.Error("redis eval failed", zap.Strings("keys", keys), zap.Error(err))
	}
	return result, err
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	if err := c.rdb.Close(); err != nil {
		c.logger.Error("close redis client failed", zap.Error(err))
		return err
	}
	return nil
}
