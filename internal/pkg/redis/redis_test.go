package redis

import (
	"context"
	"testing"
	"time"

	"github.com/lk2023060901/world-explorer/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "missing addr", mutate: func(c *Config) { c.Addr = "" }, wantErr: true},
		{name: "db out of range", mutate: func(c *Config) { c.DB = 16 }, wantErr: true},
		{name: "zero pool", mutate: func(c *Config) { c.PoolSize = 0 }, wantErr: true},
		{name: "idle above pool", mutate: func(c *Config) { c.MinIdleConns = 11 }, wantErr: true},
		{name: "zero dial timeout", mutate: func(c *Config) { c.DialTimeout = 0 }, wantErr: true},
		{name: "negative retries", mutate: func(c *Config) { c.MaxRetries = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew_Unreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "127.0.0.1:1"
	cfg.DialTimeout = 200 * time.Millisecond
	cfg.MaxRetries = 0

	c, err := New(cfg, logger.NewNop())
	require.Error(t, err)
	assert.Nil(t, c)
}

func TestNilClient(t *testing.T) {
	var c *Client
	assert.ErrorIs(t, c.Ping(context.Background()), ErrNotInitialized)
	_, err := c.Eval(context.Background(), "return 1", nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.NoError(t, c.Close())
}
