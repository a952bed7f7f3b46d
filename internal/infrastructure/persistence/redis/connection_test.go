package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cyberrisk/internal/config"
	"github.com/turtacn/cyberrisk/pkg/logger"
)

func TestNewClient_Modes(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.RedisConfig
		wantErr string
		want    interface{}
	}{
		{name: "standalone default", cfg: config.RedisConfig{Address: "localhost:6379"}, want: &redis.Client{}},
		{name: "standalone without address", cfg: config.RedisConfig{Mode: "standalone"}, wantErr: "redis address not configured"},
		{name: "cluster", cfg: config.RedisConfig{Mode: "cluster", Addresses: []string{"a:7000", "b:7001"}}, want: &redis.ClusterClient{}},
		{name: "cluster without nodes", cfg: config.RedisConfig{Mode: "cluster"}, wantErr: "cluster addresses not configured"},
		{name: "sentinel", cfg: config.RedisConfig{Mode: "sentinel", Addresses: []string{"s:26379"}, MasterName: "mymaster"}, want: &redis.Client{}},
		{name: "sentinel without master", cfg: config.RedisConfig{Mode: "sentinel", Addresses: []string{"s:26379"}}, wantErr: "sentinel master name not configured"},
		{name: "unknown mode", cfg: config.RedisConfig{Mode: "ring"}, wantErr: "unsupported Redis mode: ring"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer client.Close()
			assert.IsType(t, tt.want, client)
		})
	}
}

func TestPing(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	log := logger.NewNoopLogger()

	cfg := config.RedisConfig{Address: mr.Addr(), DialTimeout: time.Second}
	client, err := NewClient(cfg)
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, Ping(ctx, client, cfg, log))

	mr.Close()
	assert.Error(t, Ping(ctx, client, cfg, log))
}
