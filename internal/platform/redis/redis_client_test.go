package redis

import (
	"context"
	"net"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_PASSWORD", "pw")
	t.Setenv("REDIS_DB", "2")

	cfg := LoadConfigFromEnv()

	assert.Equal(t, Config{Host: "cache", Port: "6380", Password: "pw", DB: 2}, cfg)
	assert.Equal(t, "cache:6380", cfg.Addr())
}

func TestLoadConfigFromEnv_BadDB(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_DB", "x")

	cfg := LoadConfigFromEnv()

	assert.Equal(t, 0, cfg.DB)
	assert.False(t, cfg.Enabled())
}

func TestConfig_AddrDefaultPort(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "localhost:6379", Config{Host: "localhost"}.Addr())
}

func TestNewRedisClient_Disabled(t *testing.T) {
	t.Parallel()

	rdb, err := NewRedisClient(context.Background(), Config{})

	require.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestNewRedisClient_Connects(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	rdb, err := NewRedisClient(context.Background(), Config{Host: host, Port: port})
	require.NoError(t, err)
	require.NotNil(t, rdb)
	t.Cleanup(func() { _ = rdb.Close() })

	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	assert.True(t, mr.Exists("k"))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	mr.Close()

	rdb, err := NewRedisClient(context.Background(), Config{Host: host, Port: port})

	assert.Error(t, err)
	assert.Nil(t, rdb)
}
