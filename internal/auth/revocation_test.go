package auth

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRevokeAndExpire(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	list := NewRedisRevocationList(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	ctx := context.Background()
	require.NoError(t, list.Revoke(ctx, "access-token-1", 2*time.Second))

	ok, err := list.IsRevoked(ctx, "access-token-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = list.IsRevoked(ctx, "access-token-2")
	require.NoError(t, err)
	require.False(t, ok)

	m.FastForward(3 * time.Second)
	ok, err = list.IsRevoked(ctx, "access-token-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNilRevocationListIsNoop(t *testing.T) {
	list := NewRedisRevocationList(nil)
	require.Nil(t, list)
	require.NoError(t, list.Revoke(context.Background(), "t", time.Second))
	ok, err := list.IsRevoked(context.Background(), "t")
	require.NoError(t, err)
	require.False(t, ok)
}
