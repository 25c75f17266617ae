package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConnectMongoWithRetryRejectsBadURI(t *testing.T) {
	start := time.Now()
	_, err := ConnectMongoWithRetry(context.Background(), "not-a-mongo-uri", 100*time.Millisecond, 2, 10*time.Millisecond)
	require.ErrorContains(t, err, "after 2 attempts")
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestConnectMongoWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ConnectMongoWithRetry(ctx, "not-a-mongo-uri", 100*time.Millisecond, 5, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
}
