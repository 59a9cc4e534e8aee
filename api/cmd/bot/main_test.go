package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestRetryDelayFromError(t *testing.T) {
	require.Zero(t, retryDelayFromError(nil))
	require.Equal(t, 7*time.Second, retryDelayFromError(errors.New("Too Many Requests: retry after 7")))
	require.Equal(t, 3*time.Second, retryDelayFromError(errors.New("Too Many Requests")))
	require.Equal(t, 2*time.Second, retryDelayFromError(timeoutErr{}))
	require.Equal(t, time.Second, retryDelayFromError(errors.New("boom")))
}

func TestClampDelay(t *testing.T) {
	require.Equal(t, time.Second, clampDelay(0))
	require.Equal(t, 15*time.Second, clampDelay(time.Minute))
	require.Equal(t, 3*time.Second, clampDelay(3*time.Second))
}

func TestSleepCtx(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.False(t, sleepCtx(ctx, time.Hour))
	require.True(t, sleepCtx(context.Background(), time.Millisecond))
}

func TestShortHash(t *testing.T) {
	a := shortHash("123:abc")
	require.Len(t, a, 16)
	require.Equal(t, a, shortHash("123:abc"))
	require.NotEqual(t, a, shortHash("123:abd"))
}
