package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/palemoky/contentiq/internal/config"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestRunServesAndShutsDown(t *testing.T) {
	port := freePort(t)
	cfg := &config.Config{
		Server: config.ServerConfig{Port: port, Mode: "test"},
		Analysis: config.AnalysisConfig{
			Delay:           10 * time.Millisecond,
			TTL:             time.Minute,
			JanitorInterval: time.Second,
			CacheSize:       8,
		},
		Store:     config.StoreConfig{DSN: "file:server_test?mode=memory&cache=shared", MaxOpenConns: 1, MaxIdleConns: 1},
		RateLimit: config.RateLimitConfig{Enabled: true, RequestsPerSecond: 100, Burst: 100, IdleTimeout: time.Minute},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg, zaptest.NewLogger(t)) }()

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/api/v1/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Post(base+"/api/v1/estimate", "application/json", strings.NewReader(`{"url":"https://example.com"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunFailsOnBadStore(t *testing.T) {
	cfg := &config.Config{
		Server:    config.ServerConfig{Port: freePort(t), Mode: "test"},
		Analysis:  config.AnalysisConfig{TTL: time.Minute, JanitorInterval: time.Second},
		Store:     config.StoreConfig{DSN: "/nonexistent-dir/contentiq.db"},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1, IdleTimeout: time.Minute},
	}

	err := Run(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}
