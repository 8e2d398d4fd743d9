package loki

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type MockLogger struct {
	mu     sync.Mutex
	errors []string
}

func (m *MockLogger) Error(msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func Test_ConfigValidation(t *testing.T) {
	cfg := Config{}
	_, err := New(context.Background(), cfg, &MockLogger{})
	assert.Error(t, err)

	cfg.Url = "http://localhost:3100/loki/api/v1/push"
	pusher, err := New(context.Background(), cfg, &MockLogger{})
	require.NoError(t, err)
	defer pusher.Stop()

	assert.Equal(t, cfg.Url, pusher.config.Url)
	assert.Equal(t, 1000, pusher.config.BatchMaxSize)
	assert.Equal(t, 5*time.Second, pusher.config.BatchMaxWait)
	assert.Equal(t, map[string]string{}, pusher.config.Labels)
}

func Test_Pusher_Stop_ShouldFlushBatchGroupedByLevel(t *testing.T) {

	var mu sync.Mutex
	var received pushRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Content-Encoding"))
		user, password, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "user", user)
		assert.Equal(t, "secret", password)

		gz, err := gzip.NewReader(r.Body)
		require.NoError(t, err)

		mu.Lock()
		defer mu.Unlock()
		require.NoError(t, json.NewDecoder(gz).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	logger := &MockLogger{}
	pusher, err := New(context.Background(), Config{
		Url:          server.URL,
		BatchMaxWait: time.Hour,
		Labels:       map[string]string{"app": "solon"},
		Username:     "user",
		Password:     "secret",
	}, logger)
	require.NoError(t, err)

	assert.NoError(t, pusher.Push(LogEntry{Level: "error", Message: "first"}))
	assert.NoError(t, pusher.Push(LogEntry{Level: "info", Message: "second"}))
	assert.NoError(t, pusher.Push(LogEntry{Level: "error", Message: "third"}))
	pusher.Stop()

	mu.Lock()
	defer mu.Unlock()

	require.Len(t, received.Streams, 2)
	lines := map[string]int{}
	for _, s := range received.Streams {
		assert.Equal(t, "solon", s.Stream["app"])
		lines[s.Stream["level"]] += len(s.Values)
	}
	assert.Equal(t, map[string]int{"error": 2, "info": 1}, lines)
	assert.Empty(t, logger.errors)

	assert.ErrorIs(t, pusher.Push(LogEntry{Level: "info"}), ErrStopped)
	pusher.Stop()
}
