package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/ticket-tracker/internal/config"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets", http.MethodGet, 200, 2*time.Millisecond)
	m.RecordRequest("/tickets", http.MethodGet, 200, 4*time.Millisecond)
	m.RecordRequest("/health/live", http.MethodGet, 200, time.Millisecond)
	m.RecordError("/tickets/:id", http.MethodDelete, "FORBIDDEN")

	snap := m.Snapshot()
	require.Len(t, snap.Requests, 2)
	assert.Equal(t, "/health/live", snap.Requests[0].Path)
	assert.Equal(t, Counter{Path: "/tickets", Method: "GET", Label: "200", Count: 2, AvgMillis: 3}, snap.Requests[1])
	require.Len(t, snap.Errors, 1)
	assert.Equal(t, "FORBIDDEN", snap.Errors[0].Label)

	var nilMetrics *Metrics
	nilMetrics.RecordRequest("/", "GET", 200, 0)
	assert.Empty(t, nilMetrics.Snapshot().Requests)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/tickets/:id", func(c *fiber.Ctx) error {
		if c.Params("id") == "missing" {
			return c.SendStatus(http.StatusNotFound)
		}
		return c.SendString("ok")
	})

	for _, id := range []string{"a", "b", "missing"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tickets/"+id, nil))
		require.NoError(t, err)
		resp.Body.Close()
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "/tickets/missing", entries[2].ContextMap()["path"])

	snap := metrics.Snapshot()
	require.Len(t, snap.Requests, 2)
	assert.Equal(t, Counter{Path: "/tickets/:id", Method: "GET", Label: "200", Count: 2, AvgMillis: snap.Requests[0].AvgMillis}, snap.Requests[0])
	assert.Equal(t, "404", snap.Requests[1].Label)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "DEBUG"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewCLILogger(config.LoggerConfig{Level: "nonsense"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}
