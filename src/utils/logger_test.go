package utils_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"stockbot/src/utils"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("parses the level", func(t *testing.T) {
		logger, err := utils.NewLogger("debug", "")
		require.NoError(t, err)
		assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	})

	t.Run("rejects an unknown level", func(t *testing.T) {
		_, err := utils.NewLogger("loud", "")
		assert.Error(t, err)
	})

	t.Run("writes JSON lines to the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "stockbot.log")
		logger, err := utils.NewLogger("info", path)
		require.NoError(t, err)

		logger.WithField("symbol", "AAPL").Info("buy accepted")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"symbol":"AAPL"`)
		assert.Contains(t, string(content), `"msg":"buy accepted"`)
	})
}

func TestLoggerFromContext(t *testing.T) {
	entry := logrus.New().WithField("job", "warm_quotes")
	ctx := utils.WithLogger(context.Background(), entry)
	assert.Same(t, entry, utils.LoggerFromContext(ctx))
	assert.NotNil(t, utils.LoggerFromContext(context.Background()))
}

func TestLoggerMiddleware(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	var seen *logrus.Entry
	handler := utils.LoggerMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = utils.LoggerFromContext(r.Context())
		seen.Info("handling")
	}))
	handler = middleware.RequestID(handler)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/portfolio/u1", nil))

	require.NotNil(t, seen)
	assert.Same(t, logger, seen.Logger)
	assert.Equal(t, http.MethodGet, seen.Data["method"])
	assert.Equal(t, "/api/portfolio/u1", seen.Data["path"])
	assert.NotEmpty(t, seen.Data["request_id"])

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "handling", entries[0].Message)
	assert.Equal(t, "/api/portfolio/u1", entries[0].Data["path"])
	assert.Equal(t, "request served", entries[1].Message)
	assert.Contains(t, entries[1].Data, "duration")
}
