package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	applog "quikmart/internal/logger"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingMiddlewareTagsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context(), zap.NewNop()).Info("handler ran")
		w.WriteHeader(http.StatusCreated)
	})
	handler := middleware.RequestID(LoggingMiddleware(base)(inner))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/products", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "handler ran", entries[0].Message)
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])

	completed := entries[1].ContextMap()
	assert.Equal(t, entries[0].ContextMap()["request_id"], completed["request_id"])
	assert.EqualValues(t, http.StatusCreated, completed["status"])
}
