package logger

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Every recognised level name yields a logger enabled at exactly that level
func TestProperty_LevelNamesAreHonoured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("logger is enabled at the configured level", prop.ForAll(
		func(env string, level string) bool {
			logger, err := New(env, level)
			if err != nil {
				t.Logf("FAIL: New(%q, %q) returned %v", env, level, err)
				return false
			}
			defer logger.Sync()

			want, _ := zapcore.ParseLevel(level)
			if !logger.Core().Enabled(want) {
				return false
			}
			if want > zapcore.DebugLevel && logger.Core().Enabled(want-1) {
				return false
			}
			return true
		},
		gen.OneConstOf("production", "development"),
		gen.OneConstOf("debug", "info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("production", "chatty"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewWithDefaultsFallsBack(t *testing.T) {
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("LOG_LEVEL", "nonsense")

	if logger := NewWithDefaults(); logger == nil {
		t.Fatal("expected fallback logger")
	}
}

func TestFromContextReturnsRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	requestLogger := zap.New(core).With(zap.String("request_id", "abc"))
	fallback := zap.NewNop()

	ctx := WithContext(context.Background(), requestLogger)
	FromContext(ctx, fallback).Info("cart updated")

	if logs.Len() != 1 {
		t.Fatalf("expected 1 log entry, got %d", logs.Len())
	}
	entry := logs.All()[0]
	if entry.ContextMap()["request_id"] != "abc" {
		t.Errorf("expected request_id field, got %v", entry.ContextMap())
	}

	if FromContext(context.Background(), fallback) != fallback {
		t.Error("expected fallback logger when context carries none")
	}
}
