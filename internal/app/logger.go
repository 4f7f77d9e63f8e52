package app

import (
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"

	"github.com/heartmarshall/hearme-backend/internal/config"
)

// NewLogger creates a *slog.Logger backed by zap and sets it as the default
// logger via slog.SetDefault. The returned func flushes buffered entries and
// should be deferred by the caller.
//
// Format "json" uses zap's production encoder.
// Format "text" uses the development console encoder with caller info.
// Level is one of: debug, info, warn, error (case-insensitive); defaults to info.
// Output is always os.Stderr.
func NewLogger(cfg config.LogConfig) (*slog.Logger, func() error) {
	logger, sync := newLogger(zapcore.Lock(os.Stderr), cfg)
	slog.SetDefault(logger)
	return logger, sync
}

func newLogger(w zapcore.WriteSyncer, cfg config.LogConfig) (*slog.Logger, func() error) {
	text := strings.EqualFold(cfg.Format, "text")

	var enc zapcore.Encoder
	if text {
		ec := zap.NewDevelopmentEncoderConfig()
		enc = zapcore.NewConsoleEncoder(ec)
	} else {
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(ec)
	}

	zl := zap.New(zapcore.NewCore(enc, w, parseLevel(cfg.Level)))
	return slog.New(zapslog.NewHandler(zl.Core(), zapslog.WithCaller(text))), zl.Sync
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
