package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"service-shop-delivery/internal/config"
	"service-shop-delivery/internal/logx"
)

// Log formats.
const (
	formatJSON = "json"
	formatText = "text"
	formatZap  = "zap"
)

// NewLogger builds the service logger from cfg.Log.
func NewLogger(cfg *config.Config) (logx.Logger, error) {
	return newLogger(cfg.Log, os.Stdout)
}

func newLogger(c config.Log, w io.Writer) (logx.Logger, error) {
	format := strings.ToLower(strings.TrimSpace(c.Format))
	if format == formatZap {
		return newZapLogger(c.Level)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", c.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch format {
	case "", formatJSON:
		return logx.NewSlogAdapter(slog.New(slog.NewJSONHandler(w, opts))), nil
	case formatText:
		return logx.NewSlogAdapter(slog.New(slog.NewTextHandler(w, opts))), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Format)
	}
}

func newZapLogger(levelName string) (logx.Logger, error) {
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", levelName, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zl, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return logx.NewZapAdapter(zl), nil
}
