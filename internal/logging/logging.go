// Package logging builds the zap logger shared by the web, MCP and terminal front ends.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hpungsan/adapty/internal/config"
)

// New builds a logger from cfg that writes to stderr.
// Stdout is reserved for CLI JSON output and the MCP stdio transport.
func New(cfg *config.Config) (*zap.Logger, error) {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter builds a logger from cfg that writes to w.
func NewWithWriter(cfg *config.Config, w io.Writer) (*zap.Logger, error) {
	levelName, format := "info", "console"
	if cfg != nil {
		if cfg.LogLevel != "" {
			levelName = cfg.LogLevel
		}
		if cfg.LogFormat != "" {
			format = cfg.LogFormat
		}
	}

	level, err := zapcore.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		return nil, fmt.Errorf("invalid log_level %q: %w", levelName, err)
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(format) {
	case "json":
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	case "console":
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("invalid log_format %q: must be console or json", format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(level))
	return zap.New(core), nil
}
