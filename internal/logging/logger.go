// Package logging builds the process logger from the runtime environment.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON zap logger. development and local get the development
// profile at debug level; everything else gets the production profile at
// info. A non-empty level overrides the default.
func New(env, level string) (*zap.Logger, error) {
	cfg := configFor(env)

	if strings.TrimSpace(level) != "" {
		var parsed zapcore.Level
		if err := parsed.Set(level); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

func isDevelopment(env string) bool {
	switch strings.ToLower(env) {
	case "development", "local":
		return true
	default:
		return false
	}
}

func configFor(env string) zap.Config {
	var cfg zap.Config
	if isDevelopment(env) {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Encoding = "json"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.DisableStacktrace = true
	return cfg
}
