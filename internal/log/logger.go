// Package log builds the zap loggers used by packstore and its tools.
package log

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level and encoding of a logger.
type Config struct {
	Level    string `json:"level" yaml:"level"`       // debug, info, warn, error, silent
	Encoding string `json:"encoding" yaml:"encoding"` // json or console
}

// DefaultConfig logs warnings and errors as JSON.
func DefaultConfig() Config {
	return Config{Level: "warn", Encoding: "json"}
}

// Validate checks the level and encoding names.
func (c Config) Validate() error {
	if _, _, err := parseLevel(c.Level); err != nil {
		return err
	}
	switch c.Encoding {
	case "", "json", "console":
		return nil
	default:
		return fmt.Errorf("log: unknown encoding %q", c.Encoding)
	}
}

// New builds a logger writing to stderr. A "silent" level returns a no-op
// logger.
func New(c Config) (*zap.Logger, error) {
	level, silent, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	if silent {
		return zap.NewNop(), nil
	}
	encoding := c.Encoding
	if encoding == "" {
		encoding = "json"
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	if encoding == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	config := zap.Config{
		Level:       zap.NewAtomicLevelAt(level),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}
	return config.Build()
}

func parseLevel(s string) (zapcore.Level, bool, error) {
	switch strings.ToLower(s) {
	case "debug":
		return zap.DebugLevel, false, nil
	case "info":
		return zap.InfoLevel, false, nil
	case "", "warn", "warning":
		return zap.WarnLevel, false, nil
	case "error":
		return zap.ErrorLevel, false, nil
	case "silent", "none":
		return zap.InfoLevel, true, nil
	default:
		return zap.InfoLevel, false, fmt.Errorf("log: unknown level %q", s)
	}
}
