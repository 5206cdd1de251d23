package internal

import (
	"fmt"
	"github.com/robinovitch61/vl/internal/config"
	"github.com/robinovitch61/vl/internal/dev"
	"github.com/robinovitch61/vl/internal/logger"
	"github.com/robinovitch61/vl/internal/source"
	"io"
	"os"
)

// NewSource returns the items file source if one is configured, the synthetic source otherwise
func NewSource(c config.Config) (source.Source, error) {
	if c.ItemsPath != "" {
		return source.LoadYAML(c.ItemsPath)
	}
	return source.NewSynthetic(source.SyntheticOptions{
		Count:    c.Count,
		Latency:  c.Latency,
		Seed:     c.Seed,
		FailRate: c.FailRate,
	}), nil
}

// NewLogger returns the application logger and a func that closes its file. Without a log file, the debug log is
// used when VL_DEBUG is set
func NewLogger(c config.Config) (*logger.Logger, io.Closer, error) {
	if c.LogFile == "" {
		if dev.Enabled() {
			return dev.Logger().WithFields(map[string]any{"component": "app"}), io.NopCloser(nil), nil
		}
		return logger.Nop(), io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log, err := logger.New(logger.Options{Level: c.LogLevel, Writer: f})
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return log.WithFields(map[string]any{"component": "app"}), f, nil
}
