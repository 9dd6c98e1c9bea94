package log

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// NewFileHandler creates a handler that appends to the configured log file.
func NewFileHandler(cfg *Config, level slog.Level) (slog.Handler, error) {
	dir := filepath.Dir(cfg.FilePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.NewJSONHandler(file, opts), nil
	}
	return slog.NewTextHandler(file, opts), nil
}
