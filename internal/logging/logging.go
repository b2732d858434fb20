// Package logging builds the process logger.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a JSON production logger writing to stderr at level
// (debug, info, warn, error). An empty level means warn.
func New(level string) (*zap.Logger, error) {
	if level == "" {
		level = "warn"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return cfg.Build()
}
