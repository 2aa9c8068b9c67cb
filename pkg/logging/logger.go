package logging

import (
	"go.uber.org/zap"
)

// NewLogger builds the process logger. Local environments get the console
// development encoder; everything else gets production JSON.
func NewLogger(env string) (*zap.Logger, error) {
	switch env {
	case "local", "development", "test":
		cfg := zap.NewDevelopmentConfig()
		return cfg.Build()
	default:
		return zap.NewProduction()
	}
}
