// server/internal/logger/logger.go
package logger

import (
	"go.uber.org/zap"
)

// New builds the production zap logger used across the server.
func New() (*zap.Logger, error) {
	return zap.NewProduction()
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() *zap.Logger {
	return zap.NewNop()
}
