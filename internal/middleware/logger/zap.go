package logger

import (
	"os"

	"go.uber.org/zap"
)

// NewLogger builds the service logger: JSON production output by default,
// console development output when THUNDLE_ENV=development.
func NewLogger() (*zap.Logger, error) {
	if os.Getenv("THUNDLE_ENV") == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
