package logging

import "go.uber.org/zap"

// ============================================================
// Logging
// ============================================================

// New builds the service logger: human-readable in development,
// JSON in any other environment.
func New(environment string) (*zap.SugaredLogger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
