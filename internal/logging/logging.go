// Package logging constructs the application's zap logger.
package logging

import "go.uber.org/zap"

// New builds a logger appropriate for the environment: human-readable in
// development, JSON in production.
func New(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
