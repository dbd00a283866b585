// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"postcode_lookup/platform/config"
	"postcode_lookup/platform/logger"
	"postcode_lookup/platform/validator"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheckerFunc adapts a function to HealthChecker.
type HealthCheckerFunc func(ctx context.Context) error

func (f HealthCheckerFunc) Ping(ctx context.Context) error { return f(ctx) }

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration.
	Config RouterConfig
	// Env is the application environment; it selects the gin mode.
	Env string
	// Logger is the structured logger.
	Logger *logger.Logger
	// Validator is shared by every module's request binding.
	Validator *validator.Validator
	// Health lists named dependencies pinged by the readiness endpoint.
	Health map[string]HealthChecker
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
