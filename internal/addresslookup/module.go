// Package addresslookup provides the postcode lookup bounded context module.
// This file defines the module that encapsulates all lookup setup.
package addresslookup

import (
	"context"

	"postcode_lookup/internal/addresslookup/cache"
	"postcode_lookup/internal/addresslookup/client"
	"postcode_lookup/internal/addresslookup/service"
	apphttp "postcode_lookup/internal/http"
	"postcode_lookup/platform/config"
	"postcode_lookup/platform/httpkit"
	"postcode_lookup/platform/logger"
	"postcode_lookup/platform/validator"
)

// ModuleConfig combines the config interfaces the lookup module reads.
type ModuleConfig interface {
	config.LookupConfig
	config.RateLimitConfig
}

// Module is the postcode lookup bounded context module.
type Module struct {
	client  *client.Client
	service *service.Service
	cache   cache.Cache
	handler *Handler
	limiter *httpkit.IPRateLimiter
}

// NewModule creates and initializes the lookup module. Missing provider
// keys do not disable the route: lookups then answer "not configured".
func NewModule(cfg ModuleConfig, lookupCache cache.Cache, val *validator.Validator, log *logger.Logger) *Module {
	apiClient := client.New(client.Config{
		BaseURL:  cfg.GetProviderURL(),
		APIKey:   cfg.GetProviderAPIKey(),
		AdminKey: cfg.GetProviderAdminKey(),
		Timeout:  cfg.GetLookupTimeout(),
	}, log)

	if !cfg.IsLookupConfigured() {
		log.Warn("postcode lookup unconfigured: GETADDRESS_API_KEY and GETADDRESS_ADMIN_KEY are required")
	}

	svc := service.New(apiClient, log,
		service.WithCache(lookupCache),
		service.WithTimeout(cfg.GetLookupTimeout()),
	)

	limiter := httpkit.NewPerMinuteRateLimiter(cfg.GetLookupRatePerMinute(), cfg.GetLookupRateBurst(), log).
		WithRejectHandler(RateLimited)

	log.Info("postcode lookup module initialized", "configured", cfg.IsLookupConfigured())

	return &Module{
		client:  apiClient,
		service: svc,
		cache:   lookupCache,
		handler: NewHandler(svc, val, log),
		limiter: limiter,
	}
}

// Service returns the lookup service for in-process callers.
func (m *Module) Service() *service.Service {
	return m.service
}

// Ping reports whether the configured cache backend answers. Caches without
// a remote backend are always ready.
func (m *Module) Ping(ctx context.Context) error {
	if pinger, ok := m.cache.(cache.Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

// ProviderHealth checks that the address provider answers.
func (m *Module) ProviderHealth() apphttp.HealthChecker {
	return apphttp.HealthCheckerFunc(m.client.Ping)
}

func (m *Module) Name() string {
	return "addresslookup"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/postcode-lookup", m.limiter.RateLimit(), m.handler.Lookup)
}

var _ apphttp.Module = (*Module)(nil)
