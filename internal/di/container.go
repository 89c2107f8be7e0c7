// Package di provides dependency injection configuration for the LinkVault server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/linkvaultapp/linkvault-server/internal/auth"
	"github.com/linkvaultapp/linkvault-server/internal/config"
	"github.com/linkvaultapp/linkvault-server/internal/di/providers"
	"github.com/linkvaultapp/linkvault-server/internal/logger"
	"github.com/linkvaultapp/linkvault-server/internal/media"
	"github.com/linkvaultapp/linkvault-server/internal/ratelimit"
	"github.com/linkvaultapp/linkvault-server/internal/service"
	"github.com/linkvaultapp/linkvault-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideLockout)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Storage layer
	do.Provide(injector, providers.ProvideMediaStorage)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideCollectionService)
	do.Provide(injector, providers.ProvideBookmarkService)
	do.Provide(injector, providers.ProvideCanvasService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*ratelimit.Lockout](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*media.Storage](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.CollectionService](injector)
	_ = do.MustInvoke[*service.BookmarkService](injector)
	_ = do.MustInvoke[*service.CanvasService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
