package providers

import (
	"github.com/samber/do/v2"

	"github.com/linkvaultapp/linkvault-server/internal/auth"
	"github.com/linkvaultapp/linkvault-server/internal/logger"
	"github.com/linkvaultapp/linkvault-server/internal/media"
	"github.com/linkvaultapp/linkvault-server/internal/ratelimit"
	"github.com/linkvaultapp/linkvault-server/internal/service"
	"github.com/linkvaultapp/linkvault-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	lockout := do.MustInvoke[*ratelimit.Lockout](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, lockout, validator, log.Logger), nil
}

// ProvideCollectionService provides the collection service.
func ProvideCollectionService(i do.Injector) (*service.CollectionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCollectionService(storeHandle.Store, validator, log.Logger), nil
}

// ProvideBookmarkService provides the bookmark service.
func ProvideBookmarkService(i do.Injector) (*service.BookmarkService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	mediaStorage := do.MustInvoke[*media.Storage](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookmarkService(storeHandle.Store, mediaStorage, validator, log.Logger), nil
}

// ProvideCanvasService provides the canvas diagram service.
func ProvideCanvasService(i do.Injector) (*service.CanvasService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCanvasService(storeHandle.Store, validator, log.Logger), nil
}
