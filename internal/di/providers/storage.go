package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/linkvaultapp/linkvault-server/internal/config"
	"github.com/linkvaultapp/linkvault-server/internal/logger"
	"github.com/linkvaultapp/linkvault-server/internal/media"
)

// ProvideMediaStorage provides the uploaded-media file storage.
func ProvideMediaStorage(i do.Injector) (*media.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := media.NewStorage(cfg.UploadPath(), cfg.Media.MaxUploadBytes)
	if err != nil {
		return nil, fmt.Errorf("media storage: %w", err)
	}

	log.Info("Media storage initialized",
		"path", cfg.UploadPath(),
		"max_upload_bytes", cfg.Media.MaxUploadBytes,
	)

	return storage, nil
}
