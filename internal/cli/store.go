package cli

import (
	"context"
	"errors"
	"fmt"

	"optitask/internal/backend/googletasks"
	"optitask/internal/backend/httpapi"
	"optitask/internal/backend/memstore"
	"optitask/internal/config"
	"optitask/internal/service"
)

// NewStore builds the Record Store selected by cfg.Settings.Backend.
func NewStore(ctx context.Context, cfg *config.Config) (service.RecordStore, error) {
	switch cfg.Settings.Backend {
	case config.BackendHTTP:
		return httpapi.NewClient(cfg.Settings.ServerURL, nil), nil
	case config.BackendGoogle:
		if !cfg.HasOAuthClient() {
			return nil, fmt.Errorf("oauth_client.json not found in %s (run: optitask login)", cfg.Dir)
		}
		if !cfg.HasToken() {
			return nil, errors.New("not logged in (run: optitask login)")
		}
		return googletasks.New(ctx, cfg)
	case config.BackendMemory:
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Settings.Backend)
	}
}
