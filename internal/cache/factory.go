package cache

import (
	"log/slog"
	"strings"

	"greenearth/internal/config"
)

func MakeCache(cfg config.CacheConfig) (Cache, error) {
	if strings.TrimSpace(cfg.AzureAccountName) != "" {
		slog.Info("using Azure Blob Storage for catalog snapshots", "container", cfg.Container)
		blob, err := NewBlobCache(cfg)
		if err != nil {
			return nil, err
		}
		return blob, nil
	}

	if dir := strings.TrimSpace(cfg.Dir); dir != "" {
		slog.Info("using file cache for catalog snapshots", "dir", dir)
		return NewFileCache(dir), nil
	}

	return NewInMemoryCache(), nil
}
