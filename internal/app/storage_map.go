package app

import (
	"fmt"
	"strings"
	"time"

	"lte2mqtt/internal/config"
	"lte2mqtt/internal/storage"
)

func mapStorageConfig(cfg *config.Config) (storage.Config, bool, error) {
	if cfg == nil || !cfg.StorageEnabled() {
		return storage.Config{}, false, nil
	}
	sc := cfg.Storage
	driver := strings.ToLower(strings.TrimSpace(sc.Driver))
	path := strings.TrimSpace(sc.Path)

	switch driver {
	case "file":
		return storage.Config{Driver: "file", Path: path, HistorySize: sc.HistorySize}, true, nil
	case "sqlite", "sqlite3":
		if path == "" {
			return storage.Config{}, false, fmt.Errorf("storage.path is required when storage.driver=sqlite")
		}
		busy := cfg.StorageBusyTimeout()
		if busy == 0 {
			busy = 1 * time.Second
		}
		return storage.Config{Driver: driver, Path: path, BusyTimeout: busy, HistorySize: sc.HistorySize}, true, nil
	default:
		return storage.Config{}, false, fmt.Errorf("unknown storage.driver: %s", sc.Driver)
	}
}
