package storage

import (
	"context"
	"errors"
	"strings"

	logx "lte2mqtt/pkg/logx"
)

// Store is the local persistence API.
//
// Unset variables and devices read as "0" so a fresh store starts counting
// from zero.
type Store interface {
	Variable(ctx context.Context, idx int) (string, error)
	SetVariable(ctx context.Context, idx int, value string) error
	DeviceValue(ctx context.Context, idx int) (string, error)
	SetDeviceValue(ctx context.Context, idx int, value string) error

	AppendTick(ctx context.Context, rec TickRecord) error
	// RecentTicks returns up to n records, newest first.
	RecentTicks(ctx context.Context, n int) ([]TickRecord, error)

	Close() error
}

const unsetValue = "0"

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	log = log.With(logx.String("comp", "storage"), logx.String("driver", driver))

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
