package storage

import (
	"errors"
	"time"

	"lte2mqtt/internal/traffic"
)

var ErrDisabled = errors.New("storage disabled")

// DefaultHistorySize bounds the number of kept tick records.
const DefaultHistorySize = 2000

// Config configures storage.
//
// Driver values:
//   - "file": dependency-free file backend (JSON snapshot + JSONL history)
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
	HistorySize int
}

// TickRecord is one persisted tick.
type TickRecord struct {
	At    time.Time             `json:"at"`
	RunID string                `json:"run_id"`
	Reset traffic.ResetDecision `json:"reset_decision"`
	traffic.TickResult
}

func historySize(n int) int {
	if n <= 0 {
		return DefaultHistorySize
	}
	return n
}
