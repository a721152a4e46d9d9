package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	logx "lte2mqtt/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log logx.Logger

	historySize int
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path := cfg.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log, historySize: historySize(cfg.HistorySize)}

	if cfg.BusyTimeout > 0 {
		ms := cfg.BusyTimeout.Milliseconds()
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", ms))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) Variable(ctx context.Context, idx int) (string, error) {
	return s.get(ctx, "variables", idx)
}

func (s *sqliteStore) SetVariable(ctx context.Context, idx int, value string) error {
	return s.put(ctx, "variables", idx, value)
}

func (s *sqliteStore) DeviceValue(ctx context.Context, idx int) (string, error) {
	return s.get(ctx, "devices", idx)
}

func (s *sqliteStore) SetDeviceValue(ctx context.Context, idx int, value string) error {
	return s.put(ctx, "devices", idx, value)
}

// table is one of the two fixed table names above, never user input.
func (s *sqliteStore) get(ctx context.Context, table string, idx int) (string, error) {
	if s == nil || s.db == nil {
		return "", ErrDisabled
	}
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM `+table+` WHERE idx = ?`, idx).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return unsetValue, nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *sqliteStore) put(ctx context.Context, table string, idx int, value string) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+table+`(idx, value, updated_at) VALUES(?,?,?)
		 ON CONFLICT(idx) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		idx, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *sqliteStore) AppendTick(ctx context.Context, rec TickRecord) error {
	if s == nil || s.db == nil {
		return ErrDisabled
	}
	if rec.At.IsZero() {
		rec.At = time.Now()
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO ticks(at, run_id, payload) VALUES(?,?,?)`,
		rec.At.UTC().Format(time.RFC3339Nano), rec.RunID, string(b),
	); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`DELETE FROM ticks WHERE id <= (SELECT MAX(id) FROM ticks) - ?`, s.historySize)
	return err
}

func (s *sqliteStore) RecentTicks(ctx context.Context, n int) ([]TickRecord, error) {
	if s == nil || s.db == nil {
		return nil, ErrDisabled
	}
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM ticks ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TickRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var r TickRecord
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			s.log.Debug("skipping undecodable tick", logx.Err(err))
			continue
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
