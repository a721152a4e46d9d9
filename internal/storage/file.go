package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	logx "lte2mqtt/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Files:
//   - <prefix>.state.json  (variables and device values, rewritten atomically)
//   - <prefix>.ticks.jsonl (append-only JSON Lines, compacted past 2x HistorySize)
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	statePath   string
	historyPath string
	historySize int

	state       fileState
	historyRows int
}

type fileState struct {
	Variables map[string]string `json:"variables"`
	Devices   map[string]string `json:"devices"`
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	prefix := filepath.Join(dir, base)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	s := &fileStore{
		log:         log,
		statePath:   prefix + ".state.json",
		historyPath: prefix + ".ticks.jsonl",
		historySize: historySize(cfg.HistorySize),
		state:       fileState{Variables: map[string]string{}, Devices: map[string]string{}},
	}
	if err := loadState(s.statePath, &s.state); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	recs, err := readHistory(s.historyPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	s.historyRows = len(recs)
	return s, nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) Variable(ctx context.Context, idx int) (string, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	return lookup(s.state.Variables, idx), nil
}

func (s *fileStore) SetVariable(ctx context.Context, idx int, value string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Variables[strconv.Itoa(idx)] = value
	return s.writeStateLocked()
}

func (s *fileStore) DeviceValue(ctx context.Context, idx int) (string, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	return lookup(s.state.Devices, idx), nil
}

func (s *fileStore) SetDeviceValue(ctx context.Context, idx int, value string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Devices[strconv.Itoa(idx)] = value
	return s.writeStateLocked()
}

func (s *fileStore) AppendTick(ctx context.Context, rec TickRecord) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.historyPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	werr := json.NewEncoder(f).Encode(rec)
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	if cerr != nil {
		return cerr
	}
	s.historyRows++
	if s.historyRows > 2*s.historySize {
		// Best-effort compact.
		if err := s.compactLocked(); err != nil {
			s.log.Debug("history compact failed", logx.Err(err))
		}
	}
	return nil
}

func (s *fileStore) RecentTicks(ctx context.Context, n int) ([]TickRecord, error) {
	_ = ctx
	if n <= 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := readHistory(s.historyPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(recs) > n {
		recs = recs[len(recs)-n:]
	}
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs, nil
}

func (s *fileStore) writeStateLocked() error {
	tmp := s.statePath + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(s.state); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.statePath)
}

// compactLocked rewrites the history keeping the newest historySize records.
func (s *fileStore) compactLocked() error {
	recs, err := readHistory(s.historyPath)
	if err != nil {
		return err
	}
	if len(recs) > s.historySize {
		recs = recs[len(recs)-s.historySize:]
	}
	tmp := s.historyPath + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.historyPath); err != nil {
		return err
	}
	s.historyRows = len(recs)
	return nil
}

func loadState(path string, out *fileState) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	var st fileState
	if err := json.NewDecoder(f).Decode(&st); err != nil {
		return err
	}
	for k, v := range st.Variables {
		out.Variables[k] = v
	}
	for k, v := range st.Devices {
		out.Devices[k] = v
	}
	return nil
}

// readHistory returns records oldest first, skipping lines that fail to decode.
func readHistory(path string) ([]TickRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []TickRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var r TickRecord
		if err := json.Unmarshal(line, &r); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, sc.Err()
}

func lookup(m map[string]string, idx int) string {
	if v, ok := m[strconv.Itoa(idx)]; ok {
		return v
	}
	return unsetValue
}
