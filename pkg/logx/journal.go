package logx

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
	"github.com/rs/zerolog"
)

// journalWriter forwards zerolog JSON lines to journald as structured entries.
type journalWriter struct {
	identifier string
	send       func(msg string, pri journal.Priority, vars map[string]string) error
}

// newJournalWriter returns nil when journald is not reachable.
func newJournalWriter(identifier string) *journalWriter {
	if !journal.Enabled() {
		fmt.Fprintln(os.Stderr, "logx: journal logging enabled but journald socket is not available")
		return nil
	}
	if strings.TrimSpace(identifier) == "" {
		identifier = "lte2mqtt"
	}
	return &journalWriter{identifier: identifier, send: journal.Send}
}

func (w *journalWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.InfoLevel, p)
}

func (w *journalWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	msg, vars := journalEntry(p)
	vars["SYSLOG_IDENTIFIER"] = w.identifier
	if err := w.send(msg, journalPriority(level), vars); err != nil {
		return 0, err
	}
	return len(p), nil
}

// journalEntry splits a zerolog JSON line into MESSAGE and upper-cased journal fields.
func journalEntry(p []byte) (string, map[string]string) {
	vars := map[string]string{}
	var m map[string]any
	if err := json.Unmarshal(p, &m); err != nil {
		return strings.TrimSpace(string(p)), vars
	}
	msg, _ := m[zerolog.MessageFieldName].(string)
	for k, v := range m {
		switch k {
		case zerolog.MessageFieldName, zerolog.TimestampFieldName, zerolog.LevelFieldName:
			continue
		}
		vars[journalKey(k)] = fmt.Sprint(v)
	}
	return msg, vars
}

func journalKey(k string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(k) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	s := strings.TrimLeft(b.String(), "_")
	if s == "" {
		return "FIELD"
	}
	return s
}

func journalPriority(level zerolog.Level) journal.Priority {
	switch level {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		return journal.PriDebug
	case zerolog.WarnLevel:
		return journal.PriWarning
	case zerolog.ErrorLevel:
		return journal.PriErr
	case zerolog.FatalLevel:
		return journal.PriCrit
	case zerolog.PanicLevel:
		return journal.PriEmerg
	default:
		return journal.PriInfo
	}
}
