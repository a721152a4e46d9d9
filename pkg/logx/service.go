package logx

import (
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultLogPath    = "./lte2mqtt.log"
	defaultMaxSizeMB  = 10
	defaultMaxBackups = 3
	defaultMaxAgeDays = 30
)

// Service owns the configured sinks so they can be flushed on exit.
type Service struct {
	mu   sync.Mutex
	file *lumberjack.Logger
	root Logger
}

// New builds the sinks described by cfg and returns both the Service and a root Logger.
func New(cfg Config) (*Service, Logger) {
	setGlobals()

	s := &Service{}
	lvl := parseLevel(cfg.Level, zerolog.InfoLevel)

	writers := make([]io.Writer, 0, 3)
	if cfg.Console {
		writers = append(writers, newConsoleWriter(Stderr()))
	}
	if cfg.File.Enabled {
		s.file = newFileWriter(cfg.File)
		writers = append(writers, s.file)
	}
	if cfg.Journal.Enabled {
		if jw := newJournalWriter(cfg.Journal.Identifier); jw != nil {
			writers = append(writers, jw)
		}
	}
	if len(writers) == 0 {
		writers = append(writers, newConsoleWriter(Stderr()))
	}

	mw := zerolog.MultiLevelWriter(writers...)
	s.root = FromZerolog(zerolog.New(mw).Level(lvl).With().Timestamp().Logger())
	return s, s.root
}

func (s *Service) Logger() Logger { return s.root }

func (s *Service) Close() error {
	s.mu.Lock()
	f := s.file
	s.file = nil
	s.mu.Unlock()

	if f != nil {
		return f.Close()
	}
	return nil
}

func newFileWriter(fc FileConfig) *lumberjack.Logger {
	path := strings.TrimSpace(fc.Path)
	if path == "" {
		path = defaultLogPath
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    orDefault(fc.MaxSizeMB, defaultMaxSizeMB),
		MaxBackups: orDefault(fc.MaxBackups, defaultMaxBackups),
		MaxAge:     orDefault(fc.MaxAgeDays, defaultMaxAgeDays),
		Compress:   fc.Compress,
	}
}

func newConsoleWriter(w io.Writer) io.Writer {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat}
	// Keep caller short and stable.
	cw.FormatCaller = func(i interface{}) string {
		s, _ := i.(string)
		return s
	}
	return cw
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
