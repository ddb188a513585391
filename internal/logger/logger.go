package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLogDir is where session log files are created
const DefaultLogDir = "logs"

// Options configures the process logger
type Options struct {
	Level  string    // trace, debug, info, warn, error; defaults to info
	Format string    // console or json; defaults to console
	File   string    // optional log file, always written as JSON
	Out    io.Writer // defaults to stderr
}

// Logger wraps a zerolog.Logger together with the log file it owns
type Logger struct {
	zerolog.Logger

	mu      sync.Mutex
	logFile *os.File
}

// New builds a logger writing to Out and, when File is set, also to that file
func New(opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	var primary io.Writer = out
	switch strings.ToLower(opts.Format) {
	case "", "console":
		primary = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	case "json":
	default:
		return nil, fmt.Errorf("unknown log format %q, expected console or json", opts.Format)
	}

	l := &Logger{}
	writer := primary

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.logFile = file
		writer = zerolog.MultiLevelWriter(primary, file)
	}

	l.Logger = zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return l, nil
}

// ParseLevel maps a level name to a zerolog level; empty means info
func ParseLevel(s string) (zerolog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q: %w", s, err)
	}
	return level, nil
}

// SessionFileName returns logs/wfo_<lab>_<date>.log for a run started at at
func SessionFileName(labID string, at time.Time) string {
	lab := strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(strings.TrimSpace(labID))
	if lab == "" {
		lab = "session"
	}
	return filepath.Join(DefaultLogDir, fmt.Sprintf("wfo_%s_%s.log", lab, at.Format("2006-01-02")))
}

// Close closes the log file if one is open
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile == nil {
		return nil
	}
	err := l.logFile.Close()
	l.logFile = nil
	return err
}

// GetLogPath returns the path of the log file, or "" when logging only to the console
func (l *Logger) GetLogPath() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile == nil {
		return ""
	}
	return l.logFile.Name()
}
