// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Options selects the level and optional rotated log file.
type Options struct {
	Level      string // debug, info, warn, error
	File       string // empty disables file output
	MaxSizeMB  int
	MaxBackups int
}

// Setup builds a text logger writing to stderr and, if configured, to a
// size-rotated file. The returned closer releases the file.
func Setup(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		rw := NewRotatingWriter(opts.File, int64(opts.MaxSizeMB)*1024*1024, opts.MaxBackups)
		out = io.MultiWriter(os.Stderr, rw)
		closer = rw
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	return logger, closer, nil
}

// ParseLevel maps a config string to a slog level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// RotatingWriter appends to a file and rotates it once it grows past maxSize,
// keeping maxBackups numbered copies (file.1 is the newest).
type RotatingWriter struct {
	filename   string
	maxSize    int64
	maxBackups int

	mu   sync.Mutex
	file *os.File
}

func NewRotatingWriter(filename string, maxSize int64, maxBackups int) *RotatingWriter {
	if maxSize <= 0 {
		maxSize = 10 * 1024 * 1024
	}
	return &RotatingWriter{
		filename:   filename,
		maxSize:    maxSize,
		maxBackups: maxBackups,
	}
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		if err := w.open(); err != nil {
			return os.Stderr.Write(p)
		}
	}

	if info, err := w.file.Stat(); err == nil && info.Size()+int64(len(p)) > w.maxSize && info.Size() > 0 {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}
	return w.file.Write(p)
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.close()
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	w.file = f
	return nil
}

func (w *RotatingWriter) close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *RotatingWriter) rotate() error {
	if err := w.close(); err != nil {
		return err
	}

	for i := w.maxBackups - 1; i >= 1; i-- {
		os.Rename(fmt.Sprintf("%s.%d", w.filename, i), fmt.Sprintf("%s.%d", w.filename, i+1))
	}
	if w.maxBackups > 0 {
		os.Rename(w.filename, w.filename+".1")
	} else {
		os.Remove(w.filename)
	}
	return w.open()
}
