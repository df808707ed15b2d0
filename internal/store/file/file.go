package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vovakirdan/relaychat/internal/store"
)

// Log appends lines to a plain text file.
type Log struct {
	mu     sync.Mutex
	f      *os.File
	path   string
	closed bool
}

// New opens (or creates) path for appending.
func New(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &Log{f: f, path: path}, nil
}

// Path returns the file the log writes to.
func (l *Log) Path() string {
	return l.path
}

// Append writes line followed by a newline and syncs the file.
// Embedded newlines are flattened so one call is always one line.
func (l *Log) Append(_ context.Context, line string) error {
	line = strings.ReplaceAll(line, "\n", " ")

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return store.ErrClosed
	}
	if _, err := l.f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write log line: %w", err)
	}
	if err := l.f.Sync(); err != nil {
		return fmt.Errorf("sync log file: %w", err)
	}
	return nil
}

// Close closes the file. Further appends fail with store.ErrClosed.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.f.Close()
}
