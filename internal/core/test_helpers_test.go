package core

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var errBrokenPipe = errors.New("broken pipe")

// fakeChannel is an in-memory LineChannel. Tests push client lines into in
// and read server lines from out.
type fakeChannel struct {
	in         chan string
	out        chan string
	closed     chan struct{}
	closeOnce  sync.Once
	failWrites atomic.Bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		in:     make(chan string, 16),
		out:    make(chan string, 128),
		closed: make(chan struct{}),
	}
}

func (f *fakeChannel) ReadLine(ctx context.Context) (string, error) {
	select {
	case line, ok := <-f.in:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	case <-f.closed:
		return "", io.ErrClosedPipe
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (f *fakeChannel) WriteLine(_ context.Context, line string) error {
	if f.failWrites.Load() {
		return errBrokenPipe
	}
	select {
	case <-f.closed:
		return io.ErrClosedPipe
	default:
	}
	select {
	case f.out <- line:
		return nil
	case <-f.closed:
		return io.ErrClosedPipe
	}
}

func (f *fakeChannel) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeChannel) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// fixedClock returns a clock pinned to 2024-05-06 07:08:09 local time.
func fixedClock() func() time.Time {
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)
	return func() time.Time { return at }
}

const stamp = " 2024-05-06 07:08:09"

// memLog is an in-memory MessageLog.
type memLog struct {
	mu    sync.Mutex
	lines []string
	err   error
	// onAppend runs before each append, outside the lock.
	onAppend func()
}

func (m *memLog) Append(_ context.Context, line string) error {
	if m.onAppend != nil {
		m.onAppend()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.lines = append(m.lines, line)
	return nil
}

func (m *memLog) Close() error { return nil }

func (m *memLog) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.lines))
	copy(out, m.lines)
	return out
}

func mustLine(t *testing.T, ch <-chan string, want string) {
	t.Helper()

	select {
	case got := <-ch:
		if got != want {
			t.Fatalf("expected line %q, got %q", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected line %q not received", want)
	}
}

// mustLineContaining skips lines until one contains substr.
func mustLineContaining(t *testing.T, ch <-chan string, substr string) string {
	t.Helper()

	deadline := time.After(2 * time.Second)
	last := ""
	for {
		select {
		case got := <-ch:
			last = got
			if strings.Contains(got, substr) {
				return got
			}
		case <-deadline:
			t.Fatalf("no line containing %q received; last line: %q", substr, last)
			return ""
		}
	}
}

func expectNoLine(t *testing.T, ch <-chan string) {
	t.Helper()

	select {
	case got := <-ch:
		t.Fatalf("expected no line, got %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// countLines reports how many logged lines equal line.
func (m *memLog) countLines(line string) int {
	n := 0
	for _, l := range m.Lines() {
		if l == line {
			n++
		}
	}
	return n
}
