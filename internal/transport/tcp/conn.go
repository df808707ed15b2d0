package tcp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/vovakirdan/relaychat/internal/proto"
)

// DefaultWriteTimeout bounds a single line write to a stuck peer.
const DefaultWriteTimeout = 10 * time.Second

// LineConn frames a stream connection as newline-terminated lines.
type LineConn struct {
	conn         net.Conn
	scanner      *bufio.Scanner
	writer       *bufio.Writer
	writeMu      sync.Mutex
	writeTimeout time.Duration
	closeOnce    sync.Once
	closeErr     error
}

// NewLineConn wraps conn. Lines longer than maxLineBytes fail the read.
func NewLineConn(conn net.Conn, maxLineBytes int) *LineConn {
	if maxLineBytes <= 0 {
		maxLineBytes = bufio.MaxScanTokenSize
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, min(4096, maxLineBytes)), maxLineBytes)

	return &LineConn{
		conn:         conn,
		scanner:      scanner,
		writer:       bufio.NewWriter(conn),
		writeTimeout: DefaultWriteTimeout,
	}
}

// RemoteAddr reports the peer address.
func (c *LineConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// ReadLine returns the next line without its terminator. The context is not
// consulted; closing the connection unblocks a pending read.
func (c *LineConn) ReadLine(_ context.Context) (string, error) {
	if c.scanner.Scan() {
		return proto.TrimLine(c.scanner.Text()), nil
	}
	if err := c.scanner.Err(); err != nil {
		return "", fmt.Errorf("read line: %w", err)
	}
	return "", io.EOF
}

// WriteLine writes line plus "\n" and flushes.
func (c *LineConn) WriteLine(_ context.Context, line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}

	line = strings.ReplaceAll(line, "\n", " ")
	if _, err := c.writer.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("write line: %w", err)
	}
	if err := c.writer.Flush(); err != nil {
		return fmt.Errorf("flush line: %w", err)
	}
	return nil
}

// Close closes the connection once.
func (c *LineConn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
