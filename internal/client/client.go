// Package client implements the interactive line client: it sends the user's
// name, formats typed text into chat lines and prints whatever the server relays.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/rs/zerolog"

	logpkg "github.com/vovakirdan/relaychat/internal/log"
	"github.com/vovakirdan/relaychat/internal/proto"
	"github.com/vovakirdan/relaychat/internal/transport/tcp"
)

var (
	// ErrEmptyName is returned when a client is built without a name.
	ErrEmptyName = errors.New("name cannot be empty")
	// ErrDisconnected is returned by Run when the server ends the connection.
	ErrDisconnected = errors.New("disconnected from server")
)

// Banner is printed once the connection is up.
var Banner = []string{
	"This chat will be recorded in ChatHistory.txt",
	"To search for message, type " + proto.SearchPrefix + "(keywords)",
	"",
}

// Client is one connected chat participant.
type Client struct {
	name string
	conn *tcp.LineConn
	sent int
	log  *zerolog.Logger
}

// Dial connects to the relay at addr.
func Dial(ctx context.Context, addr, name string, logger *zerolog.Logger) (*Client, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return New(conn, name, logger)
}

// New wraps an established connection.
func New(conn net.Conn, name string, logger *zerolog.Logger) (*Client, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Client{
		name: name,
		conn: tcp.NewLineConn(conn, 0),
		log:  logpkg.OrNop(logger),
	}, nil
}

// Outbound turns typed text into the line sent to the server. Empty input
// yields false. Search commands pass through unchanged and do not count as
// sent messages.
func (c *Client) Outbound(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	if strings.HasPrefix(text, proto.SearchPrefix) {
		return text, true
	}
	c.sent++
	return proto.ChatLine(c.name, text, c.sent), true
}

// Sent reports how many chat lines were sent.
func (c *Client) Sent() int {
	return c.sent
}

// Run sends the name, prints the banner and then relays lines both ways until
// in is exhausted, the server disconnects or ctx is done.
func (c *Client) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	defer c.conn.Close()

	if err := c.conn.WriteLine(ctx, c.name); err != nil {
		return fmt.Errorf("send name: %w", err)
	}
	for _, line := range Banner {
		fmt.Fprintln(out, line)
	}

	received := make(chan error, 1)
	go func() { received <- c.receive(ctx, out) }()

	typed := make(chan error, 1)
	go func() { typed <- c.send(ctx, in) }()

	select {
	case err := <-received:
		return err
	case err := <-typed:
		_ = c.conn.Close()
		<-received
		return err
	case <-ctx.Done():
		_ = c.conn.Close()
		<-received
		return ctx.Err()
	}
}

func (c *Client) receive(ctx context.Context, out io.Writer) error {
	for {
		line, err := c.conn.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ErrDisconnected
			}
			c.log.Debug().Err(err).Msg("receive stopped")
			return fmt.Errorf("%w: %w", ErrDisconnected, err)
		}
		fmt.Fprintln(out, line)
	}
}

func (c *Client) send(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line, ok := c.Outbound(proto.TrimLine(scanner.Text()))
		if !ok {
			continue
		}
		if err := c.conn.WriteLine(ctx, line); err != nil {
			return fmt.Errorf("send: %w", err)
		}
	}
	return scanner.Err()
}
