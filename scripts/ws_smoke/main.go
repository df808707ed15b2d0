package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/vovakirdan/relaychat/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "tester", "name sent as the first line")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(line string) error {
		if err := conn.Write(ctx, websocket.MessageText, []byte(line)); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		return nil
	}
	read := func() (string, error) {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return "", fmt.Errorf("read: %w", err)
		}
		return string(data), nil
	}

	if err := send(*user); err != nil {
		return err
	}
	welcome, err := read()
	if err != nil {
		return err
	}
	fmt.Printf("Received: %s\n", welcome)

	if err := send(proto.ChatLine(*user, *text, 1)); err != nil {
		return err
	}
	// The sender's own line lands in its history, so searching for it must
	// come back on this connection.
	if err := send(proto.SearchPrefix + "(" + *text + ")"); err != nil {
		return err
	}

	for {
		line, err := read()
		if err != nil {
			return err
		}
		fmt.Printf("Received: %s\n", line)

		switch {
		case line == proto.NotFound:
			return fmt.Errorf("search did not find %q", *text)
		case strings.HasPrefix(line, *user+" : "+*text):
			return nil
		default:
			// join/leave announcements from other clients
		}
	}
}
