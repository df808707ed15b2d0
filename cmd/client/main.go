package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/relaychat/internal/client"
	logpkg "github.com/vovakirdan/relaychat/internal/log"
)

var (
	addr     string
	name     string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:          "relaychat",
	Short:        "Join a relaychat server from the terminal",
	SilenceUsage: true,
	RunE:         runClient,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&addr, "addr", "localhost:5000", "chat server address")
	flags.StringVar(&name, "name", "", "display name (prompted when empty)")
	flags.StringVar(&logLevel, "log-level", "warn", "log level")
}

func runClient(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdin := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	username, err := promptName(stdin, out, name)
	if err != nil {
		return err
	}

	c, err := client.Dial(ctx, addr, username, logpkg.New(logLevel))
	if err != nil {
		return err
	}

	err = c.Run(ctx, stdin, out)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, client.ErrDisconnected):
		fmt.Fprintln(out, "Connection closed by server")
		return nil
	default:
		return err
	}
}

// promptName asks until a non-empty name is entered.
func promptName(in *bufio.Reader, out io.Writer, preset string) (string, error) {
	if preset != "" {
		return preset, nil
	}

	fmt.Fprintln(out, "Enter your username:")
	for {
		line, err := in.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			return line, nil
		}
		if err != nil {
			return "", fmt.Errorf("read username: %w", err)
		}
		fmt.Fprintln(out, "Username cannot be empty! Enter your username:")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
