package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/relaychat/internal/app"
	"github.com/vovakirdan/relaychat/internal/config"
	logpkg "github.com/vovakirdan/relaychat/internal/log"
)

var (
	configFile string
	flagCfg    config.Config
)

var rootCmd = &cobra.Command{
	Use:          "relaychat-server",
	Short:        "Run the relaychat line relay",
	Long:         "Accept line-oriented chat clients over TCP (and WebSocket), relay their messages and answer history searches.",
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configFile, "config", "", "path to config file (default ./config.yaml)")
	flags.StringVar(&flagCfg.Addr, "addr", "", "chat listen address")
	flags.StringVar(&flagCfg.HTTPAddr, "http-addr", "", "HTTP status and WebSocket listen address")
	flags.StringVar(&flagCfg.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&flagCfg.LogBackend, "log-backend", "", "message log backend (file or sqlite)")
	flags.BoolVar(&flagCfg.RejectDuplicateNames, "reject-duplicate-names", false, "refuse clients whose name is already connected")
}

func runServer(cmd *cobra.Command, _ []string) error {
	bootLog := logpkg.New("info")

	cfg, path, err := config.Load(bootLog, configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.UpdateFrom(flagCfg)
	if cmd.Flags().Changed("reject-duplicate-names") {
		cfg.RejectDuplicateNames = flagCfg.RejectDuplicateNames
	}

	logger := logpkg.New(cfg.LogLevel)
	logger.Info().Str("config", path).Str("addr", cfg.Addr).Str("http_addr", cfg.HTTPAddr).Msg("starting relaychat server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}

	logger.Info().Msg("server stopped")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
