package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/relaychat/internal/config"
	"github.com/vovakirdan/relaychat/internal/core"
	logpkg "github.com/vovakirdan/relaychat/internal/log"
	"github.com/vovakirdan/relaychat/internal/store"
	"github.com/vovakirdan/relaychat/internal/store/file"
	"github.com/vovakirdan/relaychat/internal/store/sqlite"
	"github.com/vovakirdan/relaychat/internal/transport/tcp"
	transporthttp "github.com/vovakirdan/relaychat/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	chat            *tcp.Server
	server          *stdhttp.Server
	ws              *transporthttp.WSHandler
	shutdownTimeout time.Duration
	hub             *core.Hub
	sink            store.MessageLog
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	logger = logpkg.OrNop(logger)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sink, err := openSink(cfg)
	if err != nil {
		return nil, fmt.Errorf("init message log: %w", err)
	}
	logger.Info().Str("backend", cfg.LogBackend).Msg("message log initialized")

	hub := core.NewHub(core.Options{
		Registry: core.NewRegistry(cfg.RejectDuplicateNames),
		Log:      sink,
		Logger:   logger,
	})

	a := &App{
		chat:            tcp.NewServer(cfg.Addr, hub, cfg.MaxLineBytes, logger),
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		sink:            sink,
		log:             logger,
	}
	if cfg.HTTPAddr != "" {
		a.ws = transporthttp.NewWSHandler(hub, cfg.MaxLineBytes, logger)
		a.server = transporthttp.NewServer(hub, a.ws, cfg, logger)
	}
	return a, nil
}

func openSink(cfg config.Config) (store.MessageLog, error) {
	switch cfg.LogBackend {
	case config.LogBackendSQLite:
		return sqlite.New(cfg.DatabasePath)
	default:
		return file.New(cfg.LogPath)
	}
}

// Hub exposes the running hub.
func (a *App) Hub() *core.Hub {
	return a.hub
}

// Run starts the chat listener and, when configured, the HTTP server. It
// blocks until context cancellation or a fatal listener error.
func (a *App) Run(ctx context.Context) error {
	defer a.cleanup()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	chatErr := make(chan error, 1)
	go func() { chatErr <- a.chat.ListenAndServe(runCtx) }()

	serverErr := make(chan error, 1)
	if a.server != nil {
		a.server.BaseContext = func(_ net.Listener) context.Context { return runCtx }
		go func() {
			a.log.Info().Str("addr", a.server.Addr).Msg("starting http server")
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
				serverErr <- err
				return
			}
			serverErr <- nil
		}()
	}

	var runErr error
	select {
	case err := <-chatErr:
		runErr = err
		chatErr = nil
	case err := <-serverErr:
		runErr = err
	case <-ctx.Done():
	}

	cancel()
	a.shutdown()

	if chatErr != nil {
		if err := <-chatErr; err != nil && runErr == nil {
			runErr = err
		}
	}
	return runErr
}

// shutdown stops the HTTP server and waits for WebSocket sessions, which
// Shutdown does not track once upgraded, so their departures reach the log.
func (a *App) shutdown() {
	if a.server == nil {
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	a.log.Info().Msg("shutting down http server")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("http shutdown")
	}
	if err := a.ws.Wait(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("websocket sessions still running")
	}
}

// cleanup closes the message log.
func (a *App) cleanup() {
	if a.sink == nil {
		return
	}
	if err := a.sink.Close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close message log")
	} else {
		a.log.Info().Msg("message log closed")
	}
}
