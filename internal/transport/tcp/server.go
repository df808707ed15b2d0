package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/relaychat/internal/core"
	logpkg "github.com/vovakirdan/relaychat/internal/log"
)

// Server accepts stream connections and runs one hub session per connection.
type Server struct {
	addr         string
	hub          *core.Hub
	maxLineBytes int
	log          *zerolog.Logger

	wg sync.WaitGroup
}

// NewServer builds a server listening on addr.
func NewServer(addr string, hub *core.Hub, maxLineBytes int, logger *zerolog.Logger) *Server {
	return &Server{
		addr:         addr,
		hub:          hub,
		maxLineBytes: maxLineBytes,
		log:          logpkg.OrNop(logger),
	}
}

// ListenAndServe listens on the configured address and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is done, then closes every live
// connection and waits for their sessions to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.Info().Str("addr", ln.Addr().String()).Msg("accepting chat connections")

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	var acceptErr error
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
				acceptErr = fmt.Errorf("accept: %w", err)
			}
			break
		}

		s.log.Info().Str("remote_addr", conn.RemoteAddr().String()).Msg("A new user has joined!")

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(ctx, conn)
		}()
	}

	_ = ln.Close()
	s.wg.Wait()
	return acceptErr
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	lc := NewLineConn(conn, s.maxLineBytes)
	stop := context.AfterFunc(ctx, func() { _ = lc.Close() })
	defer stop()

	err := s.hub.Serve(ctx, lc)
	switch {
	case err == nil, ctx.Err() != nil:
		s.log.Debug().Err(err).Str("remote_addr", lc.RemoteAddr()).Msg("connection finished")
	case errors.Is(err, net.ErrClosed):
		s.log.Debug().Str("remote_addr", lc.RemoteAddr()).Msg("connection closed by server")
	default:
		s.log.Info().Err(err).Str("code", core.ErrorCode(err)).Str("remote_addr", lc.RemoteAddr()).Msg("connection ended")
	}
}
