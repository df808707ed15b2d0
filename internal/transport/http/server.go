package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/relaychat/internal/config"
	"github.com/vovakirdan/relaychat/internal/core"
	logpkg "github.com/vovakirdan/relaychat/internal/log"
)

// NewServer builds the HTTP server: health and presence endpoints on gin plus
// a WebSocket entry point speaking the same line protocol as the TCP listener.
// /ws sits on the plain mux because gin's writer refuses the upgrade hijack.
// A nil ws gets a handler of its own.
func NewServer(hub *core.Hub, ws *WSHandler, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	logger = logpkg.OrNop(logger)
	if ws == nil {
		ws = NewWSHandler(hub, cfg.MaxLineBytes, logger)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	status := NewStatusHandlers(hub, logger)
	router.GET("/health", status.Health)
	router.GET("/api/online", status.Online)

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", ws)
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
