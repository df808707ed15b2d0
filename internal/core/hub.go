package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	logpkg "github.com/vovakirdan/relaychat/internal/log"
	"github.com/vovakirdan/relaychat/internal/store"
)

// Options configures a Hub.
type Options struct {
	// Registry is shared by every session. A nil Registry tolerates duplicate names.
	Registry *Registry
	// Log receives every relayed line. Nil disables persistence.
	Log store.MessageLog
	// Logger defaults to a disabled logger.
	Logger *zerolog.Logger
	// Now stamps relayed lines. Defaults to time.Now.
	Now func() time.Time
}

// Hub ties the registry, broadcaster and search engine together and runs
// one session per connected client.
type Hub struct {
	registry    *Registry
	broadcaster *Broadcaster
	search      *SearchEngine
	log         *zerolog.Logger
}

// NewHub creates a new chat hub instance.
func NewHub(opts Options) *Hub {
	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry(false)
	}
	logger := logpkg.OrNop(opts.Logger)

	return &Hub{
		registry:    registry,
		broadcaster: NewBroadcaster(registry, opts.Log, opts.Now, logger),
		search:      NewSearchEngine(registry),
		log:         logger,
	}
}

// Registry exposes the live session set.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Broadcast relays raw from sender to every other identity. See Broadcaster.Broadcast.
func (h *Hub) Broadcast(ctx context.Context, sender *Record, raw string) string {
	return h.broadcaster.Broadcast(ctx, sender, raw)
}

// Search returns the history lines matching keyword.
func (h *Hub) Search(keyword string) []string {
	return h.search.Search(keyword)
}

// searchFor answers a search command on the requester's channel only.
func (h *Hub) searchFor(ctx context.Context, requester *Record, keyword string) error {
	results := h.search.Search(keyword)
	h.log.Debug().
		Str("session_id", requester.ID).
		Str("keyword", keyword).
		Int("results", len(results)).
		Msg("search")
	return requester.SendAll(ctx, results)
}
