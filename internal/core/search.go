package core

import (
	"strings"

	"github.com/vovakirdan/relaychat/internal/proto"
)

// SearchEngine looks up keywords in the in-memory history of live records.
// The durable message log is never consulted.
type SearchEngine struct {
	registry *Registry
}

// NewSearchEngine builds a search engine over registry.
func NewSearchEngine(registry *Registry) *SearchEngine {
	return &SearchEngine{registry: registry}
}

// Search returns every history line whose header contains keyword, in
// registry order then history order. With no match the result is the single
// proto.NotFound line.
func (s *SearchEngine) Search(keyword string) []string {
	var matches []string
	s.registry.ForEach(func(r *Record) {
		matches = r.matchHistory(matches, keyword)
	})

	if len(matches) == 0 {
		return []string{proto.NotFound}
	}
	return matches
}

func headerContains(line, keyword string) bool {
	header, ok := proto.Header(line)
	return ok && strings.Contains(header, keyword)
}
