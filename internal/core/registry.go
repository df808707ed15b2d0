package core

import (
	"fmt"
	"sync"
)

// Registry is the set of live session records, kept in admission order.
// Membership changes and snapshots are mutually exclusive under one mutex.
type Registry struct {
	mu               sync.Mutex
	records          []*Record
	index            map[*Record]struct{}
	rejectDuplicates bool
}

// NewRegistry builds an empty registry. With rejectDuplicates, Register refuses
// a second record carrying an identity that is already registered.
func NewRegistry(rejectDuplicates bool) *Registry {
	return &Registry{
		index:            make(map[*Record]struct{}),
		rejectDuplicates: rejectDuplicates,
	}
}

// RejectsDuplicates reports whether identity collisions are refused.
func (g *Registry) RejectsDuplicates() bool {
	return g.rejectDuplicates
}

// Register inserts record. Registering the same record twice is a no-op.
func (g *Registry) Register(record *Record) error {
	if record == nil || record.channel == nil {
		return fmt.Errorf("%w: record has no channel", ErrRegistration)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.index[record]; exists {
		return nil
	}
	if g.rejectDuplicates && g.countLocked(record.Identity) > 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateIdentity, record.Identity)
	}

	g.records = append(g.records, record)
	g.index[record] = struct{}{}
	return nil
}

// Remove deletes record and reports whether it was present.
func (g *Registry) Remove(record *Record) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.index[record]; !exists {
		return false
	}
	delete(g.index, record)
	for i, r := range g.records {
		if r == record {
			g.records = append(g.records[:i], g.records[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports whether record is registered.
func (g *Registry) Contains(record *Record) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, exists := g.index[record]
	return exists
}

// CountWithIdentity counts registered records named name.
func (g *Registry) CountWithIdentity(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.countLocked(name)
}

func (g *Registry) countLocked(name string) int {
	n := 0
	for _, r := range g.records {
		if r.Identity == name {
			n++
		}
	}
	return n
}

// WithIdentity returns the registered records named name, in admission order.
func (g *Registry) WithIdentity(name string) []*Record {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []*Record
	for _, r := range g.records {
		if r.Identity == name {
			out = append(out, r)
		}
	}
	return out
}

// Snapshot copies the current membership.
func (g *Registry) Snapshot() []*Record {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]*Record, len(g.records))
	copy(out, g.records)
	return out
}

// ForEach calls visit for every record of a snapshot taken under the lock.
// The lock is released before visiting, so visit may call Remove or Register
// without affecting the iteration in progress.
func (g *Registry) ForEach(visit func(*Record)) {
	for _, r := range g.Snapshot() {
		visit(r)
	}
}

// Len is the number of live records.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.records)
}
