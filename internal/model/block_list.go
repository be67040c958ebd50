package model

import (
	"slices"
	"sync"
)

// BlockList is the set of players one player refuses party invites from.
// Thread-safe.
type BlockList struct {
	mu      sync.RWMutex
	blocked map[PlayerID]struct{}
}

// NewBlockList creates a block list pre-filled with ids (for DB load).
func NewBlockList(ids ...PlayerID) *BlockList {
	b := &BlockList{blocked: make(map[PlayerID]struct{}, len(ids))}
	for _, id := range ids {
		b.blocked[id] = struct{}{}
	}
	return b
}

// Add puts target on the block list. Reports whether it was newly added.
func (b *BlockList) Add(target PlayerID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.blocked[target]; ok {
		return false
	}
	b.blocked[target] = struct{}{}
	return true
}

// Remove takes target off the block list. Reports whether it was present.
func (b *BlockList) Remove(target PlayerID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.blocked[target]; !ok {
		return false
	}
	delete(b.blocked, target)
	return true
}

// Has returns true if target is on the block list.
func (b *BlockList) Has(target PlayerID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.blocked[target]
	return ok
}

// Len returns the number of blocked players.
func (b *BlockList) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.blocked)
}

// IDs returns a sorted copy of all blocked IDs.
func (b *BlockList) IDs() []PlayerID {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.blocked) == 0 {
		return nil
	}
	result := make([]PlayerID, 0, len(b.blocked))
	for id := range b.blocked {
		result = append(result, id)
	}
	slices.Sort(result)
	return result
}
