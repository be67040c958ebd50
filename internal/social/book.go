// Package social caches per-player block lists and answers party invite
// eligibility for the party coordinator.
package social

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/udisondev/partylobby/internal/model"
)

// ErrBlockSelf is returned when a player tries to block themselves.
var ErrBlockSelf = errors.New("You cannot block yourself.")

// BlockStore persists block relations.
type BlockStore interface {
	LoadBlocked(ctx context.Context, playerID model.PlayerID) ([]model.PlayerID, error)
	InsertBlock(ctx context.Context, playerID, blockedID model.PlayerID) error
	DeleteBlock(ctx context.Context, playerID, blockedID model.PlayerID) error
}

// Book holds block lists of online players.
// A nil store keeps block lists in memory only.
type Book struct {
	mu    sync.RWMutex
	lists map[model.PlayerID]*model.BlockList
	store BlockStore
}

// NewBook creates a Book backed by store.
func NewBook(store BlockStore) *Book {
	return &Book{
		lists: make(map[model.PlayerID]*model.BlockList),
		store: store,
	}
}

// Load reads the block list of a player who just logged in.
func (b *Book) Load(ctx context.Context, player model.PlayerID) error {
	var ids []model.PlayerID
	if b.store != nil {
		var err error
		ids, err = b.store.LoadBlocked(ctx, player)
		if err != nil {
			return fmt.Errorf("loading block list of %d: %w", player, err)
		}
	}

	b.mu.Lock()
	b.lists[player] = model.NewBlockList(ids...)
	b.mu.Unlock()

	slog.Debug("block list loaded", "playerID", player, "count", len(ids))
	return nil
}

// Forget drops the cached block list of a disconnected player.
func (b *Book) Forget(player model.PlayerID) {
	b.mu.Lock()
	delete(b.lists, player)
	b.mu.Unlock()
}

// Block adds target to owner's block list and persists it.
func (b *Book) Block(ctx context.Context, owner, target model.PlayerID) error {
	if owner == target {
		return ErrBlockSelf
	}
	if b.store != nil {
		if err := b.store.InsertBlock(ctx, owner, target); err != nil {
			return fmt.Errorf("blocking %d for %d: %w", target, owner, err)
		}
	}
	b.list(owner).Add(target)
	return nil
}

// Unblock removes target from owner's block list and persists it.
func (b *Book) Unblock(ctx context.Context, owner, target model.PlayerID) error {
	if b.store != nil {
		if err := b.store.DeleteBlock(ctx, owner, target); err != nil {
			return fmt.Errorf("unblocking %d for %d: %w", target, owner, err)
		}
	}
	b.list(owner).Remove(target)
	return nil
}

// IsBlocked reports whether owner refuses invites from target.
// Players whose list is not loaded block nobody.
func (b *Book) IsBlocked(owner, target model.PlayerID) bool {
	b.mu.RLock()
	list, ok := b.lists[owner]
	b.mu.RUnlock()

	return ok && list.Has(target)
}

// Blocked returns the sorted block list of owner.
func (b *Book) Blocked(owner model.PlayerID) []model.PlayerID {
	b.mu.RLock()
	list, ok := b.lists[owner]
	b.mu.RUnlock()

	if !ok {
		return nil
	}
	return list.IDs()
}

func (b *Book) list(owner model.PlayerID) *model.BlockList {
	b.mu.Lock()
	defer b.mu.Unlock()

	list, ok := b.lists[owner]
	if !ok {
		list = model.NewBlockList()
		b.lists[owner] = list
	}
	return list
}
