package lobby

import (
	"cmp"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/udisondev/partylobby/internal/lobby/serverpackets"
	"github.com/udisondev/partylobby/internal/model"
)

// ClientManager tracks logged-in clients by player ID and delivers party
// events to them. Thread-safe for concurrent access.
type ClientManager struct {
	mu      sync.RWMutex
	clients map[model.PlayerID]*Client
}

// NewClientManager creates a new client manager.
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[model.PlayerID]*Client, 1000),
	}
}

// Register binds client to id. Returns false if another client already holds id.
func (cm *ClientManager) Register(id model.PlayerID, client *Client) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, ok := cm.clients[id]; ok {
		return false
	}
	cm.clients[id] = client
	return true
}

// Unregister removes id only if it is still bound to client.
func (cm *ClientManager) Unregister(id model.PlayerID, client *Client) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.clients[id] == client {
		delete(cm.clients, id)
	}
}

// Get returns the client for id, or nil if the player is offline.
func (cm *ClientManager) Get(id model.PlayerID) *Client {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.clients[id]
}

// Online reports whether id has a logged-in client.
func (cm *ClientManager) Online(id model.PlayerID) bool {
	return cm.Get(id) != nil
}

// Count returns the number of logged-in clients.
func (cm *ClientManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.clients)
}

// ForEachClient iterates over logged-in clients. If fn returns false, iteration stops.
func (cm *ClientManager) ForEachClient(fn func(model.PlayerID, *Client) bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	for id, client := range cm.clients {
		if !fn(id, client) {
			return
		}
	}
}

// OnlinePlayer describes a logged-in client.
type OnlinePlayer struct {
	ID      model.PlayerID `json:"id"`
	Name    string         `json:"name"`
	Session string         `json:"session"`
	Remote  string         `json:"remote"`
}

// Players lists logged-in clients ordered by player ID.
func (cm *ClientManager) Players() []OnlinePlayer {
	players := make([]OnlinePlayer, 0, cm.Count())
	cm.ForEachClient(func(id model.PlayerID, c *Client) bool {
		players = append(players, OnlinePlayer{
			ID:      id,
			Name:    c.Name(),
			Session: c.SessionID().String(),
			Remote:  c.IP(),
		})
		return true
	})
	slices.SortFunc(players, func(a, b OnlinePlayer) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return players
}

// Deliver encodes ev and queues it for player to. Events for offline players
// are dropped.
func (cm *ClientManager) Deliver(to model.PlayerID, ev model.Event) {
	client := cm.Get(to)
	if client == nil {
		slog.Debug("dropping event for offline player", "playerID", to, "command", ev.Command())
		return
	}

	pkt, err := serverpackets.FromEvent(ev)
	if err != nil {
		slog.Error("encoding event", "playerID", to, "command", ev.Command(), "error", err)
		return
	}
	if err := client.SendPacket(pkt); err != nil {
		if errors.Is(err, errClientClosed) {
			slog.Debug("dropping event for closing client", "playerID", to, "command", ev.Command())
			return
		}
		slog.Warn("delivering event", "playerID", to, "command", ev.Command(), "session", client.SessionID(), "error", err)
	}
}
