package lobby

import (
	"log/slog"

	"github.com/udisondev/partylobby/internal/game/party"
	"github.com/udisondev/partylobby/internal/social"
)

// OnDisconnection releases everything a logged-in client held: its delivery
// registration, party membership, pending invites and cached block list.
// The client stays registered until its party state and block list are gone,
// so a reconnect of the same player cannot interleave with this cleanup.
func OnDisconnection(client *Client, clients *ClientManager, parties *party.Coordinator, book *social.Book) {
	player := client.PlayerID()
	if player == 0 {
		return
	}

	parties.OnDisconnect(player)
	book.Forget(player)
	clients.Unregister(player, client)

	slog.Info("player disconnected",
		"playerID", player,
		"name", client.Name(),
		"session", client.SessionID())
}
