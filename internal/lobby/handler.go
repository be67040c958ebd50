package lobby

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/partylobby/internal/game/party"
	"github.com/udisondev/partylobby/internal/lobby/clientpackets"
	"github.com/udisondev/partylobby/internal/lobby/serverpackets"
	"github.com/udisondev/partylobby/internal/model"
	"github.com/udisondev/partylobby/internal/social"
)

// PlayerStore records logins. Implemented by db.PlayerRepository.
type PlayerStore interface {
	Touch(ctx context.Context, id model.PlayerID, name string) error
}

// Handler processes lobby client packets.
type Handler struct {
	parties *party.Coordinator
	book    *social.Book
	players PlayerStore
	clients *ClientManager
}

// NewHandler creates a new packet handler. players may be nil.
func NewHandler(parties *party.Coordinator, book *social.Book, players PlayerStore, clients *ClientManager) *Handler {
	return &Handler{
		parties: parties,
		book:    book,
		players: players,
		clients: clients,
	}
}

// HandlePacket dispatches a decrypted packet to the appropriate handler.
// Returns false when the connection must be closed.
func (h *Handler) HandlePacket(ctx context.Context, client *Client, data []byte) (bool, error) {
	if len(data) == 0 {
		return false, fmt.Errorf("empty packet data")
	}

	opcode := data[0]
	body := data[1:]
	state := client.State()

	switch state {
	case ClientStateConnected:
		if opcode != clientpackets.OpcodeRequestLogin {
			slog.Warn("invalid opcode for state CONNECTED",
				"opcode", fmt.Sprintf("0x%02X", opcode),
				"session", client.SessionID())
			return false, nil
		}
		return h.handleRequestLogin(ctx, client, body)

	case ClientStateAuthenticated:
		switch opcode {
		case clientpackets.OpcodeInviteToParty:
			return h.handleInviteToParty(client, body)
		case clientpackets.OpcodeAcceptPartyInvite:
			return h.handleAcceptPartyInvite(client, body)
		case clientpackets.OpcodeKickPlayerFromParty:
			return h.handleKickPlayerFromParty(client, body)
		case clientpackets.OpcodeLeaveParty:
			return h.handleLeaveParty(client)
		case clientpackets.OpcodeReadyParty:
			return h.handleReadyParty(client, true)
		case clientpackets.OpcodeUnreadyParty:
			return h.handleReadyParty(client, false)
		case clientpackets.OpcodeSetPartyFactions:
			return h.handleSetPartyFactions(client, body)
		case clientpackets.OpcodeBlockPlayer:
			return h.handleBlockPlayer(ctx, client, body, true)
		case clientpackets.OpcodeUnblockPlayer:
			return h.handleBlockPlayer(ctx, client, body, false)
		default:
			slog.Warn("unknown packet opcode",
				"opcode", fmt.Sprintf("0x%02X", opcode),
				"state", state,
				"session", client.SessionID())
			return true, nil
		}

	default:
		return false, fmt.Errorf("invalid state: %v", state)
	}
}

// handleRequestLogin binds the connection to a player identity, loads their
// block list and registers them for event delivery.
func (h *Handler) handleRequestLogin(ctx context.Context, client *Client, data []byte) (bool, error) {
	pkt, err := clientpackets.ParseRequestLogin(data)
	if err != nil {
		return false, fmt.Errorf("parsing RequestLogin: %w", err)
	}

	if h.clients.Online(pkt.PlayerID) {
		slog.Warn("duplicate login", "playerID", pkt.PlayerID, "session", client.SessionID())
		h.notify(client, ErrAlreadyOnline)
		return false, nil
	}

	if h.players != nil {
		if err := h.players.Touch(ctx, pkt.PlayerID, pkt.Name); err != nil {
			return false, fmt.Errorf("recording login: %w", err)
		}
	}
	if err := h.book.Load(ctx, pkt.PlayerID); err != nil {
		return false, fmt.Errorf("loading relations: %w", err)
	}

	if !h.clients.Register(pkt.PlayerID, client) {
		h.notify(client, ErrAlreadyOnline)
		return false, nil
	}
	client.bind(pkt.PlayerID, pkt.Name)

	slog.Info("player logged in",
		"playerID", pkt.PlayerID,
		"name", pkt.Name,
		"session", client.SessionID(),
		"remote", client.IP())

	if err := client.SendPacketSync(&serverpackets.LoginOk{PlayerID: pkt.PlayerID}); err != nil {
		return false, fmt.Errorf("sending LoginOk: %w", err)
	}
	return true, nil
}

// handleBlockPlayer processes block_player and unblock_player.
func (h *Handler) handleBlockPlayer(ctx context.Context, client *Client, data []byte, block bool) (bool, error) {
	pkt, err := clientpackets.ParseTargetRequest(data)
	if err != nil {
		return false, fmt.Errorf("parsing block request: %w", err)
	}

	player := client.PlayerID()
	if block {
		err = h.book.Block(ctx, player, pkt.Target)
	} else {
		err = h.book.Unblock(ctx, player, pkt.Target)
	}

	switch {
	case err == nil:
		slog.Debug("block list updated", "playerID", player, "target", pkt.Target, "blocked", block)
	case errors.Is(err, social.ErrBlockSelf):
		h.notify(client, err)
	default:
		slog.Error("updating block list", "playerID", player, "target", pkt.Target, "error", err)
		h.notify(client, ErrBlockListFailed)
	}
	return true, nil
}

// notify sends err to the client as an error notice. Nil errors are ignored.
func (h *Handler) notify(client *Client, err error) {
	if err == nil {
		return
	}
	notice := model.NewErrorNotice(err)
	if sendErr := client.SendPacket(&serverpackets.Notice{Style: notice.Style, Text: notice.Text}); sendErr != nil {
		slog.Warn("sending notice", "session", client.SessionID(), "error", sendErr)
	}
}
