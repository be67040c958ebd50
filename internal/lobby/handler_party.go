package lobby

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/partylobby/internal/lobby/clientpackets"
)

// handleInviteToParty processes invite_to_party (opcode 0x10).
// The recipient must be online; party rules are enforced by the coordinator.
func (h *Handler) handleInviteToParty(client *Client, data []byte) (bool, error) {
	pkt, err := clientpackets.ParseTargetRequest(data)
	if err != nil {
		return false, fmt.Errorf("parsing InviteToParty: %w", err)
	}

	if !h.clients.Online(pkt.Target) {
		h.notify(client, ErrInvitedMissing)
		return true, nil
	}

	if err := h.parties.Invite(client.PlayerID(), pkt.Target); err != nil {
		slog.Debug("party invite rejected",
			"playerID", client.PlayerID(),
			"recipient", pkt.Target,
			"reason", err)
		h.notify(client, err)
	}
	return true, nil
}

// handleAcceptPartyInvite processes accept_party_invite (opcode 0x11).
func (h *Handler) handleAcceptPartyInvite(client *Client, data []byte) (bool, error) {
	pkt, err := clientpackets.ParseTargetRequest(data)
	if err != nil {
		return false, fmt.Errorf("parsing AcceptPartyInvite: %w", err)
	}

	if !h.clients.Online(pkt.Target) {
		h.notify(client, ErrInvitingMissing)
		return true, nil
	}

	h.notify(client, h.parties.AcceptInvite(client.PlayerID(), pkt.Target))
	return true, nil
}

// handleKickPlayerFromParty processes kick_player_from_party (opcode 0x12).
func (h *Handler) handleKickPlayerFromParty(client *Client, data []byte) (bool, error) {
	pkt, err := clientpackets.ParseTargetRequest(data)
	if err != nil {
		return false, fmt.Errorf("parsing KickPlayerFromParty: %w", err)
	}

	if !h.clients.Online(pkt.Target) {
		h.notify(client, ErrKickedMissing)
		return true, nil
	}

	h.notify(client, h.parties.Kick(client.PlayerID(), pkt.Target))
	return true, nil
}

// handleLeaveParty processes leave_party (opcode 0x13).
func (h *Handler) handleLeaveParty(client *Client) (bool, error) {
	h.notify(client, h.parties.Leave(client.PlayerID()))
	return true, nil
}

// handleReadyParty processes ready_party (0x14) and unready_party (0x15).
func (h *Handler) handleReadyParty(client *Client, ready bool) (bool, error) {
	if ready {
		h.notify(client, h.parties.Ready(client.PlayerID()))
	} else {
		h.notify(client, h.parties.Unready(client.PlayerID()))
	}
	return true, nil
}

// handleSetPartyFactions processes set_party_factions (opcode 0x16).
func (h *Handler) handleSetPartyFactions(client *Client, data []byte) (bool, error) {
	pkt, err := clientpackets.ParseSetPartyFactions(data)
	if err != nil {
		return false, fmt.Errorf("parsing SetPartyFactions: %w", err)
	}

	h.notify(client, h.parties.SetFactions(client.PlayerID(), pkt.Factions))
	return true, nil
}
