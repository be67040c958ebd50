package clientpackets

import (
	"fmt"

	"github.com/udisondev/partylobby/internal/lobby/packet"
	"github.com/udisondev/partylobby/internal/model"
)

// TargetRequest is the body shared by every command that names one other player:
// invite_to_party (recipient), accept_party_invite (sender),
// kick_player_from_party (target), block_player and unblock_player (target).
//
// Packet structure:
//   - playerID int32
type TargetRequest struct {
	Target model.PlayerID
}

// ParseTargetRequest parses a single-player command body.
func ParseTargetRequest(data []byte) (*TargetRequest, error) {
	r := packet.NewReader(data)

	id, err := r.ReadInt()
	if err != nil {
		return nil, fmt.Errorf("reading target playerID: %w", err)
	}

	return &TargetRequest{Target: model.PlayerID(id)}, nil
}
