package clientpackets

import (
	"fmt"

	"github.com/udisondev/partylobby/internal/lobby/packet"
	"github.com/udisondev/partylobby/internal/model"
)

// MaxNameLength bounds the display name a client may bind.
const MaxNameLength = 32

// RequestLogin binds the connection to a player identity.
//
// Packet structure (C2S 0x01):
//   - playerID int32
//   - name     string (UTF-16LE null-terminated)
type RequestLogin struct {
	PlayerID model.PlayerID
	Name     string
}

// ParseRequestLogin parses RequestLogin packet from raw bytes.
func ParseRequestLogin(data []byte) (*RequestLogin, error) {
	r := packet.NewReader(data)

	id, err := r.ReadInt()
	if err != nil {
		return nil, fmt.Errorf("reading playerID: %w", err)
	}
	if id <= 0 {
		return nil, fmt.Errorf("invalid playerID %d", id)
	}

	name, err := r.ReadString()
	if err != nil {
		return nil, fmt.Errorf("reading name: %w", err)
	}
	if len([]rune(name)) > MaxNameLength {
		return nil, fmt.Errorf("name too long: %d runes", len([]rune(name)))
	}

	return &RequestLogin{PlayerID: model.PlayerID(id), Name: name}, nil
}
