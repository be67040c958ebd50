// Package serverpackets serializes packets sent to lobby clients.
package serverpackets

import (
	"fmt"

	"github.com/udisondev/partylobby/internal/model"
)

// Server packet opcodes.
const (
	OpcodeKeyPacket       = 0x00
	OpcodeLoginOk         = 0x01
	OpcodePartyInvite     = 0x10
	OpcodeUpdateParty     = 0x11
	OpcodePartyDisbanded  = 0x12
	OpcodeKickedFromParty = 0x13
	OpcodeNotice          = 0x7F
)

// Packet is a serializable server packet.
type Packet interface {
	Write() ([]byte, error)
}

// FromEvent maps a party event to its wire packet.
func FromEvent(ev model.Event) (Packet, error) {
	switch e := ev.(type) {
	case model.PartyInvite:
		return &PartyInvite{Sender: e.Sender}, nil
	case model.UpdateParty:
		return &UpdateParty{Snapshot: e}, nil
	case model.PartyDisbanded:
		return &PartyDisbanded{}, nil
	case model.KickedFromParty:
		return &KickedFromParty{}, nil
	case model.Notice:
		return &Notice{Style: e.Style, Text: e.Text}, nil
	default:
		return nil, fmt.Errorf("no packet for event %T", ev)
	}
}
