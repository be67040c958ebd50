package clientpackets

import (
	"fmt"

	"github.com/udisondev/partylobby/internal/lobby/packet"
	"github.com/udisondev/partylobby/internal/model"
)

// SetPartyFactions updates the sender's faction preferences.
//
// Packet structure (C2S 0x16):
//   - factions [4]byte (0 = off, anything else = on)
type SetPartyFactions struct {
	Factions model.Factions
}

// ParseSetPartyFactions parses SetPartyFactions packet from raw bytes.
func ParseSetPartyFactions(data []byte) (*SetPartyFactions, error) {
	r := packet.NewReader(data)

	var pkt SetPartyFactions
	for i := range model.FactionCount {
		v, err := r.ReadBool()
		if err != nil {
			return nil, fmt.Errorf("reading faction %d: %w", i, err)
		}
		pkt.Factions[i] = v
	}
	return &pkt, nil
}
