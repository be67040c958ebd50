package serverpackets

import (
	"github.com/udisondev/partylobby/internal/lobby/packet"
	"github.com/udisondev/partylobby/internal/model"
)

// PartyInvite tells the recipient who invited them.
//
// Packet structure (S2C 0x10):
//   - opcode byte  0x10
//   - sender int32
type PartyInvite struct {
	Sender model.PlayerID
}

// Write serializes the PartyInvite packet.
func (p *PartyInvite) Write() ([]byte, error) {
	w := packet.NewWriter(5)
	w.WriteByte(OpcodePartyInvite)
	w.WriteInt(int32(p.Sender))
	return w.Bytes(), nil
}

// UpdateParty is a full party snapshot. An empty member list tells a former
// member that they are no longer in the party.
//
// Packet structure (S2C 0x11):
//   - opcode       byte   0x11
//   - owner        int32
//   - memberCount  int32
//   - members      memberCount × {id int32, ready byte, factions [4]byte}
//   - readyCount   int32
//   - membersReady readyCount × int32
type UpdateParty struct {
	Snapshot model.UpdateParty
}

// Write serializes the UpdateParty packet.
func (p *UpdateParty) Write() ([]byte, error) {
	s := p.Snapshot
	w := packet.NewWriter(13 + len(s.Members)*(9+model.FactionCount))

	w.WriteByte(OpcodeUpdateParty)
	w.WriteInt(int32(s.Owner))

	w.WriteInt(int32(len(s.Members)))
	for _, m := range s.Members {
		w.WriteInt(int32(m.ID))
		w.WriteBool(m.Ready)
		for _, f := range m.Factions {
			w.WriteBool(f)
		}
	}

	w.WriteInt(int32(len(s.MembersReady)))
	for _, id := range s.MembersReady {
		w.WriteInt(int32(id))
	}

	return w.Bytes(), nil
}

// PartyDisbanded tells a player that the party they tried to join no longer exists.
//
// Packet structure (S2C 0x12): opcode only.
type PartyDisbanded struct{}

// Write serializes the PartyDisbanded packet.
func (p *PartyDisbanded) Write() ([]byte, error) {
	return []byte{OpcodePartyDisbanded}, nil
}

// KickedFromParty tells a player the owner removed them.
//
// Packet structure (S2C 0x13): opcode only.
type KickedFromParty struct{}

// Write serializes the KickedFromParty packet.
func (p *KickedFromParty) Write() ([]byte, error) {
	return []byte{OpcodeKickedFromParty}, nil
}
