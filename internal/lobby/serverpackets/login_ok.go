package serverpackets

import (
	"github.com/udisondev/partylobby/internal/lobby/packet"
	"github.com/udisondev/partylobby/internal/model"
)

// LoginOk confirms the identity bound by request_login.
//
// Packet structure (S2C 0x01):
//   - opcode   byte  0x01
//   - playerID int32
type LoginOk struct {
	PlayerID model.PlayerID
}

// Write serializes the LoginOk packet.
func (p *LoginOk) Write() ([]byte, error) {
	w := packet.NewWriter(5)
	w.WriteByte(OpcodeLoginOk)
	w.WriteInt(int32(p.PlayerID))
	return w.Bytes(), nil
}
