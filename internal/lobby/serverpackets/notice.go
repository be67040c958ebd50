package serverpackets

import (
	"github.com/udisondev/partylobby/internal/lobby/packet"
)

// Notice is a human-readable message shown to the player.
//
// Packet structure (S2C 0x7F):
//   - opcode byte   0x7F
//   - style  string (UTF-16LE null-terminated)
//   - text   string (UTF-16LE null-terminated)
type Notice struct {
	Style string
	Text  string
}

// Write serializes the Notice packet.
func (p *Notice) Write() ([]byte, error) {
	w := packet.NewWriter(1 + (len(p.Style)+len(p.Text))*2 + 4)
	w.WriteByte(OpcodeNotice)
	w.WriteString(p.Style)
	w.WriteString(p.Text)
	return w.Bytes(), nil
}
