package serverpackets

import (
	"fmt"

	"github.com/udisondev/partylobby/internal/crypto"
	"github.com/udisondev/partylobby/internal/lobby/packet"
)

// KeyPacket carries the session Blowfish key. It is the only packet sent in plaintext.
//
// Packet structure (S2C 0x00):
//   - opcode byte     0x00
//   - key    [16]byte
type KeyPacket struct {
	Key []byte
}

// NewKeyPacket creates a KeyPacket for the session key.
func NewKeyPacket(key []byte) *KeyPacket {
	return &KeyPacket{Key: key}
}

// Write serializes the KeyPacket.
func (p *KeyPacket) Write() ([]byte, error) {
	if len(p.Key) != crypto.SessionKeySize {
		return nil, fmt.Errorf("key packet: key length %d, want %d", len(p.Key), crypto.SessionKeySize)
	}
	w := packet.NewWriter(1 + crypto.SessionKeySize)
	w.WriteByte(OpcodeKeyPacket)
	w.WriteBytes(p.Key)
	return w.Bytes(), nil
}
