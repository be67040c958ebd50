package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/udisondev/partylobby/internal/crypto"
)

const (
	// HeaderSize is the packet length header size (2 bytes, little-endian uint16).
	HeaderSize = 2

	// BufferPadding is the extra buffer space reserved for checksum and block padding.
	BufferPadding = 16

	// MaxPacketSize is the largest total packet length the header can carry.
	MaxPacketSize = 0xFFFF
)

// EncryptInPlace encrypts the payload at buf[HeaderSize:HeaderSize+payloadLen]
// and writes the length header. Returns the total packet length.
// A nil enc leaves the payload in plaintext (key handshake).
func EncryptInPlace(enc *crypto.SessionCipher, buf []byte, payloadLen int) (int, error) {
	size := payloadLen
	if enc != nil {
		needed := HeaderSize + crypto.EncryptedSize(payloadLen)
		if len(buf) < needed {
			return 0, fmt.Errorf("encrypt in place: buffer too small (need %d, have %d)", needed, len(buf))
		}
		var err error
		size, err = enc.Encrypt(buf, HeaderSize, payloadLen)
		if err != nil {
			return 0, fmt.Errorf("encrypting packet: %w", err)
		}
	} else if len(buf) < HeaderSize+payloadLen {
		return 0, fmt.Errorf("encrypt in place: buffer too small (need %d, have %d)", HeaderSize+payloadLen, len(buf))
	}

	total := HeaderSize + size
	if total > MaxPacketSize {
		return 0, fmt.Errorf("packet too large: %d bytes", total)
	}
	binary.LittleEndian.PutUint16(buf[:HeaderSize], uint16(total))
	return total, nil
}

// WritePacket encrypts payload in-place and writes the packet to w.
// Precondition: payload lives at buf[HeaderSize : HeaderSize+payloadLen].
func WritePacket(w io.Writer, enc *crypto.SessionCipher, buf []byte, payloadLen int) error {
	total, err := EncryptInPlace(enc, buf, payloadLen)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf[:total]); err != nil {
		return fmt.Errorf("writing packet: %w", err)
	}
	return nil
}

// ReadPacket reads one packet from r into buf.
// Returns a subslice of buf with the decrypted payload (without the length header).
// A nil enc reads a plaintext packet.
func ReadPacket(r io.Reader, enc *crypto.SessionCipher, buf []byte) ([]byte, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("reading packet header: %w", err)
	}

	totalLen := int(binary.LittleEndian.Uint16(header[:]))
	if totalLen < HeaderSize {
		return nil, fmt.Errorf("invalid packet length: %d", totalLen)
	}

	payloadLen := totalLen - HeaderSize
	if payloadLen == 0 {
		return nil, fmt.Errorf("empty packet")
	}

	if payloadLen > len(buf) {
		return nil, fmt.Errorf("packet payload %d exceeds buffer size %d", payloadLen, len(buf))
	}

	payload := buf[:payloadLen]
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("reading packet payload: %w", err)
	}

	if enc == nil {
		return payload, nil
	}

	ok, err := enc.Decrypt(payload, 0, payloadLen)
	if err != nil {
		return nil, fmt.Errorf("decrypting packet: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("packet checksum verification failed")
	}

	return payload, nil
}
