package crypto

import (
	"crypto/rand"
	"fmt"
)

// SessionKeySize is the length of the per-connection Blowfish key.
const SessionKeySize = 16

// NewSessionKey returns a fresh random key with no zero bytes.
func NewSessionKey() ([]byte, error) {
	key := make([]byte, SessionKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating session key: %w", err)
	}
	for i, b := range key {
		if b == 0 {
			key[i] = 1
		}
	}
	return key, nil
}

// SessionCipher encrypts lobby packets after the key handshake.
// Both directions use the same scheme: zero padding, XOR checksum in the last
// word, Blowfish ECB over the whole padded block.
type SessionCipher struct {
	cipher *BlowfishCipher
}

// NewSessionCipher creates a SessionCipher for the given session key.
func NewSessionCipher(key []byte) (*SessionCipher, error) {
	c, err := NewBlowfishCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating session cipher: %w", err)
	}
	return &SessionCipher{cipher: c}, nil
}

// EncryptedSize returns the on-wire size of a payload of n bytes.
func EncryptedSize(n int) int {
	size := n + 4
	if size%8 != 0 {
		size += 8 - size%8
	}
	return size
}

// Encrypt encrypts data[offset:offset+size] in-place and returns the encrypted size.
// data must have room for EncryptedSize(size) bytes from offset.
func (s *SessionCipher) Encrypt(data []byte, offset, size int) (int, error) {
	encSize := EncryptedSize(size)
	if offset+encSize > len(data) {
		return 0, fmt.Errorf("encrypt packet: buffer too small (need %d, have %d)", offset+encSize, len(data))
	}

	clear(data[offset+size : offset+encSize])
	AppendChecksum(data, offset, encSize)
	if err := s.cipher.Encrypt(data, offset, encSize); err != nil {
		return 0, fmt.Errorf("encrypting packet: %w", err)
	}
	return encSize, nil
}

// Decrypt decrypts data[offset:offset+size] in-place.
// Returns false if the checksum does not match.
func (s *SessionCipher) Decrypt(data []byte, offset, size int) (bool, error) {
	if err := s.cipher.Decrypt(data, offset, size); err != nil {
		return false, fmt.Errorf("decrypting packet: %w", err)
	}
	return VerifyChecksum(data, offset, size), nil
}
