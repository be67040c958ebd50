package lobby

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/partylobby/internal/crypto"
	"github.com/udisondev/partylobby/internal/lobby/serverpackets"
	"github.com/udisondev/partylobby/internal/model"
)

// Default write queue / timeout constants.
// Overridden by config values when available.
const (
	defaultSendQueueSize = 256
	defaultWriteTimeout  = 5 * time.Second
	defaultReadTimeout   = 120 * time.Second
)

var (
	errSendQueueFull = errors.New("send queue full")
	errClientClosed  = errors.New("client closed")
)

// ClientState is the connection phase of a lobby client.
type ClientState int32

const (
	// ClientStateConnected means the key handshake is done but no identity is bound.
	ClientStateConnected ClientState = iota
	// ClientStateAuthenticated means request_login succeeded.
	ClientStateAuthenticated
	// ClientStateDisconnected means the connection is closing.
	ClientStateDisconnected
)

func (s ClientState) String() string {
	switch s {
	case ClientStateConnected:
		return "connected"
	case ClientStateAuthenticated:
		return "authenticated"
	case ClientStateDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("ClientState(%d)", int32(s))
	}
}

// Client is a single lobby connection.
type Client struct {
	conn      net.Conn
	ip        string
	sessionID uuid.UUID
	cipher    *crypto.SessionCipher

	state    atomic.Int32
	playerID atomic.Int32

	mu   sync.Mutex
	name string

	// Per-client write queue of encrypted, pool-backed packets.
	sendCh    chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once
	pumpDone  chan struct{}

	writePool    *BytePool
	writeTimeout time.Duration
}

// NewClient creates lobby client state for the given connection.
func NewClient(conn net.Conn, sessionKey []byte, writePool *BytePool, sendQueueSize int, writeTimeout time.Duration) (*Client, error) {
	ip := conn.RemoteAddr().String()
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}

	cipher, err := crypto.NewSessionCipher(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("creating session cipher: %w", err)
	}

	if sendQueueSize <= 0 {
		sendQueueSize = defaultSendQueueSize
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	if writePool == nil {
		writePool = NewBytePool(writeBufSize)
	}

	client := &Client{
		conn:         conn,
		ip:           ip,
		sessionID:    uuid.New(),
		cipher:       cipher,
		sendCh:       make(chan []byte, sendQueueSize),
		closeCh:      make(chan struct{}),
		pumpDone:     make(chan struct{}),
		writePool:    writePool,
		writeTimeout: writeTimeout,
	}
	client.state.Store(int32(ClientStateConnected))
	return client, nil
}

// Conn returns the underlying network connection.
func (c *Client) Conn() net.Conn {
	return c.conn
}

// IP returns the client's remote address.
func (c *Client) IP() string {
	return c.ip
}

// SessionID identifies this connection in logs.
func (c *Client) SessionID() uuid.UUID {
	return c.sessionID
}

// Cipher returns the session cipher.
func (c *Client) Cipher() *crypto.SessionCipher {
	return c.cipher
}

// State returns the current connection state.
func (c *Client) State() ClientState {
	return ClientState(c.state.Load())
}

// SetState sets the connection state.
func (c *Client) SetState(s ClientState) {
	c.state.Store(int32(s))
}

// PlayerID returns the bound player, or 0 before login.
func (c *Client) PlayerID() model.PlayerID {
	return model.PlayerID(c.playerID.Load())
}

// Name returns the display name bound at login.
func (c *Client) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

// bind attaches a player identity and moves the client to the authenticated state.
func (c *Client) bind(id model.PlayerID, name string) {
	c.mu.Lock()
	c.name = name
	c.mu.Unlock()
	c.playerID.Store(int32(id))
	c.SetState(ClientStateAuthenticated)
}

// writePump is the dedicated writer goroutine for this client.
// Batches queued packets with net.Buffers and returns buffers to the pool.
func (c *Client) writePump() {
	bufs := make(net.Buffers, 0, 64)
	poolBufs := make([][]byte, 0, 64)

	defer func() {
		for {
			select {
			case pkt := <-c.sendCh:
				c.writePool.Put(pkt)
			default:
				close(c.pumpDone)
				return
			}
		}
	}()

	for {
		select {
		case pkt := <-c.sendCh:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				slog.Warn("set write deadline failed", "session", c.sessionID, "error", err)
				c.writePool.Put(pkt)
				return
			}

			queued := len(c.sendCh)
			if queued == 0 {
				_, err := c.conn.Write(pkt)
				c.writePool.Put(pkt)
				if err != nil {
					slog.Warn("write failed", "session", c.sessionID, "error", err)
					return
				}
				continue
			}

			bufs = bufs[:0]
			poolBufs = poolBufs[:0]
			bufs = append(bufs, pkt)
			poolBufs = append(poolBufs, pkt)
			for range queued {
				p := <-c.sendCh
				bufs = append(bufs, p)
				poolBufs = append(poolBufs, p)
			}

			_, err := bufs.WriteTo(c.conn)
			for _, b := range poolBufs {
				c.writePool.Put(b)
			}
			if err != nil {
				slog.Warn("batch write failed", "session", c.sessionID, "error", err)
				return
			}

		case <-c.closeCh:
			c.flushQueued()
			return
		}
	}
}

// flushQueued writes whatever is still queued when the client is closed.
func (c *Client) flushQueued() {
	for {
		select {
		case pkt := <-c.sendCh:
			err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err == nil {
				_, err = c.conn.Write(pkt)
			}
			c.writePool.Put(pkt)
			if err != nil {
				return
			}
		default:
			return
		}
	}
}

// Send queues an encrypted packet for async delivery.
// Non-blocking: a full queue closes the slow client.
// Takes ownership of encryptedPkt.
func (c *Client) Send(encryptedPkt []byte) error {
	select {
	case <-c.closeCh:
		c.writePool.Put(encryptedPkt)
		return errClientClosed
	default:
	}

	select {
	case c.sendCh <- encryptedPkt:
		return nil
	default:
		c.writePool.Put(encryptedPkt)
		slog.Warn("send queue full, disconnecting slow client", "session", c.sessionID, "playerID", c.PlayerID())
		// Closing the conn unblocks the read loop, which runs the disconnect cleanup.
		_ = c.Close()
		return errSendQueueFull
	}
}

// SendSync queues an encrypted packet and blocks until accepted or timeout.
// Takes ownership of encryptedPkt.
func (c *Client) SendSync(encryptedPkt []byte, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case c.sendCh <- encryptedPkt:
		return nil
	case <-timer.C:
		c.writePool.Put(encryptedPkt)
		return fmt.Errorf("send timeout after %v", timeout)
	case <-c.closeCh:
		c.writePool.Put(encryptedPkt)
		return errClientClosed
	}
}

// SendPacket serializes, encrypts and queues pkt without blocking.
func (c *Client) SendPacket(pkt serverpackets.Packet) error {
	enc, err := c.encode(pkt)
	if err != nil {
		return err
	}
	return c.Send(enc)
}

// SendPacketSync is SendPacket for responses that must not be dropped.
func (c *Client) SendPacketSync(pkt serverpackets.Packet) error {
	enc, err := c.encode(pkt)
	if err != nil {
		return err
	}
	return c.SendSync(enc, c.writeTimeout)
}

func (c *Client) encode(pkt serverpackets.Packet) ([]byte, error) {
	data, err := pkt.Write()
	if err != nil {
		return nil, fmt.Errorf("serializing %T: %w", pkt, err)
	}
	enc, err := c.writePool.EncryptToPooled(c.cipher, data)
	if err != nil {
		return nil, fmt.Errorf("encrypting %T: %w", pkt, err)
	}
	return enc, nil
}

// CloseAsync signals the writePump to stop without blocking.
// Safe to call multiple times.
func (c *Client) CloseAsync() {
	c.closeOnce.Do(func() {
		c.state.Store(int32(ClientStateDisconnected))
		close(c.closeCh)
	})
}

// Close closes the connection and stops the writePump.
func (c *Client) Close() error {
	c.CloseAsync()
	return c.conn.Close()
}

// Shutdown stops the writePump, lets it flush queued packets for up to
// timeout, then closes the connection. Only valid once writePump is running.
func (c *Client) Shutdown(timeout time.Duration) error {
	c.CloseAsync()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-c.pumpDone:
	case <-timer.C:
		slog.Warn("write pump did not stop in time", "session", c.sessionID)
	}
	return c.conn.Close()
}
