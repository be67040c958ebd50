package lobby

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/udisondev/partylobby/internal/config"
	"github.com/udisondev/partylobby/internal/crypto"
	"github.com/udisondev/partylobby/internal/game/party"
	"github.com/udisondev/partylobby/internal/lobby/serverpackets"
	"github.com/udisondev/partylobby/internal/protocol"
	"github.com/udisondev/partylobby/internal/social"
)

const (
	readBufSize  = 4096
	writeBufSize = 512
)

// Server accepts lobby client connections.
type Server struct {
	cfg     config.Lobby
	parties *party.Coordinator
	book    *social.Book

	readPool  *BytePool
	writePool *BytePool
	handler   *Handler
	clients   *ClientManager

	listener net.Listener
	mu       sync.Mutex
}

// NewServer creates a lobby server. The coordinator must deliver through
// clients so party events reach connected players.
func NewServer(cfg config.Lobby, clients *ClientManager, parties *party.Coordinator, book *social.Book, players PlayerStore) *Server {
	return &Server{
		cfg:       cfg,
		parties:   parties,
		book:      book,
		readPool:  NewBytePool(readBufSize),
		writePool: NewBytePool(writeBufSize),
		handler:   NewHandler(parties, book, players, clients),
		clients:   clients,
	}
}

// Addr returns the address the server is listening on.
// Returns nil if the server hasn't started yet.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run listens on cfg.BindAddress:cfg.Port and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is cancelled, then waits for
// every connection goroutine to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	slog.Info("lobby server started", "address", ln.Addr())

	var wg sync.WaitGroup
	acceptLoop(ctx, &wg, s, ln)
	wg.Wait()

	slog.Info("lobby server stopped")
	return nil
}

func acceptLoop(ctx context.Context, wg *sync.WaitGroup, srv *Server, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Error("failed to accept new connection", "error", err)
			continue
		}

		if tcpConn, ok := conn.(*net.TCPConn); ok {
			if err := tcpConn.SetKeepAlive(true); err != nil {
				slog.Warn("set keepalive failed", "error", err)
			}
			if err := tcpConn.SetKeepAlivePeriod(30 * time.Second); err != nil {
				slog.Warn("set keepalive period failed", "error", err)
			}
		}

		wg.Go(func() {
			handleConnection(ctx, srv, conn)
		})
	}
}

func handleConnection(ctx context.Context, srv *Server, conn net.Conn) {
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	key, err := crypto.NewSessionKey()
	if err != nil {
		slog.Error("failed to generate session key", "error", err)
		return
	}

	client, err := NewClient(conn, key, srv.writePool, srv.cfg.SendQueueSize, srv.cfg.WriteTimeout)
	if err != nil {
		slog.Error("failed to create lobby client", "error", err)
		return
	}
	defer OnDisconnection(client, srv.clients, srv.parties, srv.book)

	slog.Info("new lobby connection", "remote", client.IP(), "session", client.SessionID())

	if err := sendKeyPacket(conn, key, client.writeTimeout); err != nil {
		slog.Error("failed to send KeyPacket", "session", client.SessionID(), "error", err)
		return
	}

	// writePump starts after the plaintext KeyPacket is written directly.
	go client.writePump()
	defer client.Shutdown(client.writeTimeout)

	readTimeout := srv.cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}

	for {
		keepOpen, err := handlePacket(ctx, srv, client, readTimeout)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				slog.Info("client disconnected", "session", client.SessionID(), "playerID", client.PlayerID())
			} else {
				slog.Error("packet handling error", "session", client.SessionID(), "error", err)
			}
			return
		}
		if !keepOpen {
			slog.Info("closing client connection", "session", client.SessionID(), "playerID", client.PlayerID())
			return
		}
	}
}

func sendKeyPacket(conn net.Conn, key []byte, timeout time.Duration) error {
	data, err := serverpackets.NewKeyPacket(key).Write()
	if err != nil {
		return fmt.Errorf("serializing KeyPacket: %w", err)
	}

	buf := make([]byte, protocol.HeaderSize+len(data))
	copy(buf[protocol.HeaderSize:], data)

	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("setting write deadline: %w", err)
	}
	return protocol.WritePacket(conn, nil, buf, len(data))
}

func handlePacket(ctx context.Context, srv *Server, client *Client, readTimeout time.Duration) (bool, error) {
	readBuf := srv.readPool.Get(readBufSize)
	defer srv.readPool.Put(readBuf)

	if err := client.Conn().SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		return false, fmt.Errorf("setting read deadline: %w", err)
	}

	payload, err := protocol.ReadPacket(client.Conn(), client.Cipher(), readBuf)
	if err != nil {
		return false, fmt.Errorf("reading packet: %w", err)
	}

	keepOpen, err := srv.handler.HandlePacket(ctx, client, payload)
	if err != nil {
		return false, fmt.Errorf("handling packet: %w", err)
	}
	return keepOpen, nil
}
