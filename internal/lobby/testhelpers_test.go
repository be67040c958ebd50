package lobby

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/partylobby/internal/config"
	"github.com/udisondev/partylobby/internal/crypto"
	"github.com/udisondev/partylobby/internal/game/party"
	"github.com/udisondev/partylobby/internal/lobby/clientpackets"
	"github.com/udisondev/partylobby/internal/lobby/packet"
	"github.com/udisondev/partylobby/internal/lobby/serverpackets"
	"github.com/udisondev/partylobby/internal/model"
	"github.com/udisondev/partylobby/internal/protocol"
	"github.com/udisondev/partylobby/internal/social"
)

// testLobby: поднятый на loopback сервер с координатором и соц. книгой без БД
type testLobby struct {
	srv     *Server
	parties *party.Coordinator
	book    *social.Book
	addr    string
}

func startLobby(t *testing.T) *testLobby {
	t.Helper()
	return startLobbyWith(t, social.NewBook(nil), nil)
}

// startLobbyWith поднимает сервер с заданной книгой и хранилищем игроков.
func startLobbyWith(t *testing.T, book *social.Book, players PlayerStore) *testLobby {
	t.Helper()

	cfg := config.DefaultLobby()
	cfg.ReadTimeout = 5 * time.Second
	cfg.WriteTimeout = time.Second

	clients := NewClientManager()
	parties := party.NewCoordinator(clients, book, time.Hour)
	srv := NewServer(cfg, clients, parties, book, players)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("lobby server did not stop")
		}
	})

	return &testLobby{srv: srv, parties: parties, book: book, addr: ln.Addr().String()}
}

// testClient: минимальный клиент протокола лобби
type testClient struct {
	t    *testing.T
	conn net.Conn
	enc  *crypto.SessionCipher
}

func dial(t *testing.T, addr string) *testClient {
	t.Helper()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	keyPkt, err := protocol.ReadPacket(conn, nil, make([]byte, 64))
	require.NoError(t, err)
	require.Equal(t, byte(serverpackets.OpcodeKeyPacket), keyPkt[0])
	require.Len(t, keyPkt, 1+crypto.SessionKeySize)

	enc, err := crypto.NewSessionCipher(keyPkt[1:])
	require.NoError(t, err)

	return &testClient{t: t, conn: conn, enc: enc}
}

func (c *testClient) send(opcode byte, body []byte) {
	c.t.Helper()

	buf := make([]byte, protocol.HeaderSize+1+len(body)+protocol.BufferPadding)
	buf[protocol.HeaderSize] = opcode
	copy(buf[protocol.HeaderSize+1:], body)
	require.NoError(c.t, protocol.WritePacket(c.conn, c.enc, buf, 1+len(body)))
}

func (c *testClient) sendTarget(opcode byte, target model.PlayerID) {
	c.t.Helper()

	w := packet.NewWriter(4)
	w.WriteInt(int32(target))
	c.send(opcode, w.Bytes())
}

// recv читает следующий пакет и возвращает opcode и тело.
func (c *testClient) recv() (byte, *packet.Reader) {
	c.t.Helper()

	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	payload, err := protocol.ReadPacket(c.conn, c.enc, make([]byte, 4096))
	require.NoError(c.t, err)
	return payload[0], packet.NewReader(payload[1:])
}

func (c *testClient) expect(opcode byte) *packet.Reader {
	c.t.Helper()

	got, r := c.recv()
	require.Equalf(c.t, opcode, got, "expected opcode 0x%02X, got 0x%02X", opcode, got)
	return r
}

func (c *testClient) expectNotice() string {
	c.t.Helper()

	r := c.expect(serverpackets.OpcodeNotice)
	style, err := r.ReadString()
	require.NoError(c.t, err)
	require.Equal(c.t, model.NoticeStyleError, style)
	text, err := r.ReadString()
	require.NoError(c.t, err)
	return text
}

func (c *testClient) expectUpdate() model.UpdateParty {
	c.t.Helper()
	return decodeUpdate(c.t, c.expect(serverpackets.OpcodeUpdateParty))
}

// expectClosed ждёт, пока сервер закроет соединение.
func (c *testClient) expectClosed() {
	c.t.Helper()

	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err := protocol.ReadPacket(c.conn, c.enc, make([]byte, 4096))
	require.Error(c.t, err)
	var ne net.Error
	if errors.As(err, &ne) {
		require.False(c.t, ne.Timeout(), "connection was not closed")
	}
}

func (c *testClient) login(id model.PlayerID, name string) {
	c.t.Helper()

	w := packet.NewWriter(32)
	w.WriteInt(int32(id))
	w.WriteString(name)
	c.send(clientpackets.OpcodeRequestLogin, w.Bytes())

	r := c.expect(serverpackets.OpcodeLoginOk)
	got, err := r.ReadInt()
	require.NoError(c.t, err)
	require.Equal(c.t, int32(id), got)
}

func decodeUpdate(t *testing.T, r *packet.Reader) model.UpdateParty {
	t.Helper()

	var u model.UpdateParty
	owner, err := r.ReadInt()
	require.NoError(t, err)
	u.Owner = model.PlayerID(owner)

	count, err := r.ReadInt()
	require.NoError(t, err)
	u.Members = make([]model.MemberState, 0, count)
	for range count {
		var m model.MemberState
		id, err := r.ReadInt()
		require.NoError(t, err)
		m.ID = model.PlayerID(id)
		m.Ready, err = r.ReadBool()
		require.NoError(t, err)
		for i := range m.Factions {
			m.Factions[i], err = r.ReadBool()
			require.NoError(t, err)
		}
		u.Members = append(u.Members, m)
	}

	readyCount, err := r.ReadInt()
	require.NoError(t, err)
	u.MembersReady = make([]model.PlayerID, 0, readyCount)
	for range readyCount {
		id, err := r.ReadInt()
		require.NoError(t, err)
		u.MembersReady = append(u.MembersReady, model.PlayerID(id))
	}
	return u
}

// waitFor опрашивает cond до истечения таймаута.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}
