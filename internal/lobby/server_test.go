package lobby

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/partylobby/internal/game/party"
	"github.com/udisondev/partylobby/internal/lobby/clientpackets"
	"github.com/udisondev/partylobby/internal/lobby/serverpackets"
	"github.com/udisondev/partylobby/internal/model"
	"github.com/udisondev/partylobby/internal/social"
)

func TestServer_PartyLifecycle(t *testing.T) {
	lobby := startLobby(t)
	a := dial(t, lobby.addr)
	b := dial(t, lobby.addr)
	a.login(1, "alice")
	b.login(2, "bob")

	a.sendTarget(clientpackets.OpcodeInviteToParty, 2)
	r := b.expect(serverpackets.OpcodePartyInvite)
	sender, err := r.ReadInt()
	require.NoError(t, err)
	assert.Equal(t, int32(1), sender)

	b.sendTarget(clientpackets.OpcodeAcceptPartyInvite, 1)
	for _, c := range []*testClient{a, b} {
		u := c.expectUpdate()
		assert.Equal(t, model.PlayerID(1), u.Owner)
		assert.Equal(t, []model.PlayerID{1, 2}, u.MemberIDs())
		assert.Empty(t, u.MembersReady)
	}

	b.send(clientpackets.OpcodeReadyParty, nil)
	for _, c := range []*testClient{a, b} {
		assert.Equal(t, []model.PlayerID{2}, c.expectUpdate().MembersReady)
	}

	a.send(clientpackets.OpcodeSetPartyFactions, []byte{1, 0, 0, 1})
	for _, c := range []*testClient{a, b} {
		u := c.expectUpdate()
		assert.Equal(t, model.Factions{true, false, false, true}, u.Members[0].Factions)
	}

	a.sendTarget(clientpackets.OpcodeKickPlayerFromParty, 2)
	assert.Equal(t, []model.PlayerID{1}, a.expectUpdate().MemberIDs())
	assert.Equal(t, []model.PlayerID{1}, b.expectUpdate().MemberIDs())
	b.expect(serverpackets.OpcodeKickedFromParty)

	a.send(clientpackets.OpcodeLeaveParty, nil)
	assert.Empty(t, a.expectUpdate().Members)

	waitFor(t, func() bool { return lobby.parties.PartyCount() == 0 })
}

func TestServer_Notices(t *testing.T) {
	lobby := startLobby(t)
	a := dial(t, lobby.addr)
	a.login(1, "alice")

	tests := []struct {
		name   string
		opcode byte
		target model.PlayerID
		noBody bool
		want   error
	}{
		{"leave without party", clientpackets.OpcodeLeaveParty, 0, true, party.ErrNotInParty},
		{"ready without party", clientpackets.OpcodeReadyParty, 0, true, party.ErrNotInParty},
		{"invite offline", clientpackets.OpcodeInviteToParty, 99, false, ErrInvitedMissing},
		{"accept from offline", clientpackets.OpcodeAcceptPartyInvite, 99, false, ErrInvitingMissing},
		{"kick offline", clientpackets.OpcodeKickPlayerFromParty, 99, false, ErrKickedMissing},
		{"invite self", clientpackets.OpcodeInviteToParty, 1, false, party.ErrInviteSelf},
		{"block self", clientpackets.OpcodeBlockPlayer, 1, false, social.ErrBlockSelf},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a.t = t
			if tt.noBody {
				a.send(tt.opcode, nil)
			} else {
				a.sendTarget(tt.opcode, tt.target)
			}
			assert.Equal(t, tt.want.Error(), a.expectNotice())
		})
	}
}

func TestServer_NoticeForUnknownInvite(t *testing.T) {
	lobby := startLobby(t)
	a := dial(t, lobby.addr)
	b := dial(t, lobby.addr)
	a.login(1, "alice")
	b.login(2, "bob")

	b.sendTarget(clientpackets.OpcodeAcceptPartyInvite, 1)
	assert.Equal(t, party.ErrNoSuchInvite.Error(), b.expectNotice())
}

func TestServer_BlockPlayer(t *testing.T) {
	lobby := startLobby(t)
	a := dial(t, lobby.addr)
	b := dial(t, lobby.addr)
	a.login(1, "alice")
	b.login(2, "bob")

	b.sendTarget(clientpackets.OpcodeBlockPlayer, 1)
	waitFor(t, func() bool { return lobby.book.IsBlocked(2, 1) })

	a.sendTarget(clientpackets.OpcodeInviteToParty, 2)
	assert.Equal(t, party.ErrBlocked.Error(), a.expectNotice())
	assert.Equal(t, 0, lobby.parties.PartyCount(), "отклонённое приглашение не создаёт партию")

	b.sendTarget(clientpackets.OpcodeUnblockPlayer, 1)
	waitFor(t, func() bool { return !lobby.book.IsBlocked(2, 1) })

	a.sendTarget(clientpackets.OpcodeInviteToParty, 2)
	b.expect(serverpackets.OpcodePartyInvite)
}

func TestServer_StaleAccept(t *testing.T) {
	lobby := startLobby(t)
	a := dial(t, lobby.addr)
	b := dial(t, lobby.addr)
	a.login(1, "alice")
	b.login(2, "bob")

	a.sendTarget(clientpackets.OpcodeInviteToParty, 2)
	b.expect(serverpackets.OpcodePartyInvite)

	a.send(clientpackets.OpcodeLeaveParty, nil)
	a.expectUpdate()

	b.sendTarget(clientpackets.OpcodeAcceptPartyInvite, 1)
	b.expect(serverpackets.OpcodePartyDisbanded)
	assert.Equal(t, 0, lobby.parties.PartyCount())
}

func TestServer_DisconnectCleansUp(t *testing.T) {
	lobby := startLobby(t)
	a := dial(t, lobby.addr)
	b := dial(t, lobby.addr)
	a.login(1, "alice")
	b.login(2, "bob")

	a.sendTarget(clientpackets.OpcodeInviteToParty, 2)
	b.expect(serverpackets.OpcodePartyInvite)
	b.sendTarget(clientpackets.OpcodeAcceptPartyInvite, 1)
	a.expectUpdate()
	b.expectUpdate()

	require.NoError(t, a.conn.Close())

	// Владелец ушёл: сначала снимок без него, затем пустой снимок роспуска
	assert.Equal(t, []model.PlayerID{2}, b.expectUpdate().MemberIDs())
	assert.Empty(t, b.expectUpdate().Members)

	waitFor(t, func() bool {
		return lobby.parties.PartyCount() == 0 && lobby.srv.clients.Count() == 1
	})
	_, inParty := lobby.parties.PartyOf(2)
	assert.False(t, inParty)
}

func TestServer_DuplicateLogin(t *testing.T) {
	lobby := startLobby(t)
	a := dial(t, lobby.addr)
	a.login(1, "alice")

	dup := dial(t, lobby.addr)
	w := []byte{1, 0, 0, 0, 'x', 0, 0, 0}
	dup.send(clientpackets.OpcodeRequestLogin, w)

	assert.Equal(t, ErrAlreadyOnline.Error(), dup.expectNotice())
	dup.expectClosed()

	// Первая сессия не затронута
	a.send(clientpackets.OpcodeLeaveParty, nil)
	assert.Equal(t, party.ErrNotInParty.Error(), a.expectNotice())
	assert.Equal(t, 1, lobby.srv.clients.Count())
}

func TestServer_CommandBeforeLogin(t *testing.T) {
	lobby := startLobby(t)
	c := dial(t, lobby.addr)

	c.send(clientpackets.OpcodeLeaveParty, nil)
	c.expectClosed()
	assert.Equal(t, 0, lobby.srv.clients.Count())
}

func TestServer_MalformedLogin(t *testing.T) {
	lobby := startLobby(t)
	c := dial(t, lobby.addr)

	// playerID должен быть положительным
	c.send(clientpackets.OpcodeRequestLogin, []byte{0, 0, 0, 0, 'x', 0, 0, 0})
	c.expectClosed()
	assert.Equal(t, 0, lobby.srv.clients.Count())
}

func TestServer_Addr(t *testing.T) {
	lobby := startLobby(t)

	waitFor(t, func() bool { return lobby.srv.Addr() != nil })
	assert.Equal(t, lobby.addr, lobby.srv.Addr().String())
}
