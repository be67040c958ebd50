package party

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/partylobby/internal/model"
)

// Relations answers invite eligibility questions from the social layer.
type Relations interface {
	// IsBlocked reports whether owner has put target on their block list.
	IsBlocked(owner, target model.PlayerID) bool
}

// ReadyFunc is called when a ready change leaves every member of a party ready.
// It runs under the coordinator lock and must not call back into the Coordinator.
type ReadyFunc func(partyID int64, snap model.UpdateParty)

// Info is a read-only view of one party.
type Info struct {
	ID    int64             `json:"id"`
	Size  int               `json:"size"`
	Ready bool              `json:"ready"`
	State model.UpdateParty `json:"state"`
}

// Coordinator owns every party, the player→party index and the invite pool.
// It is the only entry point for party state changes.
//
// Thread-safe: one mutex covers each whole operation, so cross-map invariants
// (index, party membership, invite validity) are never observed half-updated.
type Coordinator struct {
	mu            sync.Mutex
	parties       map[int64]*model.Party
	playerParties map[model.PlayerID]*model.Party
	invites       *InvitePool
	nextID        atomic.Int64

	out       model.Delivery
	relations Relations
	metrics   *Metrics
	onReady   ReadyFunc
}

// NewCoordinator creates a coordinator pushing events through out.
// relations may be nil, in which case nobody is blocked.
func NewCoordinator(out model.Delivery, relations Relations, inviteTimeout time.Duration) *Coordinator {
	return &Coordinator{
		parties:       make(map[int64]*model.Party),
		playerParties: make(map[model.PlayerID]*model.Party),
		invites:       NewInvitePool(inviteTimeout, nil),
		out:           out,
		relations:     relations,
	}
}

// SetMetrics attaches Prometheus metrics.
func (c *Coordinator) SetMetrics(m *Metrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = m
}

// SetReadyListener registers fn to be told when a party becomes fully ready.
func (c *Coordinator) SetReadyListener(fn ReadyFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReady = fn
}

// SetClock replaces the wall clock used for invite timestamps.
func (c *Coordinator) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invites.now = now
}

// Invite sends a party invite from sender to recipient, creating sender's
// party if they have none.
func (c *Coordinator) Invite(sender, recipient model.PlayerID) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.done("invite", err) }()

	if sender == recipient {
		return ErrInviteSelf
	}

	party := c.playerParties[sender]
	if party != nil && party.Owner() != sender {
		return ErrNotOwner
	}
	if c.relations != nil && c.relations.IsBlocked(recipient, sender) {
		return ErrBlocked
	}

	if party == nil {
		party = c.createParty(sender)
	}

	c.invites.Add(sender, recipient, party.ID())
	c.out.Deliver(recipient, model.PartyInvite{Sender: sender})
	return nil
}

// AcceptInvite adds recipient to the party sender invited them to.
// If that party has disbanded since, recipient is told so and nothing changes.
func (c *Coordinator) AcceptInvite(recipient, sender model.PlayerID) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.done("accept", err) }()

	if !c.invites.Has(sender, recipient) {
		return ErrNoSuchInvite
	}
	if _, ok := c.playerParties[recipient]; ok {
		return ErrAlreadyInParty
	}

	inv, err := c.invites.Take(sender, recipient)
	if errors.Is(err, ErrStaleInvite) {
		c.out.Deliver(recipient, model.PartyDisbanded{})
		return nil
	}
	if err != nil {
		return err
	}

	party := c.playerParties[sender]
	if party == nil || party.ID() != inv.PartyID {
		c.out.Deliver(recipient, model.PartyDisbanded{})
		return nil
	}

	if err := party.AddMember(recipient); err != nil {
		return err
	}
	c.playerParties[recipient] = party

	c.removeDisbandedParties()
	return nil
}

// Kick removes target from owner's party. Kicking a non-member only refreshes
// the owner's view of the party.
func (c *Coordinator) Kick(owner, target model.PlayerID) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.done("kick", err) }()

	party := c.playerParties[owner]
	if party == nil {
		return ErrNotInParty
	}
	if party.Owner() != owner {
		return ErrNotOwner
	}

	if !party.Has(target) {
		party.SendTo(owner)
		return nil
	}

	party.RemoveMember(target)
	delete(c.playerParties, target)
	c.out.Deliver(target, model.KickedFromParty{})

	c.removeDisbandedParties()
	return nil
}

// Leave removes player from their party. The owner leaving disbands it.
func (c *Coordinator) Leave(player model.PlayerID) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.done("leave", err) }()

	return c.leave(player)
}

// Ready marks player ready.
func (c *Coordinator) Ready(player model.PlayerID) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.done("ready", err) }()

	return c.setReady(player, true)
}

// Unready clears player's ready flag.
func (c *Coordinator) Unready(player model.PlayerID) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.done("unready", err) }()

	return c.setReady(player, false)
}

// SetFactions replaces player's faction preferences.
func (c *Coordinator) SetFactions(player model.PlayerID, f model.Factions) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() { c.done("set_factions", err) }()

	party := c.playerParties[player]
	if party == nil {
		return ErrNotInParty
	}
	party.SetFactions(player, f)
	return nil
}

// OnDisconnect treats a disconnect as Leave for players in a party.
func (c *Coordinator) OnDisconnect(player model.PlayerID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.playerParties[player]; !ok {
		return
	}
	c.done("disconnect", c.leave(player))
}

// SweepInvites drops expired invites and invites whose sender no longer owns
// the invited-to party.
func (c *Coordinator) SweepInvites() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.invites.Sweep(c.isCurrent)
	c.metrics.setState(len(c.parties), c.invites.Len())
	return n
}

// PartyOf returns the snapshot of player's party.
func (c *Coordinator) PartyOf(player model.PlayerID) (model.UpdateParty, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	party := c.playerParties[player]
	if party == nil {
		return model.UpdateParty{}, false
	}
	return party.Snapshot(), true
}

// Parties returns every live party ordered by ID.
func (c *Coordinator) Parties() []Info {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Info, 0, len(c.parties))
	for _, p := range c.parties {
		out = append(out, Info{ID: p.ID(), Size: p.MemberCount(), Ready: p.IsReady(), State: p.Snapshot()})
	}
	slices.SortFunc(out, func(a, b Info) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// PartyCount returns the number of live parties.
func (c *Coordinator) PartyCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.parties)
}

// InviteCount returns the number of live pending invites.
func (c *Coordinator) InviteCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invites.Len()
}

func (c *Coordinator) createParty(owner model.PlayerID) *model.Party {
	id := c.nextID.Add(1)
	party := model.NewParty(id, owner, c.out)
	c.parties[id] = party
	c.playerParties[owner] = party
	return party
}

func (c *Coordinator) leave(player model.PlayerID) error {
	party := c.playerParties[player]
	if party == nil {
		return ErrNotInParty
	}

	party.RemoveMember(player)
	delete(c.playerParties, player)

	c.removeDisbandedParties()
	return nil
}

func (c *Coordinator) setReady(player model.PlayerID, ready bool) error {
	party := c.playerParties[player]
	if party == nil {
		return ErrNotInParty
	}

	m := party.Member(player)
	if m == nil || m.Ready() == ready {
		party.SendTo(player)
		return nil
	}

	party.SetReady(player, ready)
	if ready && party.IsReady() && c.onReady != nil {
		c.onReady(party.ID(), party.Snapshot())
	}
	return nil
}

// removeDisbandedParties drops every party whose owner is gone: index entries,
// invites, then the party itself. Owners never change, so one pass suffices.
func (c *Coordinator) removeDisbandedParties() {
	for _, party := range c.parties {
		if party.IsDisbanded() {
			c.removeParty(party)
		}
	}
	c.invites.Sweep(c.isCurrent)
}

func (c *Coordinator) removeParty(party *model.Party) {
	for player, p := range c.playerParties {
		if p == party {
			delete(c.playerParties, player)
		}
	}
	c.invites.RemoveAllForParty(party.ID())
	delete(c.parties, party.ID())

	party.Disband()
	c.metrics.partyDisbanded()
}

// isCurrent reports whether the invite's sender still sits in the invited-to party.
func (c *Coordinator) isCurrent(inv GroupInvite) bool {
	party := c.playerParties[inv.Sender]
	return party != nil && party.ID() == inv.PartyID
}

func (c *Coordinator) done(op string, err error) {
	c.metrics.observe(op, err)
	c.metrics.setState(len(c.parties), c.invites.Len())
}
