package party

import (
	"time"

	"github.com/udisondev/partylobby/internal/model"
)

// DefaultInviteTimeout is how long a pending invite stays acceptable.
const DefaultInviteTimeout = 24 * time.Hour

// GroupInvite is a pending offer for Recipient to join Sender's party.
// PartyID is captured at invite time and may become stale.
type GroupInvite struct {
	Sender    model.PlayerID
	Recipient model.PlayerID
	PartyID   int64
	CreatedAt time.Time
}

type inviteKey struct {
	sender    model.PlayerID
	recipient model.PlayerID
}

// InvitePool tracks pending invites, at most one per (sender, recipient) pair.
//
// Invites whose party went away are moved out of the live set into a retired
// set until they time out, so a late accept can be answered with
// "party disbanded" instead of "not invited".
//
// Not safe for concurrent use; guarded by the Coordinator.
type InvitePool struct {
	live    map[inviteKey]GroupInvite
	retired map[inviteKey]GroupInvite
	timeout time.Duration
	now     func() time.Time
}

// NewInvitePool creates an empty pool whose invites expire after timeout.
// A non-positive timeout means DefaultInviteTimeout; a nil clock means time.Now.
func NewInvitePool(timeout time.Duration, now func() time.Time) *InvitePool {
	if timeout <= 0 {
		timeout = DefaultInviteTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &InvitePool{
		live:    make(map[inviteKey]GroupInvite),
		retired: make(map[inviteKey]GroupInvite),
		timeout: timeout,
		now:     now,
	}
}

func (p *InvitePool) expired(inv GroupInvite, now time.Time) bool {
	return now.Sub(inv.CreatedAt) >= p.timeout
}

// Add records an invite, replacing any previous one for the same pair.
func (p *InvitePool) Add(sender, recipient model.PlayerID, partyID int64) GroupInvite {
	inv := GroupInvite{
		Sender:    sender,
		Recipient: recipient,
		PartyID:   partyID,
		CreatedAt: p.now(),
	}
	k := inviteKey{sender, recipient}
	p.live[k] = inv
	delete(p.retired, k)
	return inv
}

// Get returns the live invite for the pair without consuming it.
func (p *InvitePool) Get(sender, recipient model.PlayerID) (GroupInvite, bool) {
	inv, ok := p.live[inviteKey{sender, recipient}]
	if !ok || p.expired(inv, p.now()) {
		return GroupInvite{}, false
	}
	return inv, true
}

// Has reports whether the pair has an unexpired invite, live or retired.
func (p *InvitePool) Has(sender, recipient model.PlayerID) bool {
	k := inviteKey{sender, recipient}
	now := p.now()
	if inv, ok := p.live[k]; ok && !p.expired(inv, now) {
		return true
	}
	if inv, ok := p.retired[k]; ok && !p.expired(inv, now) {
		return true
	}
	return false
}

// Take removes and returns the live invite for the pair.
// Returns ErrStaleInvite for a retired invite and ErrNoSuchInvite when the
// pair was never invited, already accepted, or the invite expired.
func (p *InvitePool) Take(sender, recipient model.PlayerID) (GroupInvite, error) {
	k := inviteKey{sender, recipient}
	now := p.now()

	if inv, ok := p.live[k]; ok {
		delete(p.live, k)
		if p.expired(inv, now) {
			return GroupInvite{}, ErrNoSuchInvite
		}
		return inv, nil
	}
	if inv, ok := p.retired[k]; ok {
		delete(p.retired, k)
		if p.expired(inv, now) {
			return GroupInvite{}, ErrNoSuchInvite
		}
		return inv, ErrStaleInvite
	}
	return GroupInvite{}, ErrNoSuchInvite
}

// Sweep drops every invite that reached the timeout and retires every live
// invite for which isCurrent returns false.
// Returns the number of live invites removed.
func (p *InvitePool) Sweep(isCurrent func(GroupInvite) bool) int {
	now := p.now()
	removed := 0
	for k, inv := range p.live {
		switch {
		case p.expired(inv, now):
			delete(p.live, k)
			removed++
		case !isCurrent(inv):
			delete(p.live, k)
			p.retired[k] = inv
			removed++
		}
	}
	for k, inv := range p.retired {
		if p.expired(inv, now) {
			delete(p.retired, k)
		}
	}
	return removed
}

// RemoveAllForParty retires every live invite referencing partyID.
func (p *InvitePool) RemoveAllForParty(partyID int64) int {
	removed := 0
	for k, inv := range p.live {
		if inv.PartyID == partyID {
			delete(p.live, k)
			p.retired[k] = inv
			removed++
		}
	}
	return removed
}

// Len returns the number of live invites.
func (p *InvitePool) Len() int {
	return len(p.live)
}
