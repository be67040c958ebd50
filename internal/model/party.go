package model

import (
	"errors"
)

// ErrAlreadyMember is returned by AddMember when the player is already in the party.
var ErrAlreadyMember = errors.New("player already in party")

// Party represents a group of players queueing together.
// The owner is fixed for the party's lifetime; the party is disbanded once
// the owner is no longer a member.
//
// Not safe for concurrent use: the party coordinator serializes every call.
type Party struct {
	id      int64
	owner   PlayerID
	members []*PartyMember // insertion order, owner first
	out     Delivery
}

// NewParty creates a party with the given owner as its only member.
// Creation does not notify anyone.
func NewParty(id int64, owner PlayerID, out Delivery) *Party {
	p := &Party{
		id:      id,
		owner:   owner,
		members: make([]*PartyMember, 0, 4),
		out:     out,
	}
	p.members = append(p.members, NewPartyMember(owner))
	return p
}

// ID returns the party identity. IDs are never reused within a process.
func (p *Party) ID() int64 {
	return p.id
}

// Owner returns the founding player.
func (p *Party) Owner() PlayerID {
	return p.owner
}

// MemberCount returns the number of members.
func (p *Party) MemberCount() int {
	return len(p.members)
}

// Members returns member identities in insertion order.
func (p *Party) Members() []PlayerID {
	ids := make([]PlayerID, len(p.members))
	for i, m := range p.members {
		ids[i] = m.id
	}
	return ids
}

// Has reports whether id is a member.
func (p *Party) Has(id PlayerID) bool {
	return p.indexOf(id) >= 0
}

// Member returns the member record for id, or nil.
func (p *Party) Member(id PlayerID) *PartyMember {
	if i := p.indexOf(id); i >= 0 {
		return p.members[i]
	}
	return nil
}

// IsReady reports whether every member is ready. An empty party is never ready.
func (p *Party) IsReady() bool {
	if len(p.members) == 0 {
		return false
	}
	for _, m := range p.members {
		if !m.ready {
			return false
		}
	}
	return true
}

// IsDisbanded reports whether the owner has left.
func (p *Party) IsDisbanded() bool {
	return !p.Has(p.owner)
}

// AddMember appends a not-ready member and broadcasts the new snapshot to
// every member, the new one included.
func (p *Party) AddMember(id PlayerID) error {
	if p.Has(id) {
		return ErrAlreadyMember
	}
	p.members = append(p.members, NewPartyMember(id))

	p.Broadcast()
	return nil
}

// RemoveMember removes id, broadcasts to the remaining members and sends the
// same snapshot to the removed player so their client can clear its party view.
// Removing a non-member does nothing.
func (p *Party) RemoveMember(id PlayerID) {
	i := p.indexOf(id)
	if i < 0 {
		return
	}
	p.members = append(p.members[:i], p.members[i+1:]...)

	p.Broadcast()
	p.SendTo(id)
}

// SetReady sets id's ready flag and broadcasts. Non-members are ignored.
func (p *Party) SetReady(id PlayerID, ready bool) {
	m := p.Member(id)
	if m == nil {
		return
	}
	m.SetReady(ready)

	p.Broadcast()
}

// SetFactions sets id's faction preferences and broadcasts. Non-members are ignored.
func (p *Party) SetFactions(id PlayerID, f Factions) {
	m := p.Member(id)
	if m == nil {
		return
	}
	m.SetFactions(f)

	p.Broadcast()
}

// Snapshot returns the current party state.
func (p *Party) Snapshot() UpdateParty {
	u := UpdateParty{
		Owner:        p.owner,
		Members:      make([]MemberState, 0, len(p.members)),
		MembersReady: make([]PlayerID, 0, len(p.members)),
	}
	for _, m := range p.members {
		u.Members = append(u.Members, m.State())
		if m.ready {
			u.MembersReady = append(u.MembersReady, m.id)
		}
	}
	return u
}

// Broadcast sends the snapshot to every current member.
func (p *Party) Broadcast() {
	snap := p.Snapshot()
	for _, m := range p.members {
		p.out.Deliver(m.id, snap)
	}
}

// SendTo sends the snapshot to a single player, member or not.
func (p *Party) SendTo(id PlayerID) {
	p.out.Deliver(id, p.Snapshot())
}

// Disband clears the membership and sends the empty snapshot to every former
// member. Disbanding an empty party sends nothing.
func (p *Party) Disband() {
	former := p.members
	p.members = make([]*PartyMember, 0)

	snap := p.Snapshot()
	for _, m := range former {
		p.out.Deliver(m.id, snap)
	}
}

func (p *Party) indexOf(id PlayerID) int {
	for i, m := range p.members {
		if m.id == id {
			return i
		}
	}
	return -1
}
