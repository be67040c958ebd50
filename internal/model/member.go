package model

// FactionCount is the number of playable factions a member can mark as preferred.
const FactionCount = 4

// PlayerID is the stable identity of a lobby player.
// Used as the key of every party, invite and relation collection.
type PlayerID int32

// Factions holds one preference flag per faction slot.
type Factions [FactionCount]bool

// MemberState is the serialized form of a PartyMember as sent to clients.
type MemberState struct {
	ID       PlayerID `json:"id"`
	Ready    bool     `json:"ready"`
	Factions Factions `json:"factions"`
}

// PartyMember is a player's membership record inside a party.
type PartyMember struct {
	id       PlayerID
	ready    bool
	factions Factions
}

// NewPartyMember creates a member that is not ready and has no faction preference.
func NewPartyMember(id PlayerID) *PartyMember {
	return &PartyMember{id: id}
}

// ID returns the member's player identity.
func (m *PartyMember) ID() PlayerID {
	return m.id
}

// Ready reports whether the member is ready to queue.
func (m *PartyMember) Ready() bool {
	return m.ready
}

// SetReady sets the ready flag.
func (m *PartyMember) SetReady(ready bool) {
	m.ready = ready
}

// Factions returns a copy of the faction preferences.
func (m *PartyMember) Factions() Factions {
	return m.factions
}

// SetFactions replaces the faction preferences.
func (m *PartyMember) SetFactions(f Factions) {
	m.factions = f
}

// State returns the serialized member.
func (m *PartyMember) State() MemberState {
	return MemberState{
		ID:       m.id,
		Ready:    m.ready,
		Factions: m.factions,
	}
}
