package model

// Command names of outbound lobby events.
const (
	CommandPartyInvite     = "party_invite"
	CommandUpdateParty     = "update_party"
	CommandPartyDisbanded  = "party_disbanded"
	CommandKickedFromParty = "kicked_from_party"
	CommandNotice          = "notice"
)

// NoticeStyleError marks a notice that reports a failed command.
const NoticeStyleError = "error"

// Event is a one-way message pushed to a single player.
type Event interface {
	Command() string
}

// Delivery pushes events to connected players.
// Implementations must not block and must not call back into the party layer.
// Delivery failures are the connection layer's concern.
type Delivery interface {
	Deliver(to PlayerID, ev Event)
}

// DeliveryFunc adapts a function to Delivery.
type DeliveryFunc func(to PlayerID, ev Event)

// Deliver calls f(to, ev).
func (f DeliveryFunc) Deliver(to PlayerID, ev Event) {
	f(to, ev)
}

// PartyInvite tells the recipient that Sender invited them.
type PartyInvite struct {
	Sender PlayerID `json:"sender"`
}

func (PartyInvite) Command() string { return CommandPartyInvite }

// UpdateParty is a full snapshot of a party.
type UpdateParty struct {
	Owner        PlayerID      `json:"owner"`
	Members      []MemberState `json:"members"`
	MembersReady []PlayerID    `json:"members_ready"`
}

func (UpdateParty) Command() string { return CommandUpdateParty }

// HasMember reports whether id appears in the snapshot.
func (u UpdateParty) HasMember(id PlayerID) bool {
	for _, m := range u.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// MemberIDs returns member identities in snapshot order.
func (u UpdateParty) MemberIDs() []PlayerID {
	ids := make([]PlayerID, 0, len(u.Members))
	for _, m := range u.Members {
		ids = append(ids, m.ID)
	}
	return ids
}

// PartyDisbanded tells a player that the party they tried to join no longer exists.
type PartyDisbanded struct{}

func (PartyDisbanded) Command() string { return CommandPartyDisbanded }

// KickedFromParty tells a player they were removed by the party owner.
type KickedFromParty struct{}

func (KickedFromParty) Command() string { return CommandKickedFromParty }

// Notice is a human-readable message, usually reporting a rejected command.
type Notice struct {
	Style string `json:"style"`
	Text  string `json:"text"`
}

func (Notice) Command() string { return CommandNotice }

// NewErrorNotice builds an error notice carrying err's text.
func NewErrorNotice(err error) Notice {
	return Notice{Style: NoticeStyleError, Text: err.Error()}
}
