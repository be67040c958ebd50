// Package clientpackets parses packets sent by lobby clients.
// Parse functions receive the body with the opcode already stripped.
package clientpackets

// Client packet opcodes.
const (
	OpcodeRequestLogin        = 0x01
	OpcodeInviteToParty       = 0x10
	OpcodeAcceptPartyInvite   = 0x11
	OpcodeKickPlayerFromParty = 0x12
	OpcodeLeaveParty          = 0x13 // no body
	OpcodeReadyParty          = 0x14 // no body
	OpcodeUnreadyParty        = 0x15 // no body
	OpcodeSetPartyFactions    = 0x16
	OpcodeBlockPlayer         = 0x20
	OpcodeUnblockPlayer       = 0x21
)
