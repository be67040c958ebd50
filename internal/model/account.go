package model

import "time"

// Account is the persisted record of a player that has logged into the lobby.
type Account struct {
	ID        PlayerID  `json:"id"`
	Name      string    `json:"name"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}
