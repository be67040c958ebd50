package admin

import (
	"log/slog"
	"net/http"

	"github.com/udisondev/partylobby/internal/model"
)

type playerResponse struct {
	ID      model.PlayerID     `json:"id"`
	Online  bool               `json:"online"`
	Account *model.Account     `json:"account,omitempty"`
	Party   *model.UpdateParty `json:"party,omitempty"`
}

type blocksResponse struct {
	ID      model.PlayerID   `json:"id"`
	Blocked []model.PlayerID `json:"blocked"`
}

func (s *Server) handlePlayers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.online.Players())
}

// handlePlayer merges the stored account with live presence and party state.
// Unknown players (never logged in and not online) answer 404.
func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}

	resp := playerResponse{ID: id, Online: s.online.Online(id)}

	if s.accounts != nil {
		acc, err := s.accounts.Get(r.Context(), id)
		if err != nil {
			slog.Error("loading player account", "playerID", id, "error", err)
			http.Error(w, "player lookup failed", http.StatusInternalServerError)
			return
		}
		resp.Account = acc
	}

	if snap, inParty := s.parties.PartyOf(id); inParty {
		resp.Party = &snap
	}

	if !resp.Online && resp.Account == nil {
		http.Error(w, "player not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePlayerBlocks serves the cached block list; it only exists while the
// player is online.
func (s *Server) handlePlayerBlocks(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}
	if !s.online.Online(id) {
		http.Error(w, "player is not online", http.StatusNotFound)
		return
	}

	blocked := s.blocks.Blocked(id)
	if blocked == nil {
		blocked = []model.PlayerID{}
	}
	writeJSON(w, http.StatusOK, blocksResponse{ID: id, Blocked: blocked})
}
