// Package admin serves the operator HTTP endpoints: health, party listing and
// Prometheus metrics.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/udisondev/partylobby/internal/game/party"
	"github.com/udisondev/partylobby/internal/lobby"
	"github.com/udisondev/partylobby/internal/model"
)

const shutdownTimeout = 5 * time.Second

// Parties is the read side of the party coordinator.
type Parties interface {
	Parties() []party.Info
	PartyOf(player model.PlayerID) (model.UpdateParty, bool)
	InviteCount() int
}

// Pinger checks a backing dependency. Implemented by db.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OnlinePlayers is the read side of the lobby client registry.
type OnlinePlayers interface {
	Count() int
	Online(id model.PlayerID) bool
	Players() []lobby.OnlinePlayer
}

// BlockLists exposes cached block lists of online players.
type BlockLists interface {
	Blocked(owner model.PlayerID) []model.PlayerID
}

// Accounts looks up persisted players. Implemented by db.PlayerRepository.
type Accounts interface {
	Get(ctx context.Context, id model.PlayerID) (*model.Account, error)
}

// Deps are the collaborators the admin endpoints read from.
// Accounts and DB may be nil when the lobby runs without persistence.
type Deps struct {
	Parties  Parties
	Online   OnlinePlayers
	Blocks   BlockLists
	Accounts Accounts
	DB       Pinger
	Gatherer prometheus.Gatherer
}

// Server is the admin HTTP server.
type Server struct {
	router   *mux.Router
	parties  Parties
	online   OnlinePlayers
	blocks   BlockLists
	accounts Accounts
	db       Pinger
}

// NewServer builds the admin router.
func NewServer(d Deps) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		parties:  d.Parties,
		online:   d.Online,
		blocks:   d.Blocks,
		accounts: d.Accounts,
		db:       d.DB,
	}

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	s.router.HandleFunc("/parties", s.handleParties).Methods(http.MethodGet)
	s.router.HandleFunc("/parties/player/{playerId:[0-9]+}", s.handlePlayerParty).Methods(http.MethodGet)

	s.router.HandleFunc("/players", s.handlePlayers).Methods(http.MethodGet)
	s.router.HandleFunc("/players/{playerId:[0-9]+}", s.handlePlayer).Methods(http.MethodGet)
	s.router.HandleFunc("/players/{playerId:[0-9]+}/blocks", s.handlePlayerBlocks).Methods(http.MethodGet)

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("admin server shutdown", "error", err)
		}
	}()

	slog.Info("admin server started", "address", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving admin http: %w", err)
	}
	slog.Info("admin server stopped")
	return nil
}

type healthResponse struct {
	Status   string `json:"status"`
	Online   int    `json:"online"`
	Invites  int    `json:"pending_invites"`
	Database string `json:"database,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Online:  s.online.Count(),
		Invites: s.parties.InviteCount(),
	}
	code := http.StatusOK

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			slog.Warn("health check: database unreachable", "error", err)
			resp.Status = "degraded"
			resp.Database = "unreachable"
			code = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}

	writeJSON(w, code, resp)
}

func (s *Server) handleParties(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.parties.Parties())
}

func (s *Server) handlePlayerParty(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}

	snap, ok := s.parties.PartyOf(id)
	if !ok {
		http.Error(w, "player is not in a party", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// playerID parses the {playerId} route variable, answering 400 on overflow.
func playerID(w http.ResponseWriter, r *http.Request) (model.PlayerID, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["playerId"], 10, 32)
	if err != nil {
		http.Error(w, "invalid player id", http.StatusBadRequest)
		return 0, false
	}
	return model.PlayerID(id), true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing admin response", "error", err)
	}
}
