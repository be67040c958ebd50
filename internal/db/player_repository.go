package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/partylobby/internal/model"
)

// PlayerRepository records which players have logged into the lobby.
type PlayerRepository struct {
	db *pgxpool.Pool
}

// NewPlayerRepository creates a new PlayerRepository.
func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Touch inserts the player on first login and refreshes name and last_seen afterwards.
func (r *PlayerRepository) Touch(ctx context.Context, id model.PlayerID, name string) error {
	query := `
		INSERT INTO players (player_id, name, first_seen, last_seen)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (player_id) DO UPDATE SET name = EXCLUDED.name, last_seen = now()
	`
	if _, err := r.db.Exec(ctx, query, int32(id), name); err != nil {
		return fmt.Errorf("touching player %d: %w", id, err)
	}
	return nil
}

// Get returns the stored account. Returns nil, nil if the player never logged in.
func (r *PlayerRepository) Get(ctx context.Context, id model.PlayerID) (*model.Account, error) {
	var (
		acc   model.Account
		rawID int32
	)
	err := r.db.QueryRow(ctx,
		`SELECT player_id, name, first_seen, last_seen FROM players WHERE player_id = $1`,
		int32(id),
	).Scan(&rawID, &acc.Name, &acc.FirstSeen, &acc.LastSeen)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying player %d: %w", id, err)
	}
	acc.ID = model.PlayerID(rawID)
	return &acc, nil
}
