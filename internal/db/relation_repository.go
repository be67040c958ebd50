package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/partylobby/internal/model"
)

// RelationRepository persists player block lists.
type RelationRepository struct {
	db *pgxpool.Pool
}

// NewRelationRepository creates a new RelationRepository.
func NewRelationRepository(db *pgxpool.Pool) *RelationRepository {
	return &RelationRepository{db: db}
}

// LoadBlocked loads every player that playerID has blocked.
func (r *RelationRepository) LoadBlocked(ctx context.Context, playerID model.PlayerID) ([]model.PlayerID, error) {
	query := `
		SELECT blocked_id
		FROM player_blocks
		WHERE player_id = $1
		ORDER BY blocked_id
	`

	rows, err := r.db.Query(ctx, query, int32(playerID))
	if err != nil {
		return nil, fmt.Errorf("querying blocks for player %d: %w", playerID, err)
	}
	defer rows.Close()

	result := make([]model.PlayerID, 0, 16)
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning block row: %w", err)
		}
		result = append(result, model.PlayerID(id))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating block rows: %w", err)
	}

	return result, nil
}

// InsertBlock adds a single block relation immediately.
func (r *RelationRepository) InsertBlock(ctx context.Context, playerID, blockedID model.PlayerID) error {
	query := `
		INSERT INTO player_blocks (player_id, blocked_id)
		VALUES ($1, $2)
		ON CONFLICT (player_id, blocked_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, int32(playerID), int32(blockedID)); err != nil {
		return fmt.Errorf("inserting block %d for player %d: %w", blockedID, playerID, err)
	}
	slog.Debug("player block stored", "playerID", playerID, "blockedID", blockedID)
	return nil
}

// DeleteBlock removes a single block relation immediately.
func (r *RelationRepository) DeleteBlock(ctx context.Context, playerID, blockedID model.PlayerID) error {
	query := `DELETE FROM player_blocks WHERE player_id = $1 AND blocked_id = $2`
	if _, err := r.db.Exec(ctx, query, int32(playerID), int32(blockedID)); err != nil {
		return fmt.Errorf("deleting block %d for player %d: %w", blockedID, playerID, err)
	}
	return nil
}
