package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Player is a registered seat-holder. Its ID is the player id used inside
// games.
type Player struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PlayerStore handles database operations for players.
type PlayerStore struct {
	pool *pgxpool.Pool
}

// NewPlayerStore creates a new PlayerStore.
func NewPlayerStore(pool *pgxpool.Pool) *PlayerStore {
	return &PlayerStore{pool: pool}
}

// CreatePlayer registers a new player under displayName.
func (s *PlayerStore) CreatePlayer(ctx context.Context, displayName string) (*Player, error) {
	id := uuid.New()
	var createdAt pgtype.Timestamptz
	err := s.pool.QueryRow(ctx, `
		INSERT INTO players (id, display_name) VALUES ($1, $2)
		RETURNING created_at`,
		pgtype.UUID{Bytes: id, Valid: true}, displayName).Scan(&createdAt)
	if err != nil {
		return nil, fmt.Errorf("insert player: %w", err)
	}
	return &Player{
		ID:          id.String(),
		DisplayName: displayName,
		CreatedAt:   timestamptzToTime(createdAt),
	}, nil
}

// GetPlayer looks a player up by id.
func (s *PlayerStore) GetPlayer(ctx context.Context, playerID string) (*Player, error) {
	id, err := stringToUUID(playerID)
	if err != nil {
		return nil, ErrNotFound
	}
	var (
		p         = Player{ID: playerID}
		createdAt pgtype.Timestamptz
	)
	err = s.pool.QueryRow(ctx, `
		SELECT display_name, created_at FROM players WHERE id = $1`, id,
	).Scan(&p.DisplayName, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	p.CreatedAt = timestamptzToTime(createdAt)
	return &p, nil
}
