package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vntrieu/avalon-engine/internal/games"
)

var (
	// ErrNotFound is returned when a game, player or message does not exist.
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict is returned by SaveGame when the stored snapshot moved
	// on since it was read.
	ErrVersionConflict = errors.New("game version conflict")
)

// Game is a stored game snapshot with its optimistic-lock version.
type Game struct {
	State     *games.GameState
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GameStore persists game snapshots, their action log and chat in Postgres.
// The whole GameState is kept as one JSONB document; the status, timeout and
// membership columns only exist for listing queries.
type GameStore struct {
	pool *pgxpool.Pool
}

// NewGameStore creates a new GameStore.
func NewGameStore(pool *pgxpool.Pool) *GameStore {
	return &GameStore{pool: pool}
}

// CreateGame inserts state as version 1.
func (s *GameStore) CreateGame(ctx context.Context, state *games.GameState) error {
	id, err := stringToUUID(state.ID)
	if err != nil {
		return fmt.Errorf("invalid game id: %w", err)
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO games (id, status, game_master, version, state_json, timeout_at)
		VALUES ($1, $2, $3, 1, $4, $5)`,
		id, string(state.Status), state.GameMaster, data, timeToTimestamptz(state.TimeoutTime))
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	if err := syncPlayers(ctx, tx, id, state); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetGame loads the latest snapshot of a game.
func (s *GameStore) GetGame(ctx context.Context, gameID string) (*Game, error) {
	id, err := stringToUUID(gameID)
	if err != nil {
		return nil, ErrNotFound
	}
	row := s.pool.QueryRow(ctx, `
		SELECT state_json, version, created_at, updated_at
		FROM games WHERE id = $1`, id)
	game, err := scanGame(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get game %s: %w", gameID, err)
	}
	return game, nil
}

// SaveGame replaces the snapshot if it is still at expectedVersion and returns
// the new version.
func (s *GameStore) SaveGame(ctx context.Context, state *games.GameState, expectedVersion int64) (int64, error) {
	id, err := stringToUUID(state.ID)
	if err != nil {
		return 0, fmt.Errorf("invalid game id: %w", err)
	}
	data, err := json.Marshal(state)
	if err != nil {
		return 0, fmt.Errorf("marshal state: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var version int64
	err = tx.QueryRow(ctx, `
		UPDATE games
		SET status = $2, state_json = $3, timeout_at = $4, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $5
		RETURNING version`,
		id, string(state.Status), data, timeToTimestamptz(state.TimeoutTime), expectedVersion,
	).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrVersionConflict
	}
	if err != nil {
		return 0, fmt.Errorf("update game: %w", err)
	}
	if err := syncPlayers(ctx, tx, id, state); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return version, nil
}

// ListOpenGames returns games still waiting for players, newest first.
func (s *GameStore) ListOpenGames(ctx context.Context) ([]*games.GameState, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT state_json FROM games
		WHERE status = $1
		ORDER BY created_at DESC`, string(games.StatusWaiting))
	if err != nil {
		return nil, fmt.Errorf("list open games: %w", err)
	}
	return collectStates(rows)
}

// ListPlayerGames returns every game playerID has a seat in, newest first.
func (s *GameStore) ListPlayerGames(ctx context.Context, playerID string) ([]*games.GameState, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT g.state_json FROM games g
		JOIN game_players gp ON gp.game_id = g.id
		WHERE gp.player_id = $1
		ORDER BY g.created_at DESC`, playerID)
	if err != nil {
		return nil, fmt.Errorf("list games for player %s: %w", playerID, err)
	}
	return collectStates(rows)
}

// ListExpiredGames returns the ids of unfinished games whose Clock deadline is
// at or before now.
func (s *GameStore) ListExpiredGames(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id FROM games
		WHERE timeout_at IS NOT NULL AND timeout_at <= $1 AND status <> $2
		ORDER BY timeout_at`, now, string(games.StatusFinished))
	if err != nil {
		return nil, fmt.Errorf("list expired games: %w", err)
	}
	ids, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (string, error) {
		var id pgtype.UUID
		err := row.Scan(&id)
		return uuidToString(id), err
	})
	if err != nil {
		return nil, fmt.Errorf("scan expired games: %w", err)
	}
	return ids, nil
}

// syncPlayers makes game_players match the seats in state.
func syncPlayers(ctx context.Context, tx pgx.Tx, id pgtype.UUID, state *games.GameState) error {
	ids := make([]string, 0, len(state.Players))
	for _, p := range state.Players {
		ids = append(ids, p.ID)
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM game_players
		WHERE game_id = $1 AND NOT (player_id = ANY($2))`, id, ids); err != nil {
		return fmt.Errorf("remove departed players: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO game_players (game_id, player_id)
		SELECT $1, unnest($2::text[])
		ON CONFLICT DO NOTHING`, id, ids); err != nil {
		return fmt.Errorf("insert game players: %w", err)
	}
	return nil
}

func scanGame(row pgx.Row) (*Game, error) {
	var (
		data      []byte
		game      Game
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&data, &game.Version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var state games.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	game.State = &state
	game.CreatedAt = timestamptzToTime(createdAt)
	game.UpdatedAt = timestamptzToTime(updatedAt)
	return &game, nil
}

func collectStates(rows pgx.Rows) ([]*games.GameState, error) {
	states, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*games.GameState, error) {
		var data []byte
		if err := row.Scan(&data); err != nil {
			return nil, err
		}
		var state games.GameState
		if err := json.Unmarshal(data, &state); err != nil {
			return nil, fmt.Errorf("unmarshal state: %w", err)
		}
		return &state, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan games: %w", err)
	}
	return states, nil
}
