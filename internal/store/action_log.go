package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ActionRecord is one accepted action in a game's history. Version is the
// snapshot version the action produced.
type ActionRecord struct {
	ID        int64           `json:"id"`
	GameID    string          `json:"gameId"`
	ActorID   string          `json:"actorId"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"createdAt"`
}

// AppendAction records an accepted action.
func (s *GameStore) AppendAction(ctx context.Context, rec ActionRecord) error {
	gameUUID, err := stringToUUID(rec.GameID)
	if err != nil {
		return fmt.Errorf("invalid game id: %w", err)
	}
	payload := []byte(rec.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO game_actions (game_id, actor_id, kind, payload_json, version)
		VALUES ($1, $2, $3, $4, $5)`,
		gameUUID, rec.ActorID, rec.Kind, payload, rec.Version)
	if err != nil {
		return fmt.Errorf("insert game action: %w", err)
	}
	return nil
}

// ListActions returns a game's action log in the order it was applied.
func (s *GameStore) ListActions(ctx context.Context, gameID string) ([]ActionRecord, error) {
	gameUUID, err := stringToUUID(gameID)
	if err != nil {
		return nil, ErrNotFound
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, game_id, actor_id, kind, payload_json, version, created_at
		FROM game_actions WHERE game_id = $1
		ORDER BY id`, gameUUID)
	if err != nil {
		return nil, fmt.Errorf("list game actions: %w", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ActionRecord, error) {
		var (
			rec       ActionRecord
			game      pgtype.UUID
			payload   []byte
			createdAt pgtype.Timestamptz
		)
		err := row.Scan(&rec.ID, &game, &rec.ActorID, &rec.Kind, &payload, &rec.Version, &createdAt)
		rec.GameID = uuidToString(game)
		rec.Payload = payload
		rec.CreatedAt = timestamptzToTime(createdAt)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan game actions: %w", err)
	}
	return records, nil
}
