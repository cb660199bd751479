package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// DefaultChatHistory is how many messages ListChat returns when limit <= 0.
const DefaultChatHistory = 250

// ChatMessage is one line of in-game chat.
type ChatMessage struct {
	ID      string    `json:"id"`
	GameID  string    `json:"gameId"`
	UserID  string    `json:"userId"`
	Content string    `json:"content"`
	Sent    time.Time `json:"sent"`
}

// AddChat stores a chat message and returns it with its id and timestamp.
func (s *GameStore) AddChat(ctx context.Context, gameID, playerID, content string) (*ChatMessage, error) {
	gameUUID, err := stringToUUID(gameID)
	if err != nil {
		return nil, ErrNotFound
	}
	msg := &ChatMessage{
		ID:      uuid.NewString(),
		GameID:  gameID,
		UserID:  playerID,
		Content: content,
	}
	msgUUID, _ := stringToUUID(msg.ID)

	var sent pgtype.Timestamptz
	err = s.pool.QueryRow(ctx, `
		INSERT INTO chat_messages (id, game_id, player_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING sent_at`,
		msgUUID, gameUUID, playerID, content).Scan(&sent)
	if err != nil {
		return nil, fmt.Errorf("insert chat message: %w", err)
	}
	msg.Sent = timestamptzToTime(sent)
	return msg, nil
}

// ListChat returns the newest limit messages of a game, newest first.
func (s *GameStore) ListChat(ctx context.Context, gameID string, limit int) ([]ChatMessage, error) {
	gameUUID, err := stringToUUID(gameID)
	if err != nil {
		return nil, ErrNotFound
	}
	if limit <= 0 {
		limit = DefaultChatHistory
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, player_id, content, sent_at
		FROM chat_messages WHERE game_id = $1
		ORDER BY sent_at DESC
		LIMIT $2`, gameUUID, limit)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	msgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ChatMessage, error) {
		var (
			msg  ChatMessage
			id   pgtype.UUID
			sent pgtype.Timestamptz
		)
		err := row.Scan(&id, &msg.UserID, &msg.Content, &sent)
		msg.ID = uuidToString(id)
		msg.GameID = gameID
		msg.Sent = timestamptzToTime(sent)
		return msg, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan chat messages: %w", err)
	}
	return msgs, nil
}
