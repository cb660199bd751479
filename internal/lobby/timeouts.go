package lobby

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vntrieu/avalon-engine/internal/games"
	"github.com/vntrieu/avalon-engine/internal/store"
)

// ExpireTimeouts resolves every game whose Clock deadline has passed and
// returns how many were advanced. A game that moved on since it was listed is
// skipped; the next sweep sees its new deadline.
func (m *Manager) ExpireTimeouts(ctx context.Context) (int, error) {
	ids, err := m.store.ListExpiredGames(ctx, m.now())
	if err != nil {
		return 0, err
	}

	advanced := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return advanced, ctx.Err()
		}
		if m.expire(ctx, id) {
			advanced++
		}
	}
	return advanced, nil
}

func (m *Manager) expire(ctx context.Context, gameID string) bool {
	unlock := m.lock(gameID)
	defer unlock()

	_, err := m.apply(ctx, gameID, "", games.TimeoutAction{})
	switch {
	case err == nil:
		log.Debug().Str("game", gameID).Msg("timer expired")
		return true
	case games.IsClientError(err), errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrVersionConflict):
		return false
	default:
		log.Error().Err(err).Str("game", gameID).Msg("failed to expire timer")
		return false
	}
}

// RunTimeouts sweeps for expired timers every interval until ctx is done.
func (m *Manager) RunTimeouts(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.ExpireTimeouts(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("timeout sweep failed")
			}
		}
	}
}
