package lobby

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/crypto/bcrypt"

	"github.com/vntrieu/avalon-engine/internal/games"
	"github.com/vntrieu/avalon-engine/internal/store"
)

// MaxChatLength is the longest chat message accepted, in characters.
const MaxChatLength = 1000

var (
	// ErrNotInGame is returned when a non-member uses a members-only operation.
	ErrNotInGame = errors.New("you are not a player in this game")
	// ErrIncorrectPassword is returned by JoinGame on a password mismatch.
	ErrIncorrectPassword = errors.New("incorrect password")
	// ErrEmptyMessage is returned for blank chat messages.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrMessageTooLong is returned for chat messages over MaxChatLength.
	ErrMessageTooLong = fmt.Errorf("message is longer than %d characters", MaxChatLength)
	// ErrGameInProgress is returned when the action history of an unfinished
	// game is requested.
	ErrGameInProgress = errors.New("history is only available once the game has finished")
)

// Store is the persistence the Manager needs. *store.GameStore implements it.
type Store interface {
	CreateGame(ctx context.Context, state *games.GameState) error
	GetGame(ctx context.Context, gameID string) (*store.Game, error)
	SaveGame(ctx context.Context, state *games.GameState, expectedVersion int64) (int64, error)
	ListOpenGames(ctx context.Context) ([]*games.GameState, error)
	ListPlayerGames(ctx context.Context, playerID string) ([]*games.GameState, error)
	ListExpiredGames(ctx context.Context, now time.Time) ([]string, error)
	AppendAction(ctx context.Context, rec store.ActionRecord) error
	ListActions(ctx context.Context, gameID string) ([]store.ActionRecord, error)
	AddChat(ctx context.Context, gameID, playerID, content string) (*store.ChatMessage, error)
	ListChat(ctx context.Context, gameID string, limit int) ([]store.ChatMessage, error)
}

// Publisher fans game updates out to connected players.
type Publisher interface {
	PublishState(state *games.GameState)
	PublishChat(gameID string, msg store.ChatMessage)
}

type noopPublisher struct{}

func (noopPublisher) PublishState(*games.GameState)          {}
func (noopPublisher) PublishChat(string, store.ChatMessage) {}

// Manager runs games on top of the engine. It is the single writer for each
// game: every change to a game happens under that game's lock, is persisted,
// then published.
type Manager struct {
	store Store
	pub   Publisher
	rng   games.Rand
	now   func() time.Time

	locksMu deadlock.Mutex
	locks   map[string]*gameLock
}

// gameLock serializes writers of one game. refs counts holders and waiters;
// the entry is dropped when it reaches zero.
type gameLock struct {
	mu   deadlock.Mutex
	refs int
}

// Option configures a Manager.
type Option func(*Manager)

// WithPublisher sets where state and chat updates are sent.
func WithPublisher(p Publisher) Option {
	return func(m *Manager) { m.pub = p }
}

// WithRand replaces the engine's randomness, mostly for tests.
func WithRand(r games.Rand) Option {
	return func(m *Manager) { m.rng = &lockedRand{r: r} }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager returns a Manager backed by s.
func NewManager(s Store, opts ...Option) *Manager {
	m := &Manager{
		store: s,
		pub:   noopPublisher{},
		rng:   games.DefaultRand,
		now:   time.Now,
		locks: make(map[string]*gameLock),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetPublisher sets the publisher after construction. Call it before serving.
func (m *Manager) SetPublisher(p Publisher) {
	m.pub = p
}

func (m *Manager) lock(gameID string) func() {
	m.locksMu.Lock()
	l, ok := m.locks[gameID]
	if !ok {
		l = &gameLock{}
		m.locks[gameID] = l
	}
	l.refs++
	m.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		m.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, gameID)
		}
		m.locksMu.Unlock()
	}
}

// lockCount is the number of games with a live lock entry.
func (m *Manager) lockCount() int {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	return len(m.locks)
}

// CreateGame opens a new waiting game with gm seated as game master.
func (m *Manager) CreateGame(ctx context.Context, gm games.Player, ruleset []games.Rule, maxPlayers int, password string) (*games.GameState, error) {
	if err := games.ValidateRuleset(ruleset, maxPlayers); err != nil {
		return nil, &games.ProcessError{
			Kind:   games.ErrorKindClient,
			Reason: fmt.Sprintf("Invalid ruleset for %d players: %v", maxPlayers, err),
		}
	}

	var hash string
	if password != "" {
		b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = string(b)
	}

	state := games.NewGame(uuid.NewString(), gm.ID, ruleset, maxPlayers, hash)
	games.InsertPlayer(state, gm)
	if state.HasRule(games.RuleClock) {
		deadline := m.now().Add(games.StartTimeout)
		state.TimeoutTime = &deadline
	}

	if err := m.store.CreateGame(ctx, state); err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	log.Info().
		Str("game", state.ID).
		Str("game_master", gm.ID).
		Int("max_players", maxPlayers).
		Strs("ruleset", rulesToStrings(ruleset)).
		Msg("game created")

	m.pub.PublishState(state)
	return state, nil
}

// JoinGame seats player in a waiting game.
func (m *Manager) JoinGame(ctx context.Context, gameID string, player games.Player, password string) (*games.GameState, error) {
	unlock := m.lock(gameID)
	defer unlock()

	game, err := m.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	state := game.State.Clone()
	if err := games.CanJoin(state, player.ID); err != nil {
		return nil, err
	}
	if state.Password != "" {
		if bcrypt.CompareHashAndPassword([]byte(state.Password), []byte(password)) != nil {
			return nil, ErrIncorrectPassword
		}
	}

	games.InsertPlayer(state, player)
	version, err := m.store.SaveGame(ctx, state, game.Version)
	if err != nil {
		return nil, fmt.Errorf("save game %s: %w", gameID, err)
	}
	m.record(ctx, gameID, player.ID, "join", []byte(`{}`), version)

	log.Debug().Str("game", gameID).Str("player", player.ID).Msg("player joined")
	m.pub.PublishState(state)
	return state, nil
}

// Act applies action by actorID to a game and returns the new state.
func (m *Manager) Act(ctx context.Context, gameID, actorID string, action games.Action) (*games.GameState, error) {
	if _, ok := action.(games.TimeoutAction); ok {
		return nil, &games.ProcessError{Kind: games.ErrorKindClient, Reason: "timeout is not a player action"}
	}
	unlock := m.lock(gameID)
	defer unlock()
	return m.apply(ctx, gameID, actorID, action)
}

// apply runs one action through the engine; the caller holds the game lock.
func (m *Manager) apply(ctx context.Context, gameID, actorID string, action games.Action) (*games.GameState, error) {
	game, err := m.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	next, err := games.ProcessAction(games.ProcessInputs{
		State:   game.State,
		Action:  action,
		ActorID: actorID,
		Rand:    m.rng,
		Now:     m.now(),
	})
	if err != nil {
		m.logRejected(game.State, actorID, action, err)
		return nil, err
	}

	version, err := m.store.SaveGame(ctx, next, game.Version)
	if err != nil {
		return nil, fmt.Errorf("save game %s: %w", gameID, err)
	}
	payload, err := games.EncodeAction(action)
	if err != nil {
		payload = []byte(`{}`)
	}
	m.record(ctx, gameID, actorID, string(action.Kind()), payload, version)

	if next.Status == games.StatusFinished && game.State.Status != games.StatusFinished {
		log.Info().Str("game", gameID).Str("result", string(next.Result)).Msg("game finished")
	}
	m.pub.PublishState(next)
	return next, nil
}

// record appends to the action log. The snapshot is already saved, so a
// failure here is logged rather than returned.
func (m *Manager) record(ctx context.Context, gameID, actorID, kind string, payload []byte, version int64) {
	err := m.store.AppendAction(ctx, store.ActionRecord{
		GameID:  gameID,
		ActorID: actorID,
		Kind:    kind,
		Payload: payload,
		Version: version,
	})
	if err != nil {
		log.Error().Err(err).Str("game", gameID).Str("kind", kind).Msg("failed to record action")
	}
}

func (m *Manager) logRejected(state *games.GameState, actorID string, action games.Action, err error) {
	level := zerolog.DebugLevel
	if games.IsServerError(err) {
		level = zerolog.ErrorLevel
	}
	intended, _ := games.NextIntendedAction(state)
	log.WithLevel(level).
		Err(err).
		Str("game", state.ID).
		Str("actor", actorID).
		Str("action", string(action.Kind())).
		Str("intended", string(intended)).
		Msg("action rejected")
}

// View returns playerID's view of a game.
func (m *Manager) View(ctx context.Context, gameID, playerID string) (PlayerView, error) {
	game, err := m.store.GetGame(ctx, gameID)
	if err != nil {
		return PlayerView{}, err
	}
	return ViewFor(game.State, playerID), nil
}

// Info returns the listing entry for a game.
func (m *Manager) Info(ctx context.Context, gameID string) (games.GameInfo, error) {
	game, err := m.store.GetGame(ctx, gameID)
	if err != nil {
		return games.GameInfo{}, err
	}
	return games.Info(game.State), nil
}

// ListOpen lists games that are still waiting for players.
func (m *Manager) ListOpen(ctx context.Context) ([]games.GameInfo, error) {
	states, err := m.store.ListOpenGames(ctx)
	if err != nil {
		return nil, err
	}
	return infos(states), nil
}

// ListJoined lists the games playerID has a seat in.
func (m *Manager) ListJoined(ctx context.Context, playerID string) ([]games.GameInfo, error) {
	states, err := m.store.ListPlayerGames(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return infos(states), nil
}

// Chat posts a message from playerID to a game's chat.
func (m *Manager) Chat(ctx context.Context, gameID, playerID, text string) (*store.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxChatLength {
		return nil, ErrMessageTooLong
	}
	if err := m.requireMember(ctx, gameID, playerID); err != nil {
		return nil, err
	}

	msg, err := m.store.AddChat(ctx, gameID, playerID, text)
	if err != nil {
		return nil, fmt.Errorf("add chat: %w", err)
	}
	m.pub.PublishChat(gameID, *msg)
	return msg, nil
}

// ChatHistory returns the latest chat of a game, newest first.
func (m *Manager) ChatHistory(ctx context.Context, gameID, playerID string) ([]store.ChatMessage, error) {
	if err := m.requireMember(ctx, gameID, playerID); err != nil {
		return nil, err
	}
	return m.store.ListChat(ctx, gameID, store.DefaultChatHistory)
}

// History returns the full action log of a finished game.
func (m *Manager) History(ctx context.Context, gameID string) ([]store.ActionRecord, error) {
	game, err := m.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.State.Status != games.StatusFinished {
		return nil, ErrGameInProgress
	}
	return m.store.ListActions(ctx, gameID)
}

func (m *Manager) requireMember(ctx context.Context, gameID, playerID string) error {
	game, err := m.store.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if !game.State.HasPlayer(playerID) {
		return ErrNotInGame
	}
	return nil
}

func infos(states []*games.GameState) []games.GameInfo {
	out := make([]games.GameInfo, 0, len(states))
	for _, s := range states {
		out = append(out, games.Info(s))
	}
	return out
}

func rulesToStrings(rules []games.Rule) []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = string(r)
	}
	return out
}

// lockedRand makes a single-goroutine source safe to share between games.
type lockedRand struct {
	mu deadlock.Mutex
	r  games.Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}
