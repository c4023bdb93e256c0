package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"ayu/internal/game"
	"ayu/internal/storage"
	"ayu/pkg/utils"
)

// IdleTimeout is how long a game stays in memory without requests.
const IdleTimeout = 24 * time.Hour

// NewHub creates a new game hub. A nil store keeps games in memory only.
func NewHub(store *storage.Store, clk clock.Clock) *Hub {
	if clk == nil {
		clk = clock.New()
	}
	return &Hub{Games: make(map[uuid.UUID]*Game), store: store, clock: clk}
}

// RunCleanup evicts idle games from memory every interval until ctx is done.
// Evicted games can still be loaded from the store.
func (h *Hub) RunCleanup(ctx context.Context, interval time.Duration) {
	t := h.clock.Ticker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			h.evictIdle()
		}
	}
}

func (h *Hub) evictIdle() {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	for id, g := range h.Games {
		g.Mu.Lock()
		idle := h.clock.Since(g.LastSeen) > IdleTimeout && len(g.Watchers) == 0
		g.Mu.Unlock()
		if idle {
			delete(h.Games, id)
		}
	}
}

// Create starts a new game of the given size with fresh keys.
func (h *Hub) Create(ctx context.Context, size int) (*Game, error) {
	if size < 2 || size > 26 {
		return nil, fmt.Errorf("unsupported board size %d", size)
	}
	var keys [2]string
	for i := range keys {
		k, err := utils.RandomHex(10)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}
	now := h.clock.Now()
	g := &Game{
		ID:        uuid.New(),
		state:     game.NewState(size),
		Keys:      keys,
		Watchers:  make(map[chan struct{}]struct{}),
		LastSeen:  now,
		turnStart: now,
		clock:     h.clock,
	}
	raw, err := json.Marshal(g.state)
	if err != nil {
		return nil, err
	}
	if err := h.store.CreateGame(ctx, storage.NewGame{
		ID: g.ID, Size: size, Keys: keys, State: string(raw), LastSeen: now,
	}); err != nil {
		return nil, fmt.Errorf("persist game: %w", err)
	}
	h.Mu.Lock()
	h.Games[g.ID] = g
	h.Mu.Unlock()
	slog.Info("game created", "game", g.ID, "size", size)
	return g, nil
}

// Get returns the game with the given id, loading it from the store when it
// is not in memory.
func (h *Hub) Get(ctx context.Context, id string) (*Game, error) {
	gid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrMissingGame
	}
	h.Mu.Lock()
	defer h.Mu.Unlock()
	if g, ok := h.Games[gid]; ok {
		return g, nil
	}
	row, err := h.store.LoadGame(ctx, gid)
	if storage.IsNotFound(err) {
		return nil, ErrMissingGame
	}
	if err != nil {
		return nil, err
	}
	g, err := h.restore(row)
	if err != nil {
		return nil, err
	}
	h.Games[gid] = g
	return g, nil
}

func (h *Hub) restore(row *storage.Game) (*Game, error) {
	var st game.State
	if err := json.Unmarshal([]byte(row.State), &st); err != nil {
		return nil, fmt.Errorf("decode stored game %s: %w", row.ID, err)
	}
	if err := st.Validate(row.Size); err != nil {
		return nil, fmt.Errorf("stored game %s: %w", row.ID, err)
	}
	if st.History == nil {
		st.History = []game.Move{}
	}
	if err := checkJournal(row.Moves, st.History); err != nil {
		return nil, fmt.Errorf("stored game %s: %w", row.ID, err)
	}
	now := h.clock.Now()
	return &Game{
		ID:        row.ID,
		state:     &st,
		Keys:      [2]string{row.WhiteKey, row.BlackKey},
		Watchers:  make(map[chan struct{}]struct{}),
		LastSeen:  now,
		used:      [2]time.Duration{time.Duration(row.WhiteUsedMs) * time.Millisecond, time.Duration(row.BlackUsedMs) * time.Millisecond},
		turnStart: now,
		clock:     h.clock,
	}, nil
}

func checkJournal(moves []storage.Move, history []game.Move) error {
	if len(moves) != len(history) {
		return fmt.Errorf("%w: %d moves recorded, state has %d", ErrJournalMismatch, len(moves), len(history))
	}
	for i, m := range moves {
		if m.Number != i || m.Notation != history[i].String() {
			return fmt.Errorf("%w: move %d recorded as %d %s, state has %s", ErrJournalMismatch, i, m.Number, m.Notation, history[i])
		}
	}
	return nil
}

// Update applies a move submitted for the side to move, persists it and
// wakes up everyone waiting for a new version.
func (h *Hub) Update(ctx context.Context, upd game.UpdateRequest) error {
	g, err := h.Get(ctx, upd.Game)
	if err != nil {
		return err
	}
	next, mover, err := g.Apply(upd)
	if err != nil {
		return err
	}
	if err := h.persist(ctx, g.ID, next, upd, mover); err != nil {
		slog.Error("failed to persist move", "game", g.ID, "err", err)
	}
	g.Broadcast()
	return nil
}

func (h *Hub) persist(ctx context.Context, id uuid.UUID, st *game.State, upd game.UpdateRequest, mover game.Player) error {
	if err := h.store.RecordMove(ctx, id, upd.Version, upd.Move.String(), mover.String()); err != nil {
		return err
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	state := string(raw)
	white := time.Duration(st.TimeUsed[0] * float64(time.Second))
	black := time.Duration(st.TimeUsed[1] * float64(time.Second))
	if err := h.store.SaveGameState(ctx, id, storage.GameStateUpdate{
		State: &state, WhiteUsed: &white, BlackUsed: &black,
	}); err != nil {
		return err
	}
	if st.Over() {
		return h.store.CompleteGame(ctx, id, h.clock.Now())
	}
	return nil
}

// Stats reports game counts from the store, or from memory when the hub
// has no store.
func (h *Hub) Stats(ctx context.Context) (storage.Stats, error) {
	if h.store != nil {
		return h.store.FetchStats(ctx)
	}
	h.Mu.Lock()
	defer h.Mu.Unlock()
	var stats storage.Stats
	for _, g := range h.Games {
		stats.Started++
		g.Mu.Lock()
		over := g.state.Over()
		g.Mu.Unlock()
		if over {
			stats.Completed++
		} else {
			stats.Active++
		}
	}
	return stats, nil
}
