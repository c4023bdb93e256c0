package server

import (
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"ayu/internal/game"
	"ayu/internal/storage"
)

var (
	// ErrWrongVersion is returned for updates not based on the current version.
	ErrWrongVersion = errors.New("wrong version")
	// ErrForbidden is returned when the key does not belong to the side to move.
	ErrForbidden = errors.New("forbidden")
	// ErrIllegalMove is returned for moves the rules reject.
	ErrIllegalMove = errors.New("illegal move")
	// ErrMissingGame is returned when attempting to operate on a non-existing game.
	ErrMissingGame = errors.New("game not found")
	// ErrJournalMismatch is returned when the recorded moves of a stored game
	// do not match the history of its saved state.
	ErrJournalMismatch = errors.New("move journal does not match saved state")
)

// Hub manages all games held in memory.
type Hub struct {
	Mu    sync.Mutex
	Games map[uuid.UUID]*Game
	store *storage.Store
	clock clock.Clock
}

// Game is a single game with its state and long-poll waiters.
type Game struct {
	Mu        sync.Mutex
	ID        uuid.UUID
	state     *game.State
	Keys      [2]string
	Watchers  map[chan struct{}]struct{}
	LastSeen  time.Time
	used      [2]time.Duration
	turnStart time.Time
	clock     clock.Clock
}
