// Package submit turns a selected move into an authorized update request
// and remembers which versions the client produced itself.
package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"ayu/internal/game"
)

var (
	// ErrNoKey means the viewer holds no secret for the side to move.
	ErrNoKey = errors.New("no key for the side to move")
	// ErrStaleVersion means the move was built against an old snapshot.
	ErrStaleVersion = errors.New("move is not based on the live version")
	// ErrInFlight means another submission has not resolved yet.
	ErrInFlight = errors.New("a move is already being submitted")
)

// Updater sends one move to the server.
type Updater interface {
	Update(ctx context.Context, upd game.UpdateRequest) error
}

// Submitter enforces the submission preconditions and tracks the version
// the client expects after its own move. Submit may run on a different
// goroutine than Observe.
type Submitter struct {
	Mu       sync.Mutex
	updater  Updater
	last     *int
	pending  int
	inFlight bool
	seen     bool
}

// New returns a submitter that has tracked nothing yet.
func New(u Updater) *Submitter {
	return &Submitter{updater: u}
}

// Submit posts move for gameID. version is the history length the move was
// built against and liveVersion the history length of the latest snapshot;
// they must match. Failures are never retried.
func (s *Submitter) Submit(ctx context.Context, gameID string, version, liveVersion int, key string, move game.Move) error {
	if key == "" {
		return ErrNoKey
	}
	if version != liveVersion {
		return fmt.Errorf("%w: %d, live is %d", ErrStaleVersion, version, liveVersion)
	}
	s.Mu.Lock()
	if s.inFlight {
		s.Mu.Unlock()
		return ErrInFlight
	}
	s.inFlight = true
	s.pending = version + 1
	s.Mu.Unlock()

	err := s.updater.Update(ctx, game.UpdateRequest{Game: gameID, Version: version, Key: key, Move: move})

	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.inFlight = false
	if err != nil {
		slog.Warn("move rejected", "game", gameID, "version", version, "move", move.String(), "err", err)
		return fmt.Errorf("submit %s: %w", move, err)
	}
	next := version + 1
	s.last = &next
	return nil
}

// Observe records that a snapshot with historyLen moves arrived and reports
// whether the turn notification should fire. The first snapshot only sets
// the baseline; later ones notify unless they match the version produced
// by this client's own move.
func (s *Submitter) Observe(historyLen int) bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	first := !s.seen
	s.seen = true
	if s.last == nil {
		n := historyLen
		s.last = &n
	}
	if first {
		return false
	}
	if s.inFlight && historyLen == s.pending {
		return false
	}
	return *s.last != historyLen
}

// LastSubmitted returns the version recorded for this client's last move.
func (s *Submitter) LastSubmitted() (int, bool) {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	if s.last == nil {
		return 0, false
	}
	return *s.last, true
}

// InFlight reports whether a submission is outstanding.
func (s *Submitter) InFlight() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.inFlight
}
