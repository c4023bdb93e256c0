// Package syncer keeps a client's view of a game in step with the server
// using paced long-poll requests.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"

	"ayu/internal/game"
)

// DefaultBudget is the client-side soft poll budget.
const DefaultBudget = 10 * time.Second

// NoVersion is the expected version sent before any snapshot is known. It
// differs from every real version, so the first poll answers immediately.
const NoVersion = -1

// ErrStale is reported when the server answers with fewer moves than the
// client has already seen.
var ErrStale = errors.New("stale snapshot")

// Poller performs one long-poll request. A nil body with a nil error means
// nothing changed before the server's deadline.
type Poller interface {
	Poll(ctx context.Context, gameID string, version int) ([]byte, error)
}

// Config configures a Loop.
type Config struct {
	GameID string
	Size   int
	Budget time.Duration
	Clock  clock.Clock
	// OnSnapshot receives every accepted snapshot, in order, from the
	// loop's goroutine. Returning an error stops the loop.
	OnSnapshot func(context.Context, *game.State) error
}

// Result describes one completed poll.
type Result struct {
	Requested int
	State     *game.State
	Changed   bool
	Elapsed   time.Duration
}

// Loop polls one game. It is driven by a single goroutine through Run.
type Loop struct {
	poller Poller
	cfg    Config
	state  *game.State
	sleep  func(context.Context, time.Duration) error
}

// NewLoop returns a loop that has not observed any snapshot yet.
func NewLoop(p Poller, cfg Config) *Loop {
	if cfg.Budget <= 0 {
		cfg.Budget = DefaultBudget
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Size <= 0 {
		cfg.Size = game.DefaultSize
	}
	l := &Loop{poller: p, cfg: cfg}
	l.sleep = l.clockSleep
	return l
}

// Version is the expected version for the next poll: the history length of
// the latest accepted snapshot, or NoVersion.
func (l *Loop) Version() int {
	if l.state == nil {
		return NoVersion
	}
	return l.state.Version()
}

// State returns the latest accepted snapshot.
func (l *Loop) State() *game.State { return l.state }

// PollOnce issues one poll for the current version. Malformed or stale
// snapshots are logged and dropped; the previous state is kept. Errors are
// only returned for failed requests, which the caller must treat as fatal.
func (l *Loop) PollOnce(ctx context.Context) (Result, error) {
	res := Result{Requested: l.Version()}
	t0 := l.cfg.Clock.Now()
	body, err := l.poller.Poll(ctx, l.cfg.GameID, res.Requested)
	res.Elapsed = l.cfg.Clock.Since(t0)
	if err != nil {
		return res, fmt.Errorf("poll game %s at version %d: %w", l.cfg.GameID, res.Requested, err)
	}
	if body != nil {
		st, err := game.Decode(body, l.cfg.Size)
		switch {
		case err != nil:
			slog.Warn("dropping snapshot", "game", l.cfg.GameID, "err", err)
		case st.Version() < l.Version():
			slog.Warn("dropping snapshot", "game", l.cfg.GameID, "err", ErrStale,
				"version", st.Version(), "known", l.Version())
		default:
			l.state = st
			res.Changed = true
		}
	}
	res.State = l.state
	return res, nil
}

// Delay is the pacing rule: poll again at once when the version moved or
// the budget is already spent, otherwise wait out the rest of the budget.
func Delay(budget time.Duration, requested, returned int, elapsed time.Duration) time.Duration {
	if returned != requested || elapsed > budget {
		return 0
	}
	return budget - elapsed
}

// Run polls until ctx is done or a request fails. Failed requests are not
// retried.
func (l *Loop) Run(ctx context.Context) error {
	for {
		res, err := l.PollOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if res.Changed && l.cfg.OnSnapshot != nil {
			if err := l.cfg.OnSnapshot(ctx, res.State); err != nil {
				return err
			}
		}
		if d := Delay(l.cfg.Budget, res.Requested, l.Version(), res.Elapsed); d > 0 {
			if err := l.sleep(ctx, d); err != nil {
				return err
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (l *Loop) clockSleep(ctx context.Context, d time.Duration) error {
	t := l.cfg.Clock.Timer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
