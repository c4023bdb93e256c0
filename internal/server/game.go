package server

import (
	"context"
	"time"

	"ayu/internal/game"
	"ayu/internal/logging"
)

// Touch updates the last seen timestamp for a game
func (g *Game) Touch() {
	g.Mu.Lock()
	g.LastSeen = g.clock.Now()
	g.Mu.Unlock()
}

// VersionLocked returns the number of moves played (must be called with lock held)
func (g *Game) VersionLocked() int { return g.state.Version() }

// SnapshotLocked returns a copy of the current state with the time used by
// each side up to now (must be called with lock held)
func (g *Game) SnapshotLocked() *game.State {
	st := g.state.Clone()
	used := g.used
	if i := st.NextPlayer.Index(); i >= 0 {
		used[i] += g.clock.Since(g.turnStart)
	}
	st.TimeUsed = &[2]float64{used[0].Seconds(), used[1].Seconds()}
	return st
}

// Snapshot returns the current state.
func (g *Game) Snapshot() *game.State {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.SnapshotLocked()
}

// Apply checks and plays a move, returning the resulting snapshot and the
// side that moved.
func (g *Game) Apply(upd game.UpdateRequest) (*game.State, game.Player, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	if upd.Version != g.VersionLocked() {
		return nil, game.Empty, ErrWrongVersion
	}
	mover := g.state.NextPlayer
	i := mover.Index()
	if i < 0 || upd.Key == "" || upd.Key != g.Keys[i] {
		return nil, game.Empty, ErrForbidden
	}
	if !g.state.Execute(upd.Move) {
		return nil, game.Empty, ErrIllegalMove
	}
	now := g.clock.Now()
	g.used[i] += now.Sub(g.turnStart)
	g.turnStart = now
	g.LastSeen = now
	logging.Debugf("game %s: %s played %s", g.ID, mover, upd.Move)
	return g.SnapshotLocked(), mover, nil
}

// AddWatcher adds a new watcher channel
func (g *Game) AddWatcher(ch chan struct{}) {
	g.Mu.Lock()
	g.Watchers[ch] = struct{}{}
	g.Mu.Unlock()
}

// RemoveWatcher removes a watcher channel
func (g *Game) RemoveWatcher(ch chan struct{}) {
	g.Mu.Lock()
	delete(g.Watchers, ch)
	g.Mu.Unlock()
}

// Broadcast wakes up all watchers
func (g *Game) Broadcast() {
	g.Mu.Lock()
	for ch := range g.Watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	g.Mu.Unlock()
}

// Wait blocks while the game is still at version, until delay elapses or ctx
// is done. It returns the current snapshot, or nil when nothing changed.
func (g *Game) Wait(ctx context.Context, version int, delay time.Duration) *game.State {
	timeout := g.clock.Timer(delay)
	defer timeout.Stop()
	ch := make(chan struct{}, 1)
	g.AddWatcher(ch)
	defer g.RemoveWatcher(ch)
	for {
		g.Mu.Lock()
		if g.VersionLocked() != version {
			st := g.SnapshotLocked()
			g.Mu.Unlock()
			return st
		}
		g.Mu.Unlock()
		select {
		case <-ch:
		case <-timeout.C:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}
