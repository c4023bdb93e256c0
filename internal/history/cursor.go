// Package history reconstructs past board positions from a live snapshot.
package history

import "ayu/internal/game"

// Live is the scrub index sentinel for "follow the live position".
const Live = -2

// Reconstruct returns the position after moves[0..index] by undoing
// moves[len-1] down to moves[index+1] on a copy of the live fields. Each
// undo is an exact swap of the move's two cells. index is clamped to
// [-1, len(moves)-1]; -1 is the position before any move.
func Reconstruct(live game.Fields, moves []game.Move, index int) game.Fields {
	index = clamp(index, len(moves))
	f := live.Clone()
	for i := len(moves) - 1; i > index; i-- {
		f.Swap(moves[i])
	}
	return f
}

// Replay applies moves[from+1..] forward to a copy of fields, which is
// assumed to be the position after moves[0..from].
func Replay(fields game.Fields, moves []game.Move, from int) game.Fields {
	f := fields.Clone()
	for i := clamp(from, len(moves)) + 1; i < len(moves); i++ {
		f.Swap(moves[i])
	}
	return f
}

func clamp(index, n int) int {
	if index < -1 {
		return -1
	}
	if index > n-1 {
		return n - 1
	}
	return index
}

// Cursor tracks which position of the current snapshot is displayed. It is
// not safe for concurrent use; the session loop owns it.
type Cursor struct {
	state  *game.State
	index  int
	fields game.Fields
}

// NewCursor returns a cursor with no snapshot.
func NewCursor() *Cursor { return &Cursor{index: Live} }

// Reset installs a new snapshot and returns to the live position, dropping
// any scrub in progress.
func (c *Cursor) Reset(st *game.State) {
	c.state = st
	c.index = Live
	c.fields = nil
	if st != nil {
		c.fields = st.Fields.Clone()
	}
}

// GoTo displays the position after history[index]. The grid is always
// rebuilt from the live fields.
func (c *Cursor) GoTo(index int) {
	if c.state == nil {
		return
	}
	n := len(c.state.History)
	index = clamp(index, n)
	if index == n-1 {
		c.GoToLive()
		return
	}
	c.index = index
	c.fields = Reconstruct(c.state.Fields, c.state.History, index)
}

// GoToLive returns the display to the live position.
func (c *Cursor) GoToLive() {
	c.index = Live
	if c.state != nil {
		c.fields = c.state.Fields.Clone()
	}
}

// Index is the displayed history index in [-1, len(history)-1].
func (c *Cursor) Index() int {
	if c.state == nil {
		return -1
	}
	if c.index == Live {
		return c.state.Version() - 1
	}
	return c.index
}

// AtLive reports whether the live position is displayed.
func (c *Cursor) AtLive() bool { return c.index == Live }

// Fields is the displayed grid. Callers must not modify it.
func (c *Cursor) Fields() game.Fields { return c.fields }

// Highlighted returns the move that led to the displayed position.
func (c *Cursor) Highlighted() (game.Move, bool) {
	i := c.Index()
	if c.state == nil || i < 0 {
		return game.Move{}, false
	}
	return c.state.History[i], true
}
