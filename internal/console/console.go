// Package console renders a game session as text and turns typed commands
// into board and history clicks.
package console

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"ayu/internal/clock"
	"ayu/internal/game"
)

// Console implements the session displays on a text stream. Output is
// buffered until Flush, which writes a frame only if something changed.
type Console struct {
	mu          sync.Mutex
	out         io.Writer
	fields      game.Fields
	selected    *game.Coords
	highlighted map[game.Coords]bool
	moves       []game.Move
	index       int
	clocks      [2]time.Duration
	status      string
	alerts      []string
	dirty       bool
}

// New returns a console writing to out.
func New(out io.Writer) *Console {
	return &Console{out: out, highlighted: make(map[game.Coords]bool), index: -1}
}

func (c *Console) ensure(row, col int) {
	for len(c.fields) <= row || len(c.fields) <= col {
		c.fields = append(c.fields, nil)
	}
	for r := range c.fields {
		for len(c.fields[r]) < len(c.fields) {
			c.fields[r] = append(c.fields[r], game.Empty)
		}
	}
}

// SetCellValue stores the value of one cell, growing the grid as needed.
func (c *Console) SetCellValue(row, col int, value game.Player) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensure(row, col)
	if c.fields[row][col] != value {
		c.fields[row][col] = value
		c.dirty = true
	}
}

// SetSelected marks the cell holding the piece about to move.
func (c *Console) SetSelected(row, col int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = &game.Coords{Row: row, Col: col}
	c.dirty = true
}

// ClearSelected drops the selection.
func (c *Console) ClearSelected() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected != nil {
		c.selected = nil
		c.dirty = true
	}
}

// IsSelected reports whether row, col is the selected cell.
func (c *Console) IsSelected(row, col int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected != nil && *c.selected == game.Coords{Row: row, Col: col}
}

// Selected returns the selected cell, if any.
func (c *Console) Selected() (game.Coords, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return game.Coords{}, false
	}
	return *c.selected, true
}

// Highlight marks a cell of the last move shown.
func (c *Console) Highlight(row, col int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.highlighted[game.Coords{Row: row, Col: col}] = true
	c.dirty = true
}

// ClearHighlighted removes all move highlights.
func (c *Console) ClearHighlighted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.highlighted) > 0 {
		c.highlighted = make(map[game.Coords]bool)
		c.dirty = true
	}
}

// Render replaces the move list.
func (c *Console) Render(moves []game.Move) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.moves = append(c.moves[:0], moves...)
	c.dirty = true
}

// SetSelectedIndex marks the history entry being shown; -1 is the initial
// position and len(moves)-1 the live one.
func (c *Console) SetSelectedIndex(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index != index {
		c.index = index
		c.dirty = true
	}
}

// RenderTime updates the clock of side. Only a change of the shown m:ss redraws.
func (c *Console) RenderTime(side game.Player, elapsed time.Duration) {
	i := side.Index()
	if i < 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if clock.Format(c.clocks[i]) != clock.Format(elapsed) {
		c.dirty = true
	}
	c.clocks[i] = elapsed
}

// Alert queues a message that is printed with the next frame. It may be
// called from any goroutine.
func (c *Console) Alert(msg string) {
	c.mu.Lock()
	c.alerts = append(c.alerts, msg)
	c.dirty = true
	c.mu.Unlock()
	c.Flush()
}

// TurnTaken queues the notice that the opponent has moved.
func (c *Console) TurnTaken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alerts = append(c.alerts, "Turn taken!")
	c.dirty = true
}

// Turn sets the status line for the side to move.
func (c *Console) Turn(next game.Player, yours bool) {
	var status string
	switch next {
	case game.White:
		status = "White to move."
	case game.Black:
		status = "Black to move."
	default:
		status = "Game over."
	}
	if yours && next != game.Empty {
		status += " Your turn."
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != status {
		c.status = status
		c.dirty = true
	}
}

// Flush writes the current frame if anything changed since the last one.
func (c *Console) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return
	}
	c.dirty = false
	var buf bytes.Buffer
	c.writeFrame(&buf)
	_, _ = c.out.Write(buf.Bytes())
}

func (c *Console) writeFrame(w *bytes.Buffer) {
	for _, a := range c.alerts {
		fmt.Fprintf(w, "!! %s\n", strings.ReplaceAll(a, "\n", "\n!! "))
	}
	c.alerts = c.alerts[:0]

	size := len(c.fields)
	for r := size - 1; r >= 0; r-- {
		fmt.Fprintf(w, "%2d ", r+1)
		for col, p := range c.fields[r] {
			at := game.Coords{Row: r, Col: col}
			l, rt := " ", " "
			switch {
			case c.selected != nil && *c.selected == at:
				l, rt = "[", "]"
			case c.highlighted[at]:
				l, rt = "(", ")"
			}
			w.WriteString(l + cellText(p) + rt)
		}
		w.WriteByte('\n')
	}
	if size > 0 {
		w.WriteString("   ")
		for col := 0; col < size; col++ {
			fmt.Fprintf(w, " %c ", 'A'+col)
		}
		w.WriteByte('\n')
	}

	fmt.Fprintf(w, "White %s  Black %s\n", clock.Format(c.clocks[0]), clock.Format(c.clocks[1]))
	st := game.State{History: c.moves}
	_ = st.WriteLog(w)
	if c.index < len(c.moves)-1 {
		pos := "initial position"
		if c.index >= 0 {
			pos = fmt.Sprintf("after move %d (%s)", c.index+1, c.moves[c.index])
		}
		fmt.Fprintf(w, "Showing %s; type \"live\" to return.\n", pos)
	}
	if c.status != "" {
		w.WriteString(c.status + "\n")
	}
}

func cellText(p game.Player) string {
	switch p {
	case game.White:
		return "+"
	case game.Black:
		return "-"
	}
	return "."
}
