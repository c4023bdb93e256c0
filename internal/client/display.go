package client

import (
	"time"

	"ayu/internal/game"
)

// Board is the board display.
type Board interface {
	SetCellValue(row, col int, value game.Player)
	SetSelected(row, col int)
	ClearSelected()
	IsSelected(row, col int) bool
	Selected() (game.Coords, bool)
	Highlight(row, col int)
	ClearHighlighted()
}

// HistoryView is the move list display.
type HistoryView interface {
	Render(moves []game.Move)
	SetSelectedIndex(index int)
}

// ClockView shows the thinking time of one side.
type ClockView interface {
	RenderTime(side game.Player, elapsed time.Duration)
}

// Notifier receives user facing notifications. Alerts are modal in the
// browser; other implementations just need to show them.
type Notifier interface {
	Alert(msg string)
	TurnTaken()
	Turn(next game.Player, yours bool)
}

// Flusher is implemented by displays that batch output until the session
// has finished handling an event.
type Flusher interface {
	Flush()
}

func setFields(b Board, f game.Fields) {
	for r, row := range f {
		for c, v := range row {
			b.SetCellValue(r, c, v)
		}
	}
}
