package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ayu/internal/events"
	"ayu/internal/game"
	"ayu/internal/history"
)

// ErrQuit is returned by ReadCommands when the user asks to leave.
var ErrQuit = errors.New("quit")

const usage = `commands:
  B2        click a cell
  A1-B1     click both cells of a move
  h N       show the position after move N (0 = initial position)
  live      return to the live position
  quit      leave
`

// ReadCommands reads one command per line from r and publishes the
// matching clicks. Unknown input prints the usage to out. It returns nil at
// the end of input and ErrQuit on "quit".
func ReadCommands(r io.Reader, out io.Writer, cells *events.Bus[events.CellClicked], entries *events.Bus[events.HistoryClicked]) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		fields := strings.Fields(line)
		switch {
		case line == "":
		case line == "quit" || line == "q":
			return ErrQuit
		case line == "live":
			entries.Publish(events.HistoryClicked{Index: history.Live})
		case len(fields) == 2 && fields[0] == "h":
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 0 {
				fmt.Fprint(out, usage)
				continue
			}
			entries.Publish(events.HistoryClicked{Index: n - 1})
		default:
			upper := strings.ToUpper(line)
			if m, ok := game.ParseMove(upper); ok {
				cells.Publish(events.CellClicked{Row: m.Src.Row, Col: m.Src.Col})
				cells.Publish(events.CellClicked{Row: m.Dst.Row, Col: m.Dst.Col})
				continue
			}
			if c, ok := game.ParseCoords(upper); ok {
				cells.Publish(events.CellClicked{Row: c.Row, Col: c.Col})
				continue
			}
			fmt.Fprint(out, usage)
		}
	}
	return sc.Err()
}
