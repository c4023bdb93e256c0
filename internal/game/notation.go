package game

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// String formats coordinates as a column letter followed by the 1-based row,
// e.g. {0,0} is "A1" and {1,4} is "E2".
func (c Coords) String() string {
	return fmt.Sprintf("%c%d", 'A'+c.Col, c.Row+1)
}

func (m Move) String() string {
	return m.Src.String() + "-" + m.Dst.String()
}

// ParseCoords parses the notation produced by Coords.String. Columns are
// upper case letters; rows start at 1 and have no leading zeros.
func ParseCoords(s string) (Coords, bool) {
	if len(s) < 2 || s[0] < 'A' || s[0] > 'Z' {
		return Coords{}, false
	}
	digits := s[1:]
	if digits[0] < '1' || digits[0] > '9' {
		return Coords{}, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Coords{}, false
		}
	}
	row, err := strconv.Atoi(digits)
	if err != nil {
		return Coords{}, false
	}
	return Coords{Row: row - 1, Col: int(s[0] - 'A')}, true
}

// ParseMove parses "SRC-DST", for example "A7-C3".
func ParseMove(s string) (Move, bool) {
	src, dst, found := strings.Cut(s, "-")
	if !found {
		return Move{}, false
	}
	a, ok := ParseCoords(src)
	if !ok {
		return Move{}, false
	}
	b, ok := ParseCoords(dst)
	if !ok {
		return Move{}, false
	}
	return Move{Src: a, Dst: b}, true
}

// WriteLog writes the move history as numbered pairs, white's move first.
func (s *State) WriteLog(w io.Writer) error {
	for i := 0; i < len(s.History); i += 2 {
		line := fmt.Sprintf("%3d. %s", i/2+1, s.History[i])
		if i+1 < len(s.History) {
			line = fmt.Sprintf("%-13s %s", line, s.History[i+1])
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}
