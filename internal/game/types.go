package game

import (
	"encoding/json"
	"fmt"
)

// DefaultSize is the board size used when none is configured.
const DefaultSize = 11

// Player is both a cell value and a side: Empty (0), White (+1) or Black (-1).
type Player int8

const (
	Black Player = -1
	Empty Player = 0
	White Player = +1
)

// Opponent returns the other side. Empty has no opponent.
func (p Player) Opponent() Player { return -p }

// Index maps White to 0 and Black to 1, the order used for keys and timeUsed.
// It returns -1 for Empty.
func (p Player) Index() int {
	switch p {
	case White:
		return 0
	case Black:
		return 1
	}
	return -1
}

func (p Player) String() string {
	switch p {
	case White:
		return "white"
	case Black:
		return "black"
	}
	return "none"
}

func (p Player) valid() bool { return p >= Black && p <= White }

// Coords locates a cell on the board.
type Coords struct {
	Row, Col int
}

// MarshalJSON encodes coordinates as [row,col].
func (c Coords) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.Row, c.Col})
}

// UnmarshalJSON decodes coordinates from [row,col].
func (c *Coords) UnmarshalJSON(b []byte) error {
	var rc []int
	if err := json.Unmarshal(b, &rc); err != nil {
		return err
	}
	if len(rc) != 2 {
		return fmt.Errorf("coordinates need 2 values, got %d", len(rc))
	}
	c.Row, c.Col = rc[0], rc[1]
	return nil
}

func (c Coords) inside(size int) bool {
	return c.Row >= 0 && c.Row < size && c.Col >= 0 && c.Col < size
}

// Move takes the piece on Src to Dst.
type Move struct {
	Src, Dst Coords
}

// MarshalJSON encodes a move as [[r,c],[r,c]].
func (m Move) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]Coords{m.Src, m.Dst})
}

// UnmarshalJSON decodes a move from [[r,c],[r,c]].
func (m *Move) UnmarshalJSON(b []byte) error {
	var cs []Coords
	if err := json.Unmarshal(b, &cs); err != nil {
		return err
	}
	if len(cs) != 2 {
		return fmt.Errorf("move needs 2 coordinates, got %d", len(cs))
	}
	m.Src, m.Dst = cs[0], cs[1]
	return nil
}

// Fields is the square grid of cell values, indexed [row][col].
type Fields [][]Player

// State is one snapshot of a game as reported by the server. A State is
// treated as immutable once decoded; the client replaces it wholesale.
type State struct {
	NextPlayer Player      `json:"nextPlayer"`
	Size       int         `json:"size,omitempty"`
	Fields     Fields      `json:"fields"`
	History    []Move      `json:"history"`
	TimeUsed   *[2]float64 `json:"timeUsed,omitempty"`
}

// Version is the number of moves played so far.
func (s *State) Version() int {
	if s == nil {
		return -1
	}
	return len(s.History)
}

// Over reports whether nobody is left to move.
func (s *State) Over() bool { return s.NextPlayer == Empty }

// UpdateRequest is the body of a move submission.
type UpdateRequest struct {
	Game    string `json:"game"`
	Version int    `json:"version"`
	Key     string `json:"key"`
	Move    Move   `json:"move"`
}

// CreateRequest is the body of a game creation request.
type CreateRequest struct {
	Size int `json:"size"`
}

// CreateResponse identifies a freshly created game and its per-color keys.
type CreateResponse struct {
	Game string    `json:"game"`
	Keys [2]string `json:"keys"`
	Size int       `json:"size"`
}
