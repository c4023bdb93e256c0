package game

var steps = [4]Coords{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// NewState returns a game at its starting position with White to move.
func NewState(size int) *State {
	return &State{
		NextPlayer: White,
		Size:       size,
		Fields:     InitialFields(size),
		History:    []Move{},
	}
}

// Valid reports whether the side to move may play m: it must move one of its
// own pieces to an orthogonally adjacent empty cell.
func (s *State) Valid(m Move) bool {
	size := s.Fields.Size()
	if s.Over() || !m.Src.inside(size) || !m.Dst.inside(size) {
		return false
	}
	if s.Fields.At(m.Src) != s.NextPlayer || s.Fields.At(m.Dst) != Empty {
		return false
	}
	dr, dc := m.Dst.Row-m.Src.Row, m.Dst.Col-m.Src.Col
	return dr*dr+dc*dc == 1
}

// Execute plays m if it is valid and hands the turn to the opponent, or
// ends the game when the opponent has nothing left to play.
func (s *State) Execute(m Move) bool {
	if !s.Valid(m) {
		return false
	}
	s.Fields.Swap(m)
	s.History = append(s.History, m)
	s.NextPlayer = s.NextPlayer.Opponent()
	if !s.hasMoves(s.NextPlayer) {
		s.NextPlayer = Empty
	}
	return true
}

func (s *State) hasMoves(p Player) bool {
	size := s.Fields.Size()
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			if s.Fields[r][c] != p {
				continue
			}
			for _, d := range steps {
				n := Coords{r + d.Row, c + d.Col}
				if n.inside(size) && s.Fields.At(n) == Empty {
					return true
				}
			}
		}
	}
	return false
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	out := *s
	out.Fields = s.Fields.Clone()
	out.History = append([]Move{}, s.History...)
	if s.TimeUsed != nil {
		tu := *s.TimeUsed
		out.TimeUsed = &tu
	}
	return &out
}
