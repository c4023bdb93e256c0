package game

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ErrMalformed is returned for snapshots that do not have the expected shape.
var ErrMalformed = errors.New("malformed snapshot")

// Decode parses a raw poll response and checks its shape against the
// expected board size. It never returns a partially valid state.
func Decode(raw []byte, size int) (*State, error) {
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := st.Validate(size); err != nil {
		return nil, err
	}
	if st.Size == 0 {
		st.Size = size
	}
	return &st, nil
}

// Replace decodes raw into a new state. When raw is malformed the previous
// state is returned unchanged together with the decoding error.
func Replace(prev *State, raw []byte, size int) (*State, error) {
	st, err := Decode(raw, size)
	if err != nil {
		return prev, err
	}
	return st, nil
}

// Validate checks the minimal invariants a snapshot must satisfy: a square
// grid of the expected size holding valid cell values, a valid side to move,
// in-range history coordinates and non-negative time totals.
func (s *State) Validate(size int) error {
	var result *multierror.Error
	if s.Size != 0 && s.Size != size {
		result = multierror.Append(result, fmt.Errorf("board size %d, expected %d", s.Size, size))
	}
	if len(s.Fields) != size {
		result = multierror.Append(result, fmt.Errorf("%d rows, expected %d", len(s.Fields), size))
	}
	for r, row := range s.Fields {
		if len(row) != size {
			result = multierror.Append(result, fmt.Errorf("row %d has %d cells, expected %d", r, len(row), size))
			continue
		}
		for c, p := range row {
			if !p.valid() {
				result = multierror.Append(result, fmt.Errorf("cell %d,%d holds %d", r, c, p))
			}
		}
	}
	if !s.NextPlayer.valid() {
		result = multierror.Append(result, fmt.Errorf("next player %d", s.NextPlayer))
	}
	for i, m := range s.History {
		if !m.Src.inside(size) || !m.Dst.inside(size) {
			result = multierror.Append(result, fmt.Errorf("move %d (%v) out of range", i, m))
		}
	}
	if s.TimeUsed != nil && (s.TimeUsed[0] < 0 || s.TimeUsed[1] < 0) {
		result = multierror.Append(result, fmt.Errorf("negative time used %v", *s.TimeUsed))
	}
	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
