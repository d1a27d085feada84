package seating

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrMalformedDeskKey   = errors.New("malformed desk key")
	ErrDeskOutOfRange     = errors.New("desk outside the room grid")
	ErrStudentSeatedTwice = errors.New("student seated at more than one desk")
)

// DeskKey identifies a desk as "row-col", both zero-based.
type DeskKey string

// Key builds the DeskKey for a position.
func Key(row, col int) DeskKey {
	return DeskKey(strconv.Itoa(row) + "-" + strconv.Itoa(col))
}

// Position parses the key. Only the canonical form produced by Key is accepted.
func (k DeskKey) Position() (row, col int, err error) {
	r, c, ok := strings.Cut(string(k), "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedDeskKey, k)
	}
	row, errR := strconv.Atoi(r)
	col, errC := strconv.Atoi(c)
	if errR != nil || errC != nil || row < 0 || col < 0 || Key(row, col) != k {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedDeskKey, k)
	}
	return row, col, nil
}

// Grid is the desk layout of a room. A zero Grid accepts any well-formed key.
type Grid struct {
	Rows int
	Cols int
}

// Unbounded is used when the room of a chart is unknown.
var Unbounded = Grid{}

func (g Grid) bounded() bool { return g.Rows > 0 && g.Cols > 0 }

// Check reports whether key is well-formed and inside the grid.
func (g Grid) Check(key DeskKey) error {
	row, col, err := key.Position()
	if err != nil {
		return err
	}
	if g.bounded() && (row >= g.Rows || col >= g.Cols) {
		return fmt.Errorf("%w: %q in %dx%d", ErrDeskOutOfRange, key, g.Rows, g.Cols)
	}
	return nil
}

// Keys lists every desk of a bounded grid in row-major order.
func (g Grid) Keys() []DeskKey {
	if !g.bounded() {
		return nil
	}
	keys := make([]DeskKey, 0, g.Rows*g.Cols)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			keys = append(keys, Key(r, c))
		}
	}
	return keys
}

// Validate checks that every key of arrangement fits the grid and that no
// student sits at two desks.
func Validate(g Grid, arrangement map[string]string) error {
	seen := make(map[string]DeskKey, len(arrangement))
	for _, key := range sortedKeys(arrangement) {
		if err := g.Check(key); err != nil {
			return err
		}
		studentID := arrangement[string(key)]
		if prev, dup := seen[studentID]; dup {
			return fmt.Errorf("%w: %q at %s and %s", ErrStudentSeatedTwice, studentID, prev, key)
		}
		seen[studentID] = key
	}
	return nil
}

// sortedKeys returns the keys in row-major order; malformed keys sort last.
func sortedKeys(arrangement map[string]string) []DeskKey {
	keys := make([]DeskKey, 0, len(arrangement))
	for k := range arrangement {
		keys = append(keys, DeskKey(k))
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, ci, ei := keys[i].Position()
		rj, cj, ej := keys[j].Position()
		switch {
		case ei != nil || ej != nil:
			if (ei == nil) != (ej == nil) {
				return ei == nil
			}
			return keys[i] < keys[j]
		case ri != rj:
			return ri < rj
		default:
			return ci < cj
		}
	})
	return keys
}
