// Package seating implements the seating chart editor: a desk selection
// state machine over an injective desk → student arrangement.
package seating

import (
	"errors"
	"fmt"
	"maps"
)

var (
	ErrNoDeskSelected = errors.New("select a desk first")
	ErrNoStudent      = errors.New("student id is required")
)

// Phase is the editor's selection state.
type Phase int

const (
	Idle Phase = iota
	DeskSelected
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case DeskSelected:
		return "desk_selected"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is Idle or DeskSelected(Desk).
type State struct {
	Phase Phase
	Desk  DeskKey
}

// Transition is the outcome of an editor action.
type Transition struct {
	State State
	// PickedUp is the student lifted off the newly selected desk, if any.
	PickedUp string
}

// Engine holds one editing session. It is not safe for concurrent use.
type Engine struct {
	grid        Grid
	arrangement map[DeskKey]string
	state       State
}

// NewEngine starts an Idle session on a copy of arrangement. Keys that are
// malformed or outside grid are dropped, and a student listed at several
// desks keeps only the first one in row-major order.
func NewEngine(grid Grid, arrangement map[string]string) *Engine {
	e := &Engine{grid: grid, arrangement: make(map[DeskKey]string, len(arrangement))}
	seated := make(map[string]bool, len(arrangement))
	for _, key := range sortedKeys(arrangement) {
		studentID := arrangement[string(key)]
		if studentID == "" || seated[studentID] || grid.Check(key) != nil {
			continue
		}
		e.arrangement[key] = studentID
		seated[studentID] = true
	}
	return e
}

// State returns the current selection state.
func (e *Engine) State() State { return e.state }

// Grid returns the room grid the session edits.
func (e *Engine) Grid() Grid { return e.grid }

// SelectDesk toggles the selection of key. Selecting an occupied desk lifts
// its student off and reports them in the transition.
func (e *Engine) SelectDesk(key DeskKey) (Transition, error) {
	if err := e.grid.Check(key); err != nil {
		return Transition{State: e.state}, err
	}

	if e.state.Phase == DeskSelected && e.state.Desk == key {
		e.state = State{Phase: Idle}
		return Transition{State: e.state}, nil
	}

	e.state = State{Phase: DeskSelected, Desk: key}
	t := Transition{State: e.state}
	if occupant, ok := e.arrangement[key]; ok {
		delete(e.arrangement, key)
		t.PickedUp = occupant
	}
	return t, nil
}

// AssignStudent seats studentID at the selected desk, moving them from any
// desk they held, and returns to Idle. Without a selection nothing changes.
func (e *Engine) AssignStudent(studentID string) (Transition, error) {
	if studentID == "" {
		return Transition{State: e.state}, ErrNoStudent
	}
	if e.state.Phase != DeskSelected {
		return Transition{State: e.state}, ErrNoDeskSelected
	}

	maps.DeleteFunc(e.arrangement, func(_ DeskKey, id string) bool { return id == studentID })
	e.arrangement[e.state.Desk] = studentID
	e.state = State{Phase: Idle}
	return Transition{State: e.state}, nil
}

// StudentAt returns the student seated at key.
func (e *Engine) StudentAt(key DeskKey) (string, bool) {
	id, ok := e.arrangement[key]
	return id, ok
}

// DeskOf returns the desk held by studentID.
func (e *Engine) DeskOf(studentID string) (DeskKey, bool) {
	for key, id := range e.arrangement {
		if id == studentID {
			return key, true
		}
	}
	return "", false
}

// Arrangement returns a copy of the desk → student map in its stored form.
func (e *Engine) Arrangement() map[string]string {
	out := make(map[string]string, len(e.arrangement))
	for k, v := range e.arrangement {
		out[string(k)] = v
	}
	return out
}
