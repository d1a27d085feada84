package query

import (
	"github.com/stemsi/classbook-backend/internal/model"
	"github.com/stemsi/classbook-backend/internal/seating"
)

// Desk is one cell of a seating layout.
type Desk struct {
	Key       string `json:"key"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	StudentID string `json:"studentId,omitempty"`
	Label     string `json:"label,omitempty"`
}

// SeatingLayout is a chart drawn on its room grid.
type SeatingLayout struct {
	ChartID  string          `json:"chartId"`
	Rows     int             `json:"rows"`
	Cols     int             `json:"cols"`
	Desks    [][]Desk        `json:"desks"`
	Unseated []model.Student `json:"unseated"`
}

// RoomOf returns the room a chart is drawn in.
func RoomOf(st *model.AppState, chart model.SeatingChart) (model.Room, bool) {
	for _, r := range st.Rooms {
		if r.ID == chart.RoomID {
			return r, true
		}
	}
	return model.Room{}, false
}

// BuildSeatingLayout draws arrangement on the chart's room. Only students of
// the chart's class are shown; the rest of the class is listed as unseated.
func BuildSeatingLayout(st *model.AppState, chart model.SeatingChart, arrangement map[string]string) (SeatingLayout, bool) {
	room, ok := RoomOf(st, chart)
	if !ok {
		return SeatingLayout{}, false
	}

	students := StudentsForTarget(st, chart.ClassID, model.TargetClass)
	byID := make(map[string]model.Student, len(students))
	for _, s := range students {
		byID[s.ID] = s
	}

	layout := SeatingLayout{ChartID: chart.ID, Rows: room.Rows, Cols: room.Cols, Desks: make([][]Desk, room.Rows)}
	seated := make(map[string]bool)
	for r := 0; r < room.Rows; r++ {
		layout.Desks[r] = make([]Desk, room.Cols)
		for c := 0; c < room.Cols; c++ {
			key := string(seating.Key(r, c))
			desk := Desk{Key: key, Row: r, Col: c}
			if s, ok := byID[arrangement[key]]; ok {
				desk.StudentID = s.ID
				desk.Label = DeskLabel(s)
				seated[s.ID] = true
			}
			layout.Desks[r][c] = desk
		}
	}

	layout.Unseated = []model.Student{}
	for _, s := range students {
		if !seated[s.ID] {
			layout.Unseated = append(layout.Unseated, s)
		}
	}
	return layout, true
}

// DeskLabel renders "First L." for a desk.
func DeskLabel(s model.Student) string {
	initial := ""
	if r := []rune(s.LastName); len(r) > 0 {
		initial = " " + string(r[0]) + "."
	}
	return s.FirstName + initial
}
