package store

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/stemsi/classbook-backend/internal/model"
	"github.com/stemsi/classbook-backend/internal/seating"
)

// Reference data (classes, groups, rooms, skills, levels) cannot be deleted
// while something points at it. Owned records (an evaluation's grades, a
// student's grades, absences, memberships and seats) are removed with their owner.

func referenced(kind, id string, n int, by string) error {
	return fmt.Errorf("%w: %s %q is used by %d %s", ErrReferentialIntegrity, kind, id, n, by)
}

func guardClass(st *model.AppState, id string) error {
	if n := countFunc(st.Students, func(s model.Student) bool { return s.ClassID == id }); n > 0 {
		return referenced("class", id, n, "student(s)")
	}
	if n := countFunc(st.Groups, func(g model.Group) bool { return g.ClassID == id }); n > 0 {
		return referenced("class", id, n, "group(s)")
	}
	if n := countFunc(st.SeatingCharts, func(sc model.SeatingChart) bool { return sc.ClassID == id }); n > 0 {
		return referenced("class", id, n, "seating chart(s)")
	}
	if n := countFunc(st.Evaluations, func(e model.Evaluation) bool {
		return e.TargetType == model.TargetClass && e.TargetID == id
	}); n > 0 {
		return referenced("class", id, n, "evaluation(s)")
	}
	return nil
}

func guardGroup(st *model.AppState, id string) error {
	if n := countFunc(st.Evaluations, func(e model.Evaluation) bool {
		return e.TargetType == model.TargetGroup && e.TargetID == id
	}); n > 0 {
		return referenced("group", id, n, "evaluation(s)")
	}
	return nil
}

func guardRoom(st *model.AppState, id string) error {
	if n := countFunc(st.SeatingCharts, func(sc model.SeatingChart) bool { return sc.RoomID == id }); n > 0 {
		return referenced("room", id, n, "seating chart(s)")
	}
	return nil
}

func guardSkill(st *model.AppState, id string) error {
	if n := countFunc(st.Evaluations, func(e model.Evaluation) bool { return e.UsesSkill(id) }); n > 0 {
		return referenced("skill", id, n, "evaluation(s)")
	}
	if n := countFunc(st.StudentGrades, func(g model.StudentGrade) bool {
		_, ok := g.SkillLevels[id]
		return ok
	}); n > 0 {
		return referenced("skill", id, n, "grade(s)")
	}
	return nil
}

func guardAcquisitionLevel(st *model.AppState, id string) error {
	if n := countFunc(st.StudentGrades, func(g model.StudentGrade) bool {
		for _, lvl := range g.SkillLevels {
			if lvl == id {
				return true
			}
		}
		return false
	}); n > 0 {
		return referenced("acquisition level", id, n, "grade(s)")
	}
	return nil
}

func cascadeEvaluation(st *model.AppState, id string) {
	st.StudentGrades = slices.DeleteFunc(st.StudentGrades, func(g model.StudentGrade) bool {
		return g.EvaluationID == id
	})
}

func cascadeStudent(st *model.AppState, id string) {
	st.StudentGrades = slices.DeleteFunc(st.StudentGrades, func(g model.StudentGrade) bool {
		return g.StudentID == id
	})
	st.Absences = slices.DeleteFunc(st.Absences, func(a model.Absence) bool {
		return a.StudentID == id
	})
	for i := range st.Groups {
		st.Groups[i].Members = slices.DeleteFunc(st.Groups[i].Members, func(m string) bool {
			return m == id
		})
	}
	for i := range st.SeatingCharts {
		maps.DeleteFunc(st.SeatingCharts[i].Arrangement, func(_, studentID string) bool {
			return studentID == id
		})
	}
}

func checkGradeUnique(st *model.AppState, g *model.StudentGrade) error {
	for _, other := range st.StudentGrades {
		if other.ID != g.ID && other.StudentID == g.StudentID && other.EvaluationID == g.EvaluationID {
			return fmt.Errorf("%w: grade for student %q on evaluation %q", ErrConflict, g.StudentID, g.EvaluationID)
		}
	}
	return nil
}

// CheckInvariants verifies the cross-record rules on a whole state: one grade
// per (student, evaluation) and injective in-bounds seating arrangements. It is
// meant for states written without going through the collections.
func CheckInvariants(st *model.AppState) error {
	for i := range st.StudentGrades {
		if err := checkGradeUnique(st, &st.StudentGrades[i]); err != nil {
			return err
		}
	}
	for i := range st.SeatingCharts {
		if err := checkArrangement(st, &st.SeatingCharts[i]); err != nil {
			return fmt.Errorf("seating chart %q: %w", st.SeatingCharts[i].ID, err)
		}
	}
	return nil
}

func checkEvaluationNumbers(_ *model.AppState, e *model.Evaluation) error {
	coef := e.Coefficient.Float64()
	if math.IsNaN(coef) || math.IsInf(coef, 0) {
		return Invalid("coefficient", "must be a finite number")
	}
	if e.MaxPoints != nil {
		if m := e.MaxPoints.Float64(); !(m > 0) || math.IsInf(m, 0) {
			return Invalid("maxPoints", "must be a finite number greater than 0")
		}
	}
	return nil
}

func checkArrangement(st *model.AppState, sc *model.SeatingChart) error {
	grid := seating.Unbounded
	if i := slices.IndexFunc(st.Rooms, func(r model.Room) bool { return r.ID == sc.RoomID }); i >= 0 {
		grid = seating.Grid{Rows: st.Rooms[i].Rows, Cols: st.Rooms[i].Cols}
	}
	if err := seating.Validate(grid, sc.Arrangement); err != nil {
		return Invalid("arrangement", err.Error())
	}
	return nil
}

func checkRoomFitsCharts(st *model.AppState, r *model.Room) error {
	grid := seating.Grid{Rows: r.Rows, Cols: r.Cols}
	for _, sc := range st.SeatingCharts {
		if sc.RoomID != r.ID {
			continue
		}
		if err := seating.Validate(grid, sc.Arrangement); err != nil {
			return Invalid("rows", fmt.Sprintf("seating chart %q no longer fits: %v", sc.Name, err))
		}
	}
	return nil
}

func countFunc[T any](items []T, pred func(T) bool) int {
	n := 0
	for _, it := range items {
		if pred(it) {
			n++
		}
	}
	return n
}
