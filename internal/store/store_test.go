package store

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/classbook-backend/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	n := 0
	return New(nil,
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
		WithClock(func() time.Time { return time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC) }),
	)
}

func mustCreate[T any](t *testing.T, c *Collection[T], rec T) T {
	t.Helper()
	out, err := c.Create(rec)
	require.NoError(t, err)
	return out
}

func TestNewStoreDefaults(t *testing.T) {
	s := New(nil)
	assert.Equal(t, model.DefaultSubjects(), s.Subjects().List())
	assert.Equal(t, model.DefaultPeriods(), s.Periods().List())
	assert.Empty(t, s.Classes().List(nil))
}

func TestCreateAssignsIDAndKeepsOrder(t *testing.T) {
	s := newTestStore(t)

	a := mustCreate(t, s.Classes(), model.Class{Name: "6A", ID: "ignored"})
	b := mustCreate(t, s.Classes(), model.Class{Name: "5B"})

	assert.Equal(t, "id-1", a.ID)
	assert.Equal(t, "id-2", b.ID)
	names := []string{}
	for _, c := range s.Classes().List(nil) {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"6A", "5B"}, names)
}

func TestCreateValidation(t *testing.T) {
	s := newTestStore(t)
	changes := 0
	s.SetChangeHook(func() { changes++ })

	_, err := s.Students().Create(model.Student{FirstName: "Léa"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "lastName")
	assert.Contains(t, ve.Fields, "classId")
	assert.Zero(t, s.Students().Count())
	assert.Zero(t, changes)

	_, err = s.Rooms().Create(model.Room{Name: "B12", Rows: 0, Cols: 3})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "rows")

	_, err = s.Evaluations().Create(model.Evaluation{Name: "DS1", TargetID: "c", Subject: "Maths"})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "period")
}

func TestEvaluationDefaults(t *testing.T) {
	s := newTestStore(t)
	ev := mustCreate(t, s.Evaluations(), model.Evaluation{Name: "DS1", TargetID: "c", Period: "Trimestre 1", Subject: "Maths"})

	assert.Equal(t, model.TargetClass, ev.TargetType)
	assert.Equal(t, model.EvaluationGrade, ev.Type)
	assert.Equal(t, model.Number(1), ev.Coefficient)
	require.NotNil(t, ev.MaxPoints)
	assert.Equal(t, model.Number(20), *ev.MaxPoints)
}

func TestEvaluationRejectsNonFiniteNumbers(t *testing.T) {
	for _, body := range []string{
		`{"coefficient":"Infinity"}`,
		`{"coefficient":"-Inf"}`,
		`{"maxPoints":"NaN"}`,
	} {
		var ev model.Evaluation
		assert.Error(t, json.Unmarshal([]byte(body), &ev), body)
	}

	nan := model.Number(math.NaN())
	zero := model.Number(0)
	tests := []struct {
		name  string
		ev    model.Evaluation
		field string
	}{
		{"nan max points", model.Evaluation{MaxPoints: &nan}, "maxPoints"},
		{"zero max points", model.Evaluation{MaxPoints: &zero}, "maxPoints"},
		{"infinite coefficient", model.Evaluation{Coefficient: model.Number(math.Inf(1))}, "coefficient"},
		{"nan coefficient", model.Evaluation{Coefficient: nan}, "coefficient"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			ev := tt.ev
			ev.Name, ev.TargetID, ev.Period, ev.Subject = "DS1", "c", "Trimestre 1", "Maths"

			_, err := s.Evaluations().Create(ev)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
			assert.Zero(t, s.Evaluations().Count())

			_, err = json.Marshal(s.Snapshot())
			assert.NoError(t, err)
		})
	}
}

func TestUpdateMergesAndKeepsID(t *testing.T) {
	s := newTestStore(t)
	c := mustCreate(t, s.Classes(), model.Class{Name: "6A", Level: "6e", Year: "2025"})

	updated, err := s.Classes().Update(c.ID, func(rec *model.Class) error {
		return json.Unmarshal([]byte(`{"id":"other","year":"2026"}`), rec)
	})
	require.NoError(t, err)
	assert.Equal(t, model.Class{ID: c.ID, Name: "6A", Level: "6e", Year: "2026"}, updated)

	got, err := s.Classes().Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestUpdateFailures(t *testing.T) {
	s := newTestStore(t)
	c := mustCreate(t, s.Classes(), model.Class{Name: "6A"})

	_, err := s.Classes().Update("missing", func(*model.Class) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Classes().Update(c.ID, func(rec *model.Class) error {
		rec.Name = ""
		return nil
	})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	got, _ := s.Classes().Get(c.ID)
	assert.Equal(t, "6A", got.Name)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := newTestStore(t)
	g := mustCreate(t, s.Groups(), model.Group{Name: "Latin", ClassID: "c", Members: []string{"s1"}})

	g.Members[0] = "changed"
	list := s.Groups().List(nil)
	list[0].Members = append(list[0].Members, "s2")

	got, _ := s.Groups().Get(g.ID)
	assert.Equal(t, []string{"s1"}, got.Members)
}

func TestDeleteClassBlockedByStudents(t *testing.T) {
	s := newTestStore(t)
	c := mustCreate(t, s.Classes(), model.Class{Name: "6A"})
	st := mustCreate(t, s.Students(), model.Student{LastName: "Martin", FirstName: "Léa", ClassID: c.ID})

	err := s.Classes().Delete(c.ID)
	assert.ErrorIs(t, err, ErrReferentialIntegrity)
	assert.Equal(t, 1, s.Classes().Count())

	require.NoError(t, s.Students().Delete(st.ID))
	require.NoError(t, s.Classes().Delete(c.ID))
	assert.Zero(t, s.Classes().Count())
}

func TestDeleteGuards(t *testing.T) {
	s := newTestStore(t)
	c := mustCreate(t, s.Classes(), model.Class{Name: "6A"})
	g := mustCreate(t, s.Groups(), model.Group{Name: "Latin", ClassID: c.ID})
	r := mustCreate(t, s.Rooms(), model.Room{Name: "B12", Rows: 2, Cols: 2})
	sk := mustCreate(t, s.Skills(), model.Skill{Name: "Raisonner"})
	lvl := mustCreate(t, s.AcquisitionLevels(), model.AcquisitionLevel{Code: "++"})
	ev := mustCreate(t, s.Evaluations(), model.Evaluation{
		Name: "Oral", TargetType: model.TargetGroup, TargetID: g.ID,
		Period: "Trimestre 1", Subject: "Latin", Type: model.EvaluationSkill, SkillIDs: []string{sk.ID},
	})
	mustCreate(t, s.Grades(), model.StudentGrade{StudentID: "s1", EvaluationID: ev.ID, SkillLevels: map[string]string{sk.ID: lvl.ID}})
	chart := mustCreate(t, s.SeatingCharts(), model.SeatingChart{Name: "Plan", ClassID: c.ID, RoomID: r.ID})

	tests := []struct {
		name   string
		delete func() error
	}{
		{"class with group and chart", func() error { return s.Classes().Delete(c.ID) }},
		{"group targeted by evaluation", func() error { return s.Groups().Delete(g.ID) }},
		{"room used by chart", func() error { return s.Rooms().Delete(r.ID) }},
		{"skill used by evaluation", func() error { return s.Skills().Delete(sk.ID) }},
		{"level used by grade", func() error { return s.AcquisitionLevels().Delete(lvl.ID) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.delete(), ErrReferentialIntegrity)
		})
	}

	// Unwinding in dependency order succeeds.
	require.NoError(t, s.SeatingCharts().Delete(chart.ID))
	require.NoError(t, s.Rooms().Delete(r.ID))
	require.NoError(t, s.Evaluations().Delete(ev.ID))
	require.NoError(t, s.Skills().Delete(sk.ID))
	require.NoError(t, s.AcquisitionLevels().Delete(lvl.ID))
	require.NoError(t, s.Groups().Delete(g.ID))
	require.NoError(t, s.Classes().Delete(c.ID))
}

func TestDeleteEvaluationCascadesGrades(t *testing.T) {
	s := newTestStore(t)
	ev1 := mustCreate(t, s.Evaluations(), model.Evaluation{Name: "DS1", TargetID: "c", Period: "T1", Subject: "Maths"})
	ev2 := mustCreate(t, s.Evaluations(), model.Evaluation{Name: "DS2", TargetID: "c", Period: "T1", Subject: "Maths"})
	mustCreate(t, s.Grades(), model.StudentGrade{StudentID: "s1", EvaluationID: ev1.ID, Value: "12"})
	mustCreate(t, s.Grades(), model.StudentGrade{StudentID: "s2", EvaluationID: ev1.ID, Value: "15"})
	keep := mustCreate(t, s.Grades(), model.StudentGrade{StudentID: "s1", EvaluationID: ev2.ID, Value: "9"})

	require.NoError(t, s.Evaluations().Delete(ev1.ID))

	grades := s.Grades().List(nil)
	require.Len(t, grades, 1)
	assert.Equal(t, keep.ID, grades[0].ID)
}

func TestDeleteStudentCascades(t *testing.T) {
	s := newTestStore(t)
	c := mustCreate(t, s.Classes(), model.Class{Name: "6A"})
	s1 := mustCreate(t, s.Students(), model.Student{LastName: "A", FirstName: "A", ClassID: c.ID})
	s2 := mustCreate(t, s.Students(), model.Student{LastName: "B", FirstName: "B", ClassID: c.ID})
	mustCreate(t, s.Groups(), model.Group{Name: "G", ClassID: c.ID, Members: []string{s1.ID, s2.ID}})
	mustCreate(t, s.Absences(), model.Absence{StudentID: s1.ID, Date: "2025-09-02"})
	mustCreate(t, s.Grades(), model.StudentGrade{StudentID: s1.ID, EvaluationID: "e"})
	mustCreate(t, s.SeatingCharts(), model.SeatingChart{Name: "P", ClassID: c.ID, RoomID: "r",
		Arrangement: map[string]string{"0-0": s1.ID, "0-1": s2.ID}})

	require.NoError(t, s.Students().Delete(s1.ID))

	state := s.Snapshot()
	assert.Equal(t, []string{s2.ID}, state.Groups[0].Members)
	assert.Empty(t, state.Absences)
	assert.Empty(t, state.StudentGrades)
	assert.Equal(t, map[string]string{"0-1": s2.ID}, state.SeatingCharts[0].Arrangement)
}

func TestDeleteMissing(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.Rooms().Delete("nope"), ErrNotFound)
}

func TestGradePairIsUnique(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s.Grades(), model.StudentGrade{StudentID: "s1", EvaluationID: "e1"})

	_, err := s.Grades().Create(model.StudentGrade{StudentID: "s1", EvaluationID: "e1"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, 1, s.Grades().Count())
}

func TestSeatingChartArrangementChecks(t *testing.T) {
	s := newTestStore(t)
	r := mustCreate(t, s.Rooms(), model.Room{Name: "B12", Rows: 2, Cols: 2})

	chart := mustCreate(t, s.SeatingCharts(), model.SeatingChart{Name: "P", ClassID: "c", RoomID: r.ID})
	assert.Equal(t, "2025-09-01T08:00:00Z", chart.CreatedAt)
	assert.NotNil(t, chart.Arrangement)

	var ve *ValidationError
	_, err := s.SeatingCharts().Create(model.SeatingChart{Name: "P2", ClassID: "c", RoomID: r.ID,
		Arrangement: map[string]string{"0-0": "s1", "1-1": "s1"}})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "arrangement")

	_, err = s.SeatingCharts().Update(chart.ID, func(sc *model.SeatingChart) error {
		sc.Arrangement = map[string]string{"3-0": "s1"}
		return nil
	})
	assert.ErrorAs(t, err, &ve)

	_, err = s.SeatingCharts().Update(chart.ID, func(sc *model.SeatingChart) error {
		sc.Arrangement = map[string]string{"1-1": "s1"}
		return nil
	})
	require.NoError(t, err)

	// Shrinking the room would strand the student at 1-1.
	_, err = s.Rooms().Update(r.ID, func(room *model.Room) error {
		room.Rows = 1
		return nil
	})
	assert.ErrorAs(t, err, &ve)
}

func TestValueLists(t *testing.T) {
	s := newTestStore(t)
	subjects := s.Subjects()

	require.NoError(t, subjects.Add("  Latin "))
	assert.Equal(t, "Latin", subjects.List()[len(subjects.List())-1])

	require.NoError(t, subjects.Rename(0, "Lettres"))
	assert.Equal(t, "Lettres", subjects.List()[0])

	require.NoError(t, subjects.Remove(0))
	assert.Equal(t, "Mathématiques", subjects.List()[0])

	var ve *ValidationError
	assert.ErrorAs(t, subjects.Add(" "), &ve)
	assert.ErrorIs(t, s.Periods().Rename(10, "T4"), ErrNotFound)
	assert.ErrorIs(t, s.Periods().Remove(-1), ErrNotFound)
}

func TestApplyIsAllOrNothing(t *testing.T) {
	s := newTestStore(t)
	mustCreate(t, s.Classes(), model.Class{Name: "6A"})

	err := s.Apply(func(st *model.AppState) error {
		st.Classes = nil
		return fmt.Errorf("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, s.Classes().Count())

	require.NoError(t, s.Apply(func(st *model.AppState) error {
		st.Classes = nil
		return nil
	}))
	assert.Zero(t, s.Classes().Count())
	assert.NotNil(t, s.Snapshot().Classes)
}

func TestChangeHookFiresOnMutation(t *testing.T) {
	s := newTestStore(t)
	changes := 0
	s.SetChangeHook(func() { changes++ })

	c := mustCreate(t, s.Classes(), model.Class{Name: "6A"})
	_, _ = s.Classes().Update(c.ID, func(rec *model.Class) error { rec.Year = "2025"; return nil })
	s.SetICalURL("https://example.test/cal.ics")
	_ = s.Classes().Delete(c.ID)
	s.Replace(model.NewAppState())

	assert.Equal(t, 4, changes)
}
