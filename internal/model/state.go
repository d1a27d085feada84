package model

import "maps"

// AppState is the whole workbook. Its JSON form is the bulk import/export format
// and the document written by every persistence adapter.
type AppState struct {
	Classes           []Class            `json:"classes"`
	Students          []Student          `json:"students"`
	Groups            []Group            `json:"groups"`
	Evaluations       []Evaluation       `json:"evaluations"`
	StudentGrades     []StudentGrade     `json:"student_grades"`
	Absences          []Absence          `json:"absences"`
	TimetableSlots    []TimetableSlot    `json:"timetable_slots"`
	Skills            []Skill            `json:"skills"`
	AcquisitionLevels []AcquisitionLevel `json:"acquisition_levels"`
	Rooms             []Room             `json:"rooms"`
	SeatingCharts     []SeatingChart     `json:"seating_charts"`
	TimetableLessons  []TimetableLesson  `json:"timetable_lessons"`
	Subjects          []string           `json:"subjects"`
	Periods           []string           `json:"periods"`
	ICalURL           string             `json:"icalUrl"`
}

// DefaultSubjects returns the subject list used when nothing was stored yet.
func DefaultSubjects() []string {
	return []string{"Français", "Mathématiques", "Histoire", "Géographie", "Sciences", "Anglais", "EPS", "Arts"}
}

// DefaultPeriods returns the period list used when nothing was stored yet.
func DefaultPeriods() []string {
	return []string{"Trimestre 1", "Trimestre 2", "Trimestre 3"}
}

// NewAppState returns an empty workbook with the default subjects and periods.
func NewAppState() *AppState {
	return &AppState{
		Classes:           []Class{},
		Students:          []Student{},
		Groups:            []Group{},
		Evaluations:       []Evaluation{},
		StudentGrades:     []StudentGrade{},
		Absences:          []Absence{},
		TimetableSlots:    []TimetableSlot{},
		Skills:            []Skill{},
		AcquisitionLevels: []AcquisitionLevel{},
		Rooms:             []Room{},
		SeatingCharts:     []SeatingChart{},
		TimetableLessons:  []TimetableLesson{},
		Subjects:          DefaultSubjects(),
		Periods:           DefaultPeriods(),
	}
}

// Normalize replaces nil collections with empty ones so the JSON form
// always carries arrays.
func (s *AppState) Normalize() {
	if s.Classes == nil {
		s.Classes = []Class{}
	}
	if s.Students == nil {
		s.Students = []Student{}
	}
	if s.Groups == nil {
		s.Groups = []Group{}
	}
	if s.Evaluations == nil {
		s.Evaluations = []Evaluation{}
	}
	if s.StudentGrades == nil {
		s.StudentGrades = []StudentGrade{}
	}
	if s.Absences == nil {
		s.Absences = []Absence{}
	}
	if s.TimetableSlots == nil {
		s.TimetableSlots = []TimetableSlot{}
	}
	if s.Skills == nil {
		s.Skills = []Skill{}
	}
	if s.AcquisitionLevels == nil {
		s.AcquisitionLevels = []AcquisitionLevel{}
	}
	if s.Rooms == nil {
		s.Rooms = []Room{}
	}
	if s.SeatingCharts == nil {
		s.SeatingCharts = []SeatingChart{}
	}
	if s.TimetableLessons == nil {
		s.TimetableLessons = []TimetableLesson{}
	}
	if s.Subjects == nil {
		s.Subjects = []string{}
	}
	if s.Periods == nil {
		s.Periods = []string{}
	}
}

// Clone returns a deep copy. Callers may mutate the copy freely.
func (s *AppState) Clone() *AppState {
	c := &AppState{
		Classes:           cloneSlice(s.Classes, nil),
		Students:          cloneSlice(s.Students, nil),
		Groups:            cloneSlice(s.Groups, CloneGroup),
		Evaluations:       cloneSlice(s.Evaluations, CloneEvaluation),
		StudentGrades:     cloneSlice(s.StudentGrades, CloneStudentGrade),
		Absences:          cloneSlice(s.Absences, nil),
		TimetableSlots:    cloneSlice(s.TimetableSlots, nil),
		Skills:            cloneSlice(s.Skills, CloneSkill),
		AcquisitionLevels: cloneSlice(s.AcquisitionLevels, nil),
		Rooms:             cloneSlice(s.Rooms, nil),
		SeatingCharts:     cloneSlice(s.SeatingCharts, CloneSeatingChart),
		TimetableLessons:  cloneSlice(s.TimetableLessons, nil),
		Subjects:          cloneSlice(s.Subjects, nil),
		Periods:           cloneSlice(s.Periods, nil),
		ICalURL:           s.ICalURL,
	}
	return c
}

func cloneSlice[T any](src []T, deep func(T) T) []T {
	if src == nil {
		return nil
	}
	out := make([]T, len(src))
	for i, v := range src {
		if deep != nil {
			v = deep(v)
		}
		out[i] = v
	}
	return out
}

func cloneStrings(src []string) []string {
	if src == nil {
		return nil
	}
	return append(make([]string, 0, len(src)), src...)
}

// CloneGroup deep-copies a group.
func CloneGroup(g Group) Group {
	g.Members = cloneStrings(g.Members)
	return g
}

// CloneEvaluation deep-copies an evaluation.
func CloneEvaluation(e Evaluation) Evaluation {
	e.SkillIDs = cloneStrings(e.SkillIDs)
	if e.MaxPoints != nil {
		mp := *e.MaxPoints
		e.MaxPoints = &mp
	}
	return e
}

// CloneStudentGrade deep-copies a grade.
func CloneStudentGrade(g StudentGrade) StudentGrade {
	g.SkillLevels = maps.Clone(g.SkillLevels)
	return g
}

// CloneSkill deep-copies a skill.
func CloneSkill(s Skill) Skill {
	s.Subjects = cloneStrings(s.Subjects)
	return s
}

// CloneSeatingChart deep-copies a seating chart.
func CloneSeatingChart(sc SeatingChart) SeatingChart {
	sc.Arrangement = maps.Clone(sc.Arrangement)
	return sc
}
