// Package store holds the workbook in memory as typed, ordered collections.
// It is the only owner of entity data; everything else reads snapshots.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stemsi/classbook-backend/internal/model"
)

// Store is the in-memory entity store. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	state *model.AppState

	hookMu   sync.RWMutex
	onChange func()

	newID func() string
	now   func() time.Time

	classes           *Collection[model.Class]
	students          *Collection[model.Student]
	groups            *Collection[model.Group]
	evaluations       *Collection[model.Evaluation]
	grades            *Collection[model.StudentGrade]
	absences          *Collection[model.Absence]
	rooms             *Collection[model.Room]
	seatingCharts     *Collection[model.SeatingChart]
	timetableSlots    *Collection[model.TimetableSlot]
	timetableLessons  *Collection[model.TimetableLesson]
	skills            *Collection[model.Skill]
	acquisitionLevels *Collection[model.AcquisitionLevel]

	subjects *ValueList
	periods  *ValueList
}

// Option customizes a Store.
type Option func(*Store)

// WithIDGenerator replaces the UUID generator (tests use deterministic IDs).
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithClock replaces time.Now.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

// New creates a store seeded with a copy of state. A nil state starts an
// empty workbook with the default subjects and periods.
func New(state *model.AppState, opts ...Option) *Store {
	if state == nil {
		state = model.NewAppState()
	} else {
		state = state.Clone()
		state.Normalize()
	}

	s := &Store{
		state: state,
		newID: func() string { return uuid.New().String() },
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.wire()
	return s
}

// SetChangeHook registers fn to run after every successful mutation.
// It is called outside the store lock.
func (s *Store) SetChangeHook(fn func()) {
	s.hookMu.Lock()
	s.onChange = fn
	s.hookMu.Unlock()
}

func (s *Store) changed() {
	s.hookMu.RLock()
	fn := s.onChange
	s.hookMu.RUnlock()
	if fn != nil {
		fn()
	}
}

// NewID returns a fresh record ID.
func (s *Store) NewID() string { return s.newID() }

// Now returns the store clock's current time.
func (s *Store) Now() time.Time { return s.now() }

func (s *Store) Classes() *Collection[model.Class]                { return s.classes }
func (s *Store) Students() *Collection[model.Student]             { return s.students }
func (s *Store) Groups() *Collection[model.Group]                 { return s.groups }
func (s *Store) Evaluations() *Collection[model.Evaluation]       { return s.evaluations }
func (s *Store) Grades() *Collection[model.StudentGrade]          { return s.grades }
func (s *Store) Absences() *Collection[model.Absence]             { return s.absences }
func (s *Store) Rooms() *Collection[model.Room]                   { return s.rooms }
func (s *Store) SeatingCharts() *Collection[model.SeatingChart]   { return s.seatingCharts }
func (s *Store) TimetableSlots() *Collection[model.TimetableSlot] { return s.timetableSlots }
func (s *Store) TimetableLessons() *Collection[model.TimetableLesson] {
	return s.timetableLessons
}
func (s *Store) Skills() *Collection[model.Skill] { return s.skills }
func (s *Store) AcquisitionLevels() *Collection[model.AcquisitionLevel] {
	return s.acquisitionLevels
}

// Subjects returns the editable subject list.
func (s *Store) Subjects() *ValueList { return s.subjects }

// Periods returns the editable period list.
func (s *Store) Periods() *ValueList { return s.periods }

// ICalURL returns the configured calendar feed URL.
func (s *Store) ICalURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ICalURL
}

// SetICalURL stores the calendar feed URL.
func (s *Store) SetICalURL(url string) {
	s.mu.Lock()
	s.state.ICalURL = url
	s.mu.Unlock()
	s.changed()
}

// Snapshot returns a deep copy of the whole state.
func (s *Store) Snapshot() *model.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Replace swaps in a copy of state without firing the change hook.
// Used when loading from persistence.
func (s *Store) Replace(state *model.AppState) {
	next := state.Clone()
	next.Normalize()

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
}

// Apply runs fn against a copy of the state and commits the copy only when
// fn succeeds, so multi-collection writes are all-or-nothing.
func (s *Store) Apply(fn func(state *model.AppState) error) error {
	s.mu.Lock()
	next := s.state.Clone()
	if err := fn(next); err != nil {
		s.mu.Unlock()
		return err
	}
	next.Normalize()
	s.state = next
	s.mu.Unlock()

	s.changed()
	return nil
}

func (s *Store) wire() {
	s.classes = &Collection[model.Class]{
		st: s, name: "classes",
		slice: func(a *model.AppState) *[]model.Class { return &a.Classes },
		id:    func(r *model.Class) *string { return &r.ID },
		guard: guardClass,
	}
	s.students = &Collection[model.Student]{
		st: s, name: "students",
		slice:   func(a *model.AppState) *[]model.Student { return &a.Students },
		id:      func(r *model.Student) *string { return &r.ID },
		cascade: cascadeStudent,
	}
	s.groups = &Collection[model.Group]{
		st: s, name: "groups",
		slice: func(a *model.AppState) *[]model.Group { return &a.Groups },
		id:    func(r *model.Group) *string { return &r.ID },
		clone: model.CloneGroup,
		prepare: func(_ *Store, g *model.Group) {
			if g.Members == nil {
				g.Members = []string{}
			}
		},
		guard: guardGroup,
	}
	s.evaluations = &Collection[model.Evaluation]{
		st: s, name: "evaluations",
		slice:   func(a *model.AppState) *[]model.Evaluation { return &a.Evaluations },
		id:      func(r *model.Evaluation) *string { return &r.ID },
		clone:   model.CloneEvaluation,
		prepare: func(_ *Store, e *model.Evaluation) { e.ApplyDefaults() },
		check:   checkEvaluationNumbers,
		cascade: cascadeEvaluation,
	}
	s.grades = &Collection[model.StudentGrade]{
		st: s, name: "student_grades",
		slice: func(a *model.AppState) *[]model.StudentGrade { return &a.StudentGrades },
		id:    func(r *model.StudentGrade) *string { return &r.ID },
		clone: model.CloneStudentGrade,
		prepare: func(_ *Store, g *model.StudentGrade) {
			if g.SkillLevels == nil {
				g.SkillLevels = map[string]string{}
			}
		},
		check: checkGradeUnique,
	}
	s.absences = &Collection[model.Absence]{
		st: s, name: "absences",
		slice: func(a *model.AppState) *[]model.Absence { return &a.Absences },
		id:    func(r *model.Absence) *string { return &r.ID },
	}
	s.rooms = &Collection[model.Room]{
		st: s, name: "rooms",
		slice: func(a *model.AppState) *[]model.Room { return &a.Rooms },
		id:    func(r *model.Room) *string { return &r.ID },
		check: checkRoomFitsCharts,
		guard: guardRoom,
	}
	s.seatingCharts = &Collection[model.SeatingChart]{
		st: s, name: "seating_charts",
		slice: func(a *model.AppState) *[]model.SeatingChart { return &a.SeatingCharts },
		id:    func(r *model.SeatingChart) *string { return &r.ID },
		clone: model.CloneSeatingChart,
		prepare: func(st *Store, sc *model.SeatingChart) {
			if sc.Arrangement == nil {
				sc.Arrangement = map[string]string{}
			}
			sc.CreatedAt = st.now().UTC().Format(time.RFC3339)
		},
		check: checkArrangement,
	}
	s.timetableSlots = &Collection[model.TimetableSlot]{
		st: s, name: "timetable_slots",
		slice: func(a *model.AppState) *[]model.TimetableSlot { return &a.TimetableSlots },
		id:    func(r *model.TimetableSlot) *string { return &r.ID },
	}
	s.timetableLessons = &Collection[model.TimetableLesson]{
		st: s, name: "timetable_lessons",
		slice: func(a *model.AppState) *[]model.TimetableLesson { return &a.TimetableLessons },
		id:    func(r *model.TimetableLesson) *string { return &r.ID },
	}
	s.skills = &Collection[model.Skill]{
		st: s, name: "skills",
		slice: func(a *model.AppState) *[]model.Skill { return &a.Skills },
		id:    func(r *model.Skill) *string { return &r.ID },
		clone: model.CloneSkill,
		prepare: func(_ *Store, sk *model.Skill) {
			if sk.Subjects == nil {
				sk.Subjects = []string{}
			}
		},
		guard: guardSkill,
	}
	s.acquisitionLevels = &Collection[model.AcquisitionLevel]{
		st: s, name: "acquisition_levels",
		slice: func(a *model.AppState) *[]model.AcquisitionLevel { return &a.AcquisitionLevels },
		id:    func(r *model.AcquisitionLevel) *string { return &r.ID },
		guard: guardAcquisitionLevel,
	}

	s.subjects = &ValueList{st: s, name: "subjects", slice: func(a *model.AppState) *[]string { return &a.Subjects }}
	s.periods = &ValueList{st: s, name: "periods", slice: func(a *model.AppState) *[]string { return &a.Periods }}
}
