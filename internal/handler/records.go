package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/stemsi/classbook-backend/internal/model"
	"github.com/stemsi/classbook-backend/internal/store"
)

// Records groups the CRUD handlers of every store collection.
type Records struct {
	Classes           *RecordHandler[model.Class]
	Students          *RecordHandler[model.Student]
	Groups            *RecordHandler[model.Group]
	Evaluations       *RecordHandler[model.Evaluation]
	Grades            *RecordHandler[model.StudentGrade]
	Absences          *RecordHandler[model.Absence]
	Rooms             *RecordHandler[model.Room]
	SeatingCharts     *RecordHandler[model.SeatingChart]
	TimetableSlots    *RecordHandler[model.TimetableSlot]
	TimetableLessons  *RecordHandler[model.TimetableLesson]
	Skills            *RecordHandler[model.Skill]
	AcquisitionLevels *RecordHandler[model.AcquisitionLevel]
}

// NewRecords wires a RecordHandler to each collection of st.
func NewRecords(st *store.Store) *Records {
	return &Records{
		Classes: NewRecordHandler(st.Classes(), "class", "classes", nil),
		Students: NewRecordHandler(st.Students(), "student", "students",
			queryEquals("classId", func(s model.Student) string { return s.ClassID })),
		Groups: NewRecordHandler(st.Groups(), "group", "groups",
			queryEquals("classId", func(g model.Group) string { return g.ClassID })),
		Evaluations: NewRecordHandler(st.Evaluations(), "evaluation", "evaluations", allOf(
			queryEquals("targetId", func(e model.Evaluation) string { return e.TargetID }),
			queryEquals("targetType", func(e model.Evaluation) string { return string(e.TargetType) }),
			queryEquals("period", func(e model.Evaluation) string { return e.Period }),
			queryEquals("subject", func(e model.Evaluation) string { return e.Subject }),
		)),
		Grades: NewRecordHandler(st.Grades(), "grade", "grades", allOf(
			queryEquals("studentId", func(g model.StudentGrade) string { return g.StudentID }),
			queryEquals("evaluationId", func(g model.StudentGrade) string { return g.EvaluationID }),
		)),
		Absences: NewRecordHandler(st.Absences(), "absence", "absences", allOf(
			queryEquals("studentId", func(a model.Absence) string { return a.StudentID }),
			absencesOfClass(st),
		)),
		Rooms: NewRecordHandler(st.Rooms(), "room", "rooms", nil),
		SeatingCharts: NewRecordHandler(st.SeatingCharts(), "seating_chart", "seating_charts",
			queryEquals("classId", func(sc model.SeatingChart) string { return sc.ClassID })),
		TimetableSlots: NewRecordHandler(st.TimetableSlots(), "timetable_slot", "timetable_slots",
			queryEquals("day", func(s model.TimetableSlot) string { return s.Day })),
		TimetableLessons: NewRecordHandler(st.TimetableLessons(), "timetable_lesson", "timetable_lessons", allOf(
			queryEquals("date", func(l model.TimetableLesson) string { return l.Date }),
			queryEquals("classId", func(l model.TimetableLesson) string { return l.ClassID }),
		)),
		Skills:            NewRecordHandler(st.Skills(), "skill", "skills", nil),
		AcquisitionLevels: NewRecordHandler(st.AcquisitionLevels(), "acquisition_level", "acquisition_levels", nil),
	}
}

// absencesOfClass keeps absences of students in the classId query parameter.
func absencesOfClass(st *store.Store) Filter[model.Absence] {
	return func(c *gin.Context) func(model.Absence) bool {
		classID := c.Query("classId")
		if classID == "" {
			return nil
		}
		inClass := map[string]bool{}
		for _, s := range st.Students().List(func(s model.Student) bool { return s.ClassID == classID }) {
			inClass[s.ID] = true
		}
		return func(a model.Absence) bool { return inClass[a.StudentID] }
	}
}
