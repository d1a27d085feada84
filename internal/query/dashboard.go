package query

import (
	"slices"
	"strings"
	"time"

	"github.com/stemsi/classbook-backend/internal/model"
)

// DefaultRecentEvaluations is the size of the dashboard's recent list.
const DefaultRecentEvaluations = 5

// Stats counts the records of each collection.
type Stats struct {
	Classes           int `json:"classes"`
	Students          int `json:"students"`
	Groups            int `json:"groups"`
	Evaluations       int `json:"evaluations"`
	StudentGrades     int `json:"student_grades"`
	Absences          int `json:"absences"`
	Rooms             int `json:"rooms"`
	SeatingCharts     int `json:"seating_charts"`
	TimetableSlots    int `json:"timetable_slots"`
	TimetableLessons  int `json:"timetable_lessons"`
	Skills            int `json:"skills"`
	AcquisitionLevels int `json:"acquisition_levels"`
	Subjects          int `json:"subjects"`
	Periods           int `json:"periods"`
}

// DashboardStats counts every collection.
func DashboardStats(st *model.AppState) Stats {
	return Stats{
		Classes:           len(st.Classes),
		Students:          len(st.Students),
		Groups:            len(st.Groups),
		Evaluations:       len(st.Evaluations),
		StudentGrades:     len(st.StudentGrades),
		Absences:          len(st.Absences),
		Rooms:             len(st.Rooms),
		SeatingCharts:     len(st.SeatingCharts),
		TimetableSlots:    len(st.TimetableSlots),
		TimetableLessons:  len(st.TimetableLessons),
		Skills:            len(st.Skills),
		AcquisitionLevels: len(st.AcquisitionLevels),
		Subjects:          len(st.Subjects),
		Periods:           len(st.Periods),
	}
}

// ClassOverview is a class with its headcount.
type ClassOverview struct {
	ClassID      string `json:"classId"`
	Name         string `json:"name"`
	Level        string `json:"level"`
	StudentCount int    `json:"studentCount"`
}

// ClassesOverview lists every class with its student count, in store order.
func ClassesOverview(st *model.AppState) []ClassOverview {
	counts := make(map[string]int, len(st.Classes))
	for _, s := range st.Students {
		counts[s.ClassID]++
	}
	out := make([]ClassOverview, 0, len(st.Classes))
	for _, c := range st.Classes {
		out = append(out, ClassOverview{ClassID: c.ID, Name: c.Name, Level: c.Level, StudentCount: counts[c.ID]})
	}
	return out
}

// ScheduledLesson is a stored lesson with its class name resolved.
type ScheduledLesson struct {
	model.TimetableLesson
	ClassName string `json:"className"`
}

// TodaySchedule returns the lessons dated today, ordered by start time.
// "HH:MM" strings sort chronologically.
func TodaySchedule(st *model.AppState, today time.Time) []ScheduledLesson {
	ymd := today.Format(DateLayout)
	out := []ScheduledLesson{}
	for _, l := range st.TimetableLessons {
		if l.Date == ymd {
			out = append(out, ScheduledLesson{TimetableLesson: l, ClassName: ClassName(st, l.ClassID, "N/A")})
		}
	}
	slices.SortStableFunc(out, func(a, b ScheduledLesson) int { return strings.Compare(a.Start, b.Start) })
	return out
}

// RecentEvaluation is an evaluation with its target name resolved.
type RecentEvaluation struct {
	model.Evaluation
	TargetName string `json:"targetName"`
}

// RecentEvaluations returns the n most recent evaluations, newest first.
// n <= 0 means DefaultRecentEvaluations.
func RecentEvaluations(st *model.AppState, n int) []RecentEvaluation {
	if n <= 0 {
		n = DefaultRecentEvaluations
	}
	evals := slices.Clone(st.Evaluations)
	slices.SortStableFunc(evals, func(a, b model.Evaluation) int { return strings.Compare(b.Date, a.Date) })
	if len(evals) > n {
		evals = evals[:n]
	}

	out := make([]RecentEvaluation, 0, len(evals))
	for _, ev := range evals {
		out = append(out, RecentEvaluation{Evaluation: ev, TargetName: TargetName(st, ev.TargetID, ev.TargetType)})
	}
	return out
}

// Dashboard bundles the home screen views.
type Dashboard struct {
	Stats             Stats              `json:"stats"`
	Classes           []ClassOverview    `json:"classes"`
	Today             []ScheduledLesson  `json:"today"`
	RecentEvaluations []RecentEvaluation `json:"recentEvaluations"`
}

// BuildDashboard computes every dashboard view at once.
func BuildDashboard(st *model.AppState, today time.Time) Dashboard {
	return Dashboard{
		Stats:             DashboardStats(st),
		Classes:           ClassesOverview(st),
		Today:             TodaySchedule(st, today),
		RecentEvaluations: RecentEvaluations(st, DefaultRecentEvaluations),
	}
}
