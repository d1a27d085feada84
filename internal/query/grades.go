// Package query derives read-only views from a workbook snapshot.
// Nothing here mutates or caches state.
package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/stemsi/classbook-backend/internal/model"
)

// NoAverage is shown when an average cannot be computed.
const NoAverage = "--"

// skillFallback is shown for a skill grade whose level is unknown.
const skillFallback = "Comp."

// Context scopes a grade table.
type Context struct {
	TargetID   string           `json:"targetId" form:"targetId"`
	TargetType model.TargetType `json:"targetType" form:"targetType"`
	Period     string           `json:"period" form:"period"`
	Subject    string           `json:"subject" form:"subject"`
}

// Complete reports whether every field needed for a grade table is set.
func (c Context) Complete() bool {
	return c.TargetID != "" && c.Period != "" && c.Subject != ""
}

// StudentsForTarget returns the students of a class or group in store order.
// An unknown group yields an empty list.
func StudentsForTarget(st *model.AppState, targetID string, targetType model.TargetType) []model.Student {
	out := []model.Student{}
	if targetType == model.TargetClass {
		for _, s := range st.Students {
			if s.ClassID == targetID {
				out = append(out, s)
			}
		}
		return out
	}

	i := slices.IndexFunc(st.Groups, func(g model.Group) bool { return g.ID == targetID })
	if i < 0 {
		return out
	}
	group := st.Groups[i]
	for _, s := range st.Students {
		if group.HasMember(s.ID) {
			out = append(out, s)
		}
	}
	return out
}

// EvaluationsForContext returns the evaluations matching all four context
// fields, oldest first. Evaluations sharing a date keep insertion order.
func EvaluationsForContext(st *model.AppState, ctx Context) []model.Evaluation {
	out := []model.Evaluation{}
	for _, ev := range st.Evaluations {
		if ev.TargetID == ctx.TargetID && ev.TargetType == ctx.TargetType &&
			ev.Period == ctx.Period && ev.Subject == ctx.Subject {
			out = append(out, ev)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Evaluation) int {
		return strings.Compare(a.Date, b.Date)
	})
	return out
}

// FindGrade returns the grade of a student for an evaluation, or nil.
func FindGrade(st *model.AppState, studentID, evaluationID string) *model.StudentGrade {
	for i := range st.StudentGrades {
		g := &st.StudentGrades[i]
		if g.StudentID == studentID && g.EvaluationID == evaluationID {
			return g
		}
	}
	return nil
}

// FormatGradeCell renders a grade for display in a grade table cell.
// Skill grades show the level code of the lowest skill ID that was graded.
func FormatGradeCell(st *model.AppState, grade *model.StudentGrade, ev model.Evaluation) string {
	if grade == nil {
		return ""
	}
	if ev.Type.Numeric() {
		return string(grade.Value)
	}
	if ev.Type != model.EvaluationSkill {
		return ""
	}
	if len(grade.SkillLevels) == 0 {
		return skillFallback
	}

	skillIDs := make([]string, 0, len(grade.SkillLevels))
	for id := range grade.SkillLevels {
		skillIDs = append(skillIDs, id)
	}
	slices.Sort(skillIDs)
	levelID := grade.SkillLevels[skillIDs[0]]
	for _, lvl := range st.AcquisitionLevels {
		if lvl.ID == levelID {
			return lvl.Code
		}
	}
	return skillFallback
}

// Average computes a student's weighted average on a /20 scale:
// sum(value/maxPoints*20*coef) / sum(coef). Bonus evaluations add to the
// numerator only. Non-numeric evaluations and marks are skipped.
func Average(st *model.AppState, studentID string, evals []model.Evaluation) (float64, bool) {
	var num, den float64
	graded := false
	for _, ev := range evals {
		if !ev.Type.Numeric() || ev.MaxPoints == nil || !(*ev.MaxPoints > 0) || !(ev.Coefficient > 0) {
			continue
		}
		g := FindGrade(st, studentID, ev.ID)
		if g == nil {
			continue
		}
		v, ok := g.Value.Float()
		if !ok {
			continue
		}
		coef := ev.Coefficient.Float64()
		num += v / ev.MaxPoints.Float64() * 20 * coef
		graded = true
		if !ev.IsBonus {
			den += coef
		}
	}
	if !graded || den == 0 {
		return 0, false
	}
	return num / den, true
}

// FormatAverage renders an average with two decimals, or NoAverage.
func FormatAverage(avg float64, ok bool) string {
	if !ok {
		return NoAverage
	}
	return fmt.Sprintf("%.2f", avg)
}

// EvaluationColumn is a grade table header.
type EvaluationColumn struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Date        string       `json:"date"`
	Coefficient model.Number `json:"coefficient"`
	IsBonus     bool         `json:"isBonus"`
}

// GradeCell is one student × evaluation cell.
type GradeCell struct {
	EvaluationID string `json:"evaluationId"`
	GradeID      string `json:"gradeId,omitempty"`
	Display      string `json:"display"`
	Comment      string `json:"comment,omitempty"`
}

// GradeRow is one student line of a grade table.
type GradeRow struct {
	Student model.Student `json:"student"`
	Cells   []GradeCell   `json:"cells"`
	Average string        `json:"average"`
}

// GradeTable is the grade grid of a context.
type GradeTable struct {
	Context     Context            `json:"context"`
	Evaluations []EvaluationColumn `json:"evaluations"`
	Rows        []GradeRow         `json:"rows"`
}

// BuildGradeTable assembles the grade grid of ctx.
func BuildGradeTable(st *model.AppState, ctx Context) GradeTable {
	evals := EvaluationsForContext(st, ctx)
	table := GradeTable{
		Context:     ctx,
		Evaluations: make([]EvaluationColumn, 0, len(evals)),
		Rows:        []GradeRow{},
	}
	for _, ev := range evals {
		table.Evaluations = append(table.Evaluations, EvaluationColumn{
			ID: ev.ID, Name: ev.Name, Date: ev.Date, Coefficient: ev.Coefficient, IsBonus: ev.IsBonus,
		})
	}

	for _, s := range StudentsForTarget(st, ctx.TargetID, ctx.TargetType) {
		row := GradeRow{Student: s, Cells: make([]GradeCell, 0, len(evals))}
		for _, ev := range evals {
			cell := GradeCell{EvaluationID: ev.ID}
			if g := FindGrade(st, s.ID, ev.ID); g != nil {
				cell.GradeID = g.ID
				cell.Comment = g.Comment
				cell.Display = FormatGradeCell(st, g, ev)
			}
			row.Cells = append(row.Cells, cell)
		}
		row.Average = FormatAverage(Average(st, s.ID, evals))
		table.Rows = append(table.Rows, row)
	}
	return table
}

// TargetName returns the display name of a class or group, or "N/A".
func TargetName(st *model.AppState, targetID string, targetType model.TargetType) string {
	if targetType == model.TargetClass {
		return ClassName(st, targetID, "N/A")
	}
	for _, g := range st.Groups {
		if g.ID == targetID {
			return g.Name
		}
	}
	return "N/A"
}

// ClassName returns the name of a class, or fallback when unknown.
func ClassName(st *model.AppState, classID, fallback string) string {
	for _, c := range st.Classes {
		if c.ID == classID {
			return c.Name
		}
	}
	return fallback
}
