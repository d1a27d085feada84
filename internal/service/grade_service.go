package service

import (
	"bytes"
	"fmt"
	"maps"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/stemsi/classbook-backend/internal/model"
	"github.com/stemsi/classbook-backend/internal/query"
	"github.com/stemsi/classbook-backend/internal/store"
)

// GradeService handles grade entry and grade table rendering.
type GradeService struct {
	store *store.Store
	log   zerolog.Logger
}

// NewGradeService creates a new GradeService.
func NewGradeService(st *store.Store, log zerolog.Logger) *GradeService {
	return &GradeService{store: st, log: log.With().Str("component", "grade_service").Logger()}
}

// GradeInput is one grade entry. Value and SkillLevels are stored as given.
type GradeInput struct {
	StudentID    string            `json:"studentId" binding:"notblank"`
	EvaluationID string            `json:"evaluationId" binding:"notblank"`
	Value        model.GradeValue  `json:"value"`
	Comment      string            `json:"comment"`
	SkillLevels  map[string]string `json:"skillLevels"`
}

// Table returns the grade grid of a context.
func (s *GradeService) Table(ctx query.Context) (query.GradeTable, error) {
	if !ctx.Complete() {
		fields := map[string]string{}
		if ctx.TargetID == "" {
			fields["targetId"] = "targetId is required"
		}
		if ctx.Period == "" {
			fields["period"] = "period is required"
		}
		if ctx.Subject == "" {
			fields["subject"] = "subject is required"
		}
		return query.GradeTable{}, &store.ValidationError{Fields: fields}
	}
	if ctx.TargetType == "" {
		ctx.TargetType = model.TargetClass
	}
	return query.BuildGradeTable(s.store.Snapshot(), ctx), nil
}

// SaveGrade creates or replaces the grade of a student for an evaluation.
// created reports whether a new record was added.
func (s *GradeService) SaveGrade(in GradeInput) (grade model.StudentGrade, created bool, err error) {
	in.SkillLevels = maps.Clone(in.SkillLevels)
	if in.SkillLevels == nil {
		in.SkillLevels = map[string]string{}
	}

	err = s.store.Apply(func(st *model.AppState) error {
		if !hasID(st.Students, in.StudentID, func(r model.Student) string { return r.ID }) {
			return store.NotFound("students", in.StudentID)
		}
		if !hasID(st.Evaluations, in.EvaluationID, func(r model.Evaluation) string { return r.ID }) {
			return store.NotFound("evaluations", in.EvaluationID)
		}

		if existing := query.FindGrade(st, in.StudentID, in.EvaluationID); existing != nil {
			existing.Value = in.Value
			existing.Comment = in.Comment
			existing.SkillLevels = in.SkillLevels
			grade = model.CloneStudentGrade(*existing)
			return nil
		}

		grade = model.StudentGrade{
			ID:           s.store.NewID(),
			StudentID:    in.StudentID,
			EvaluationID: in.EvaluationID,
			Value:        in.Value,
			Comment:      in.Comment,
			SkillLevels:  in.SkillLevels,
		}
		st.StudentGrades = append(st.StudentGrades, grade)
		grade = model.CloneStudentGrade(grade)
		created = true
		return nil
	})
	if err != nil {
		return model.StudentGrade{}, false, err
	}

	s.log.Debug().
		Str("student_id", in.StudentID).
		Str("evaluation_id", in.EvaluationID).
		Bool("created", created).
		Msg("Grade saved")
	return grade, created, nil
}

// ─── Workbook export ───────────────────────────────────────────────────

const maxSheetName = 31

var sheetNameCleaner = strings.NewReplacer("[", "(", "]", ")", ":", "-", "*", "", "?", "", "/", "-", `\`, "-")

// ExportWorkbook renders every grade table of a period as an XLSX workbook,
// one sheet per (target, subject) pair in order of first evaluation.
func (s *GradeService) ExportWorkbook(period string) ([]byte, error) {
	if strings.TrimSpace(period) == "" {
		return nil, store.Invalid("period", "period is required")
	}
	st := s.store.Snapshot()

	var contexts []query.Context
	seen := map[query.Context]bool{}
	for _, ev := range st.Evaluations {
		if ev.Period != period {
			continue
		}
		ctx := query.Context{TargetID: ev.TargetID, TargetType: ev.TargetType, Period: period, Subject: ev.Subject}
		if !seen[ctx] {
			seen[ctx] = true
			contexts = append(contexts, ctx)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if len(contexts) == 0 {
		if err := f.SetSheetName("Sheet1", "Notes"); err != nil {
			return nil, err
		}
		if err := f.SetCellValue("Notes", "A1", "Aucune évaluation pour "+period); err != nil {
			return nil, err
		}
	}

	used := map[string]bool{}
	for i, ctx := range contexts {
		name := uniqueSheetName(query.TargetName(st, ctx.TargetID, ctx.TargetType)+" - "+ctx.Subject, used)
		idx, err := f.NewSheet(name)
		if err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", name, err)
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}
		if err := writeGradeSheet(f, name, query.BuildGradeTable(st, ctx), bold); err != nil {
			return nil, err
		}
	}
	if len(contexts) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	s.log.Info().Str("period", period).Int("sheets", max(len(contexts), 1)).Msg("Grade workbook exported")
	return buf.Bytes(), nil
}

func writeGradeSheet(f *excelize.File, sheet string, table query.GradeTable, headerStyle int) error {
	header := []string{"Élève"}
	for _, ev := range table.Evaluations {
		label := fmt.Sprintf("%s (%s, coef. %g)", ev.Name, ev.Date, ev.Coefficient.Float64())
		if ev.IsBonus {
			label += " bonus"
		}
		header = append(header, label)
	}
	header = append(header, "Moyenne")

	for col, v := range header {
		if err := setCell(f, sheet, col+1, 1, v); err != nil {
			return err
		}
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for r, row := range table.Rows {
		line := r + 2
		if err := setCell(f, sheet, 1, line, row.Student.LastName+" "+row.Student.FirstName); err != nil {
			return err
		}
		for c, cell := range row.Cells {
			if err := setCell(f, sheet, c+2, line, cell.Display); err != nil {
				return err
			}
		}
		if err := setCell(f, sheet, len(header), line, row.Average); err != nil {
			return err
		}
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, v any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, v)
}

// uniqueSheetName makes name a valid, unused worksheet name.
func uniqueSheetName(name string, used map[string]bool) string {
	name = strings.TrimSpace(sheetNameCleaner.Replace(name))
	if name == "" {
		name = "Notes"
	}
	base := truncateRunes(name, maxSheetName)
	candidate := base
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateRunes(name, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func hasID[T any](items []T, id string, key func(T) string) bool {
	for _, it := range items {
		if key(it) == id {
			return true
		}
	}
	return false
}
