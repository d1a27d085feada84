package model

// EvaluationType decides how a grade is entered and displayed.
type EvaluationType string

const (
	EvaluationGrade      EvaluationType = "grade"
	EvaluationSkill      EvaluationType = "skill"
	EvaluationGradeSkill EvaluationType = "grade_skill"
)

// Numeric reports whether grades of this type carry a numeric value.
func (t EvaluationType) Numeric() bool {
	return t == EvaluationGrade || t == EvaluationGradeSkill
}

// TargetType tells whether an evaluation targets a whole class or a group.
type TargetType string

const (
	TargetClass TargetType = "class"
	TargetGroup TargetType = "group"
)

// Evaluation is a graded piece of work for a target within a period and subject.
type Evaluation struct {
	ID          string         `json:"id"`
	Name        string         `json:"name" validate:"notblank"`
	Date        string         `json:"date"`
	TargetType  TargetType     `json:"targetType" validate:"omitempty,oneof=class group"`
	TargetID    string         `json:"targetId" validate:"notblank"`
	Period      string         `json:"period" validate:"notblank"`
	Subject     string         `json:"subject" validate:"notblank"`
	Type        EvaluationType `json:"type" validate:"omitempty,oneof=grade skill grade_skill"`
	MaxPoints   *Number        `json:"maxPoints"`
	Coefficient Number         `json:"coefficient"`
	IsBonus     bool           `json:"isBonus"`
	SkillIDs    []string       `json:"skillIds"`
}

// ApplyDefaults fills the fields a freshly created evaluation may omit.
func (e *Evaluation) ApplyDefaults() {
	if e.TargetType == "" {
		e.TargetType = TargetClass
	}
	if e.Type == "" {
		e.Type = EvaluationGrade
	}
	if e.Coefficient == 0 {
		e.Coefficient = 1
	}
	if e.Type.Numeric() && e.MaxPoints == nil {
		twenty := Number(20)
		e.MaxPoints = &twenty
	}
	if e.SkillIDs == nil {
		e.SkillIDs = []string{}
	}
}

// UsesSkill reports whether the evaluation assesses the given skill.
func (e Evaluation) UsesSkill(skillID string) bool {
	for _, id := range e.SkillIDs {
		if id == skillID {
			return true
		}
	}
	return false
}

// StudentGrade is the result of one student for one evaluation.
// At most one exists per (StudentID, EvaluationID).
type StudentGrade struct {
	ID           string            `json:"id"`
	StudentID    string            `json:"studentId" validate:"notblank"`
	EvaluationID string            `json:"evaluationId" validate:"notblank"`
	Value        GradeValue        `json:"value"`
	Comment      string            `json:"comment"`
	SkillLevels  map[string]string `json:"skillLevels"`
}
