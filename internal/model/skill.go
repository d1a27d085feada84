package model

// Skill is a competency assessed by skill-type evaluations.
type Skill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name" validate:"notblank"`
	Description string   `json:"description"`
	Subjects    []string `json:"subjects"`
}

// AcquisitionLevel is one step of the ordered scale used to grade skills.
type AcquisitionLevel struct {
	ID              string `json:"id"`
	Order           int    `json:"order"`
	Code            string `json:"code" validate:"notblank"`
	Label           string `json:"label"`
	SuccessRate     int    `json:"successRate"`
	GradeEquivalent string `json:"gradeEquivalent"`
	ColorBg         string `json:"colorBg"`
	ColorText       string `json:"colorText"`
}
