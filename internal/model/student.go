package model

// Student belongs to exactly one class and to any number of groups.
type Student struct {
	ID        string `json:"id"`
	LastName  string `json:"lastName" validate:"notblank"`
	FirstName string `json:"firstName" validate:"notblank"`
	Genre     string `json:"genre"`
	BirthDate string `json:"birthDate"`
	ClassID   string `json:"classId" validate:"notblank"`
}

// FullName returns "First Last".
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Absence records a missed lesson or day for a student.
type Absence struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId" validate:"notblank"`
	Date      string `json:"date" validate:"notblank"`
	Type      string `json:"type"`
	Reason    string `json:"reason"`
	Justified bool   `json:"justified"`
}
