package model

// Class is a school class. Students and groups hang off it by classId.
type Class struct {
	ID    string `json:"id"`
	Name  string `json:"name" validate:"notblank"`
	Level string `json:"level"`
	Year  string `json:"year"`
}

// Group is a named subset of one class's students (half-class, option, ...).
type Group struct {
	ID      string   `json:"id"`
	Name    string   `json:"name" validate:"notblank"`
	Type    string   `json:"type"`
	ClassID string   `json:"classId" validate:"notblank"`
	Members []string `json:"members"`
}

// HasMember reports whether the student belongs to the group.
func (g Group) HasMember(studentID string) bool {
	for _, id := range g.Members {
		if id == studentID {
			return true
		}
	}
	return false
}
