package model

// TimetableSlot is one period of the recurring weekly grid.
type TimetableSlot struct {
	ID    string `json:"id"`
	Day   string `json:"day" validate:"notblank"`
	Start string `json:"start" validate:"notblank"`
	End   string `json:"end" validate:"notblank"`
	Label string `json:"label"`
}

// TimetableLesson is a dated lesson. Date is YYYY-MM-DD, Start/End are HH:MM.
type TimetableLesson struct {
	ID      string `json:"id"`
	Date    string `json:"date" validate:"notblank"`
	Start   string `json:"start" validate:"notblank"`
	End     string `json:"end" validate:"notblank"`
	Subject string `json:"subject"`
	ClassID string `json:"classId"`
	Room    string `json:"room"`
	Teacher string `json:"teacher"`
}

// FeedEvent is a lesson read from the external calendar feed. It is never stored.
type FeedEvent struct {
	Date        string `json:"date"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Class       string `json:"class"`
	IsCancelled bool   `json:"isCancelled"`
}
