package model

// Room is a classroom laid out as a grid of desks.
type Room struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"notblank"`
	Description string `json:"description"`
	Rows        int    `json:"rows" validate:"min=1"`
	Cols        int    `json:"cols" validate:"min=1"`
}

// SeatingChart places the students of a class on the desks of a room.
// Arrangement maps a desk key ("row-col") to a student ID.
type SeatingChart struct {
	ID          string            `json:"id"`
	Name        string            `json:"name" validate:"notblank"`
	ClassID     string            `json:"classId" validate:"notblank"`
	RoomID      string            `json:"roomId" validate:"notblank"`
	Arrangement map[string]string `json:"arrangement"`
	CreatedAt   string            `json:"createdAt"`
}
