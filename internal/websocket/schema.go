package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionState         Action = "state"
	ActionSelectDesk    Action = "select_desk"
	ActionAssignStudent Action = "assign_student"
	ActionSave          Action = "save"
	ActionPing          Action = "ping"
)

// RequestPayload is every message a seating editor client sends. Only the
// fields of the given action are read.
type RequestPayload struct {
	Action    Action `json:"action"`
	Desk      string `json:"desk,omitempty"`
	StudentID string `json:"studentId,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState    Event = "state"
	EventSaved    Event = "saved"
	EventRejected Event = "rejected"
	EventError    Event = "error"
	EventPong     Event = "pong"
)

// StateResponse carries the editor state after an action.
type StateResponse struct {
	Event Event `json:"event"`
	Data  any   `json:"data"`
}

// RejectedResponse reports an action refused by the editor. The session
// state is unchanged and is sent along.
type RejectedResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code"`
	Error string `json:"error"`
	Data  any    `json:"data,omitempty"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
