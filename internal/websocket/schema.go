package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing   Action = "ping"
	ActionAnswer Action = "answer"
	ActionSubmit Action = "submit"
)

// ClientMessage is the single inbound shape: the action plus the fields any
// action may carry. Unused fields stay zero.
type ClientMessage struct {
	Action Action `json:"action"`
	Option int    `json:"option,omitempty"` // 1-based, answer action only
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError   Event = "error"
	EventSuccess Event = "success"
	EventTick    Event = "tick"
	EventGraded  Event = "graded"
	EventPong    Event = "pong"
)

// TickResponse is pushed every second while the session is in progress.
type TickResponse struct {
	Event         Event  `json:"event"`
	TimeRemaining int    `json:"time_remaining"`
	Status        string `json:"status"`
}

type AnswerResponse struct {
	Event  Event  `json:"event"`
	Status string `json:"status"`
}

// GradedResponse carries the final score report once the session is
// submitted, whether by the taker or by timeout.
type GradedResponse struct {
	Event       Event  `json:"event"`
	Status      string `json:"status"`
	Total       int    `json:"total"`
	Correct     int    `json:"correct"`
	Incorrect   int    `json:"incorrect"`
	Unattempted int    `json:"unattempted"`
	Percentage  int    `json:"percentage"`
	TimeTaken   int    `json:"time_taken"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
