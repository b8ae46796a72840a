package model

// TurnState tracks the lifecycle of one question/answer exchange.
type TurnState string

const (
	TurnPending  TurnState = "pending"
	TurnAnswered TurnState = "answered"
	TurnErrored  TurnState = "errored"
)

// Turn is one question/answer exchange in a session transcript. The
// question is immutable once created; the answer is set exactly once,
// moving the turn out of the pending state.
type Turn struct {
	ID         int       `json:"id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	AnswerHTML string    `json:"answer_html,omitempty"`
	State      TurnState `json:"state"`
}
