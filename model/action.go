package model

// ActionItem is a user-trackable task derived from one compliance finding.
// IDs increase monotonically across the session and are never reused.
type ActionItem struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}
