package history

import (
	"time"
)

// RunRecord is one completed run as persisted to history.
// Transcript holds the conversation as JSON, in append order.
type RunRecord struct {
	ID         string    `json:"id"`
	Request    string    `json:"request"`
	Answer     string    `json:"answer"`
	Exhausted  bool      `json:"exhausted"`
	Iterations int       `json:"iterations"`
	ToolCalls  int       `json:"tool_calls"`
	Transcript string    `json:"transcript"`
	CreatedAt  time.Time `json:"created_at"`
}
