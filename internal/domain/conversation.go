package domain

import (
	"time"
)

// Conversation roles. The server never originates turns itself; history is
// owned and resubmitted by the client on every request.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single conversation turn. Turns are immutable once appended and
// their order is the conversational order.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}
