package core

// Role identifies the author of a conversation turn.
type Role int

const (
	// RoleUser represents the question-asking side of an exchange.
	RoleUser Role = iota + 1
	// RoleAssistant represents the answering side of an exchange.
	RoleAssistant
)

// DefaultExchangeWindow is the number of question/answer exchanges kept
// as conversational context when no other size is configured.
const DefaultExchangeWindow = 3

// Turn is a single conversation entry.
type Turn struct {
	Role    Role
	Content string
}

// Window is an ordered sequence of turns, oldest first. Window values
// are immutable: Append and Trim return new windows and never modify
// the receiver, so callers may share windows across goroutines freely.
type Window []Turn

// Append returns a new window with one turn added at the end.
func (w Window) Append(role Role, content string) Window {
	out := make(Window, len(w), len(w)+1)
	copy(out, w)
	return append(out, Turn{Role: role, Content: content})
}

// Trim returns a window truncated to the most recent 2*exchanges turns,
// dropping from the front. Ordering is preserved; a window already
// within the cap is returned as-is. A non-positive exchange count
// yields an empty window.
func (w Window) Trim(exchanges int) Window {
	if exchanges <= 0 {
		return Window{}
	}
	max := 2 * exchanges
	if len(w) <= max {
		return w
	}
	out := make(Window, max)
	copy(out, w[len(w)-max:])
	return out
}
