package session

import "time"

// Role identifies the speaker of a history line.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Line is a single utterance in a session's history.
type Line struct {
	Role    Role
	Content string
}

// HistoryPairs is how many (user, assistant) exchanges a session retains.
// History is trimmed to the most recent pairs after every append.
const HistoryPairs = 3

const maxHistoryLines = HistoryPairs * 2

// Session holds the per-conversation cooking state.
type Session struct {
	ID string

	// CurrentDish is the last dish name the assistant committed to.
	CurrentDish string

	// CurrentRecipeText is the full generated recipe body for the current
	// dish, used as grounding context for follow-up questions. Only the
	// recipe pipeline writes it.
	CurrentRecipeText string

	History []Line

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot is a read-only copy of a session handed to turn handlers.
// Handlers never hold a reference into live store state.
type Snapshot struct {
	ID                string
	CurrentDish       string
	CurrentRecipeText string
	History           []Line
}

func (s *Session) snapshot() Snapshot {
	history := make([]Line, len(s.History))
	copy(history, s.History)
	return Snapshot{
		ID:                s.ID,
		CurrentDish:       s.CurrentDish,
		CurrentRecipeText: s.CurrentRecipeText,
		History:           history,
	}
}

// Transcript renders the history as a flat "User: ... / Assistant: ..."
// block for inclusion in prompts. Returns "" for an empty history.
func (s Snapshot) Transcript() string {
	if len(s.History) == 0 {
		return ""
	}
	out := ""
	for _, line := range s.History {
		label := "User"
		if line.Role == RoleAssistant {
			label = "Assistant"
		}
		out += label + ": " + line.Content + "\n"
	}
	return out
}
