package chat

import "github.com/forgelabs/forgelabs/internal/llm"

// MaxTurns is how many turns a session remembers. A turn is one message
// from either side.
const MaxTurns = 6

// Sender tags who wrote a turn.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Turn is one message in a conversation.
type Turn struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// History is a rolling window of the most recent turns. Not safe for
// concurrent use; Session guards it.
type History struct {
	turns []Turn
	max   int
}

// NewHistory returns an empty history bounded to max turns. max <= 0 means
// MaxTurns.
func NewHistory(max int) *History {
	if max <= 0 {
		max = MaxTurns
	}
	return &History{max: max}
}

// Append adds turns and drops the oldest beyond the bound.
func (h *History) Append(turns ...Turn) {
	h.turns = append(h.turns, turns...)
	if over := len(h.turns) - h.max; over > 0 {
		h.turns = append([]Turn(nil), h.turns[over:]...)
	}
}

// Turns returns a copy, oldest first.
func (h *History) Turns() []Turn {
	return append([]Turn(nil), h.turns...)
}

func (h *History) Len() int { return len(h.turns) }

func (h *History) Reset() { h.turns = nil }

// messages converts turns to provider messages.
func messages(turns []Turn) []llm.Message {
	out := make([]llm.Message, 0, len(turns)+1)
	for _, t := range turns {
		role := llm.RoleUser
		if t.Sender == SenderAI {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: t.Text})
	}
	return out
}
