package model

import "time"

// Turn is one prior utterance in the conversation.
type Turn struct {
	Role string    `json:"role"` // "patient" or "assistant"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// ConversationContext is an immutable snapshot of the dialogue state the
// caller passes into each turn. The engine never mutates it; callers
// construct a new snapshot per turn via WithTurn.
type ConversationContext struct {
	Turns    []Turn    `json:"turns"`
	TurnTime time.Time `json:"turn_time"`
}

// NewConversationContext returns an empty snapshot stamped with the turn time.
func NewConversationContext(turnTime time.Time) ConversationContext {
	return ConversationContext{TurnTime: turnTime}
}

// WithTurn returns a copy of the snapshot with one more turn appended and
// the turn time advanced. The receiver is left untouched.
func (c ConversationContext) WithTurn(role, text string, at time.Time) ConversationContext {
	turns := make([]Turn, len(c.Turns), len(c.Turns)+1)
	copy(turns, c.Turns)
	turns = append(turns, Turn{Role: role, Text: text, At: at})
	return ConversationContext{Turns: turns, TurnTime: at}
}

// RecentTexts returns up to n most recent utterance texts, oldest first.
// Used to give the model extractor conversational context.
func (c ConversationContext) RecentTexts(n int) []string {
	if n <= 0 || len(c.Turns) == 0 {
		return nil
	}
	start := len(c.Turns) - n
	if start < 0 {
		start = 0
	}
	texts := make([]string, 0, len(c.Turns)-start)
	for _, t := range c.Turns[start:] {
		texts = append(texts, t.Text)
	}
	return texts
}
