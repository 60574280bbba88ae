package domain

import "context"

// MentorMode selects the interaction policy appended to the system instruction.
type MentorMode string

const (
	ModeVerify  MentorMode = "verify"
	ModeDiscuss MentorMode = "discuss"
	ModeExplain MentorMode = "explain"
	ModeDebug   MentorMode = "debug"
	ModeGeneral MentorMode = "general"
)

func (m MentorMode) Valid() bool {
	switch m {
	case ModeVerify, ModeDiscuss, ModeExplain, ModeDebug, ModeGeneral:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// MentorContext is the per-request task description a client sends along with
// a conversation. It is flattened to text before it reaches the relay.
type MentorContext struct {
	Mode             MentorMode
	TaskTitle        string
	TaskDescription  string
	TaskDifficulty   Difficulty
	UserAnswer       string
	SuccessCriteria  []string
	PreviousFeedback string
}

// StreamRequest is what a consumer asks the relay for.
type StreamRequest struct {
	Messages []ChatMessage
	Context  *MentorContext
}

// StreamHandlers receive the outcome of one streamed exchange. After OnError
// neither OnDelta nor OnDone is called.
type StreamHandlers struct {
	OnDelta func(text string)
	OnDone  func()
	OnError func(err error)
}

// ChatStreamer is the consumer side of the relay.
type ChatStreamer interface {
	StreamChat(ctx context.Context, req StreamRequest, h StreamHandlers) error
}
