package domain

import (
	"context"
	"errors"
)

// MinAnswerLength is the shortest answer, in characters, sent for review.
const MinAnswerLength = 20

var ErrAnswerTooShort = errors.New("answer is too short, write at least 20 characters")

// PracticumTask is one exercise a student answers with a free-text prompt.
type PracticumTask struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Difficulty      Difficulty `json:"difficulty"`
	SuccessCriteria []string   `json:"success_criteria"`
}

// ProgressUpdate is a graded attempt reported by a client.
type ProgressUpdate struct {
	TaskID   string `json:"task_id"`
	Answer   string `json:"answer"`
	Feedback string `json:"feedback"`
	Passed   bool   `json:"passed"`
}

// ProgressRecorder persists graded attempts on behalf of the signed-in user.
type ProgressRecorder interface {
	RecordProgress(ctx context.Context, update ProgressUpdate) error
}
