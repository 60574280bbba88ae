package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/satriahrh/cocoa-fruit/mentor/domain"
	"github.com/satriahrh/cocoa-fruit/mentor/utils/log"
	"go.uber.org/zap"
)

// Verification is the outcome of one graded attempt. SaveErr is set when the
// verdict could not be persisted; the verdict itself is still valid.
type Verification struct {
	Result  domain.VerificationResult
	Text    string
	SaveErr error
}

// PracticumService runs practicum exchanges against the relay.
type PracticumService struct {
	streamer domain.ChatStreamer
	recorder domain.ProgressRecorder
}

// NewPracticumService wires the service. recorder may be nil, in which case
// verdicts are not persisted.
func NewPracticumService(streamer domain.ChatStreamer, recorder domain.ProgressRecorder) *PracticumService {
	return &PracticumService{streamer: streamer, recorder: recorder}
}

// Verify sends answer for review in verify mode, streams the reply to
// onDelta and grades the accumulated text once the stream completes.
func (s *PracticumService) Verify(ctx context.Context, task domain.PracticumTask, answer string, onDelta func(string)) (Verification, error) {
	answer = strings.TrimSpace(answer)
	if utf8.RuneCountInString(answer) < domain.MinAnswerLength {
		return Verification{}, domain.ErrAnswerTooShort
	}

	mc := taskContext(task, domain.ModeVerify)
	mc.UserAnswer = answer

	text, err := s.collect(ctx, domain.StreamRequest{
		Messages: []domain.ChatMessage{{Role: domain.UserRole, Content: verificationPrompt(task, answer)}},
		Context:  mc,
	}, onDelta)
	if err != nil {
		return Verification{}, fmt.Errorf("verify task %s: %w", task.ID, err)
	}

	v := Verification{Result: domain.ParseVerification(text), Text: text}
	log.WithCtx(ctx).Info("practicum verdict",
		zap.String("task_id", task.ID),
		zap.Bool("passed", v.Result.Passed),
		zap.Int("suggestions", len(v.Result.Suggestions)))

	if s.recorder != nil {
		err := s.recorder.RecordProgress(ctx, domain.ProgressUpdate{
			TaskID:   task.ID,
			Answer:   answer,
			Feedback: v.Result.Feedback,
			Passed:   v.Result.Passed,
		})
		if err != nil {
			log.WithCtx(ctx).Warn("progress not saved", zap.String("task_id", task.ID), zap.Error(err))
			v.SaveErr = err
		}
	}
	return v, nil
}

// Discuss continues the conversation about a graded answer in discuss mode
// and returns the full reply.
func (s *PracticumService) Discuss(ctx context.Context, task domain.PracticumTask, answer string, previous domain.VerificationResult, history []domain.ChatMessage, onDelta func(string)) (string, error) {
	if len(history) == 0 {
		return "", domain.ErrEmptyConversation
	}

	mc := taskContext(task, domain.ModeDiscuss)
	mc.UserAnswer = answer
	mc.PreviousFeedback = previous.Feedback

	return s.collect(ctx, domain.StreamRequest{Messages: history, Context: mc}, onDelta)
}

// collect drives one stream to completion and returns the accumulated text.
func (s *PracticumService) collect(ctx context.Context, req domain.StreamRequest, onDelta func(string)) (string, error) {
	var sb strings.Builder
	var streamErr error

	err := s.streamer.StreamChat(ctx, req, domain.StreamHandlers{
		OnDelta: func(text string) {
			sb.WriteString(text)
			if onDelta != nil {
				onDelta(text)
			}
		},
		OnError: func(err error) { streamErr = err },
	})
	if streamErr != nil {
		err = streamErr
	}
	return sb.String(), err
}

func taskContext(task domain.PracticumTask, mode domain.MentorMode) *domain.MentorContext {
	return &domain.MentorContext{
		Mode:            mode,
		TaskTitle:       task.Title,
		TaskDescription: task.Description,
		TaskDifficulty:  task.Difficulty,
		SuccessCriteria: task.SuccessCriteria,
	}
}

func verificationPrompt(task domain.PracticumTask, answer string) string {
	return fmt.Sprintf(`Проверь мой ответ на задание «%s».

МОЙ ОТВЕТ:
%s

Кратко проанализируй ответ (2-3 предложения), укажи что хорошо (1-2 пункта) и что можно улучшить (1-2 пункта, каждый с новой строки через "- ").
В конце ОБЯЗАТЕЛЬНО напиши вердикт: [ЗАЧТЕНО] или [НЕ ЗАЧТЕНО].`, task.Title, answer)
}
