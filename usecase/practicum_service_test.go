package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/satriahrh/cocoa-fruit/mentor/domain"
)

type stubStreamer struct {
	reply string
	err   error
	got   domain.StreamRequest
}

func (s *stubStreamer) StreamChat(ctx context.Context, req domain.StreamRequest, h domain.StreamHandlers) error {
	s.got = req
	half := len(s.reply) / 2
	for _, part := range []string{s.reply[:half], s.reply[half:]} {
		if part != "" {
			h.OnDelta(part)
		}
	}
	if s.err != nil {
		h.OnError(s.err)
		return s.err
	}
	if h.OnDone != nil {
		h.OnDone()
	}
	return nil
}

type stubRecorder struct {
	got []domain.ProgressUpdate
	err error
}

func (r *stubRecorder) RecordProgress(ctx context.Context, u domain.ProgressUpdate) error {
	r.got = append(r.got, u)
	return r.err
}

var testTask = domain.PracticumTask{
	ID:              "role-prompting",
	Title:           "Ролевой промпт",
	Description:     "Напиши промпт с ролью",
	Difficulty:      domain.DifficultyMedium,
	SuccessCriteria: []string{"есть роль", "есть формат"},
}

const longAnswer = "Ты опытный редактор. Сократи текст до трёх пунктов."

func TestVerifyPass(t *testing.T) {
	st := &stubStreamer{reply: "Структура ясная.\n- Уточни формат\n[ЗАЧТЕНО]"}
	rec := &stubRecorder{}
	svc := NewPracticumService(st, rec)

	var streamed strings.Builder
	v, err := svc.Verify(context.Background(), testTask, "  "+longAnswer+"\n", func(s string) { streamed.WriteString(s) })
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !v.Result.Passed || v.Result.Feedback != "Структура ясная.\n- Уточни формат" {
		t.Errorf("result = %+v", v.Result)
	}
	if len(v.Result.Suggestions) != 1 || v.Result.Suggestions[0] != "Уточни формат" {
		t.Errorf("suggestions = %q", v.Result.Suggestions)
	}
	if streamed.String() != st.reply || v.Text != st.reply {
		t.Errorf("streamed %q, text %q", streamed.String(), v.Text)
	}

	ctx := st.got.Context
	if ctx.Mode != domain.ModeVerify || ctx.UserAnswer != longAnswer || len(ctx.SuccessCriteria) != 2 {
		t.Errorf("context = %+v", ctx)
	}
	if len(st.got.Messages) != 1 || !strings.Contains(st.got.Messages[0].Content, longAnswer) {
		t.Errorf("messages = %+v", st.got.Messages)
	}

	if len(rec.got) != 1 {
		t.Fatalf("recorded %d updates", len(rec.got))
	}
	if u := rec.got[0]; u.TaskID != testTask.ID || !u.Passed || u.Answer != longAnswer {
		t.Errorf("update = %+v", u)
	}
}

func TestVerifyRejectsShortAnswer(t *testing.T) {
	st := &stubStreamer{}
	svc := NewPracticumService(st, nil)

	// 19 characters once trimmed, multibyte on purpose
	_, err := svc.Verify(context.Background(), testTask, "  абвгдежзийклмнопрст  ", nil)
	if !errors.Is(err, domain.ErrAnswerTooShort) {
		t.Fatalf("err = %v, want ErrAnswerTooShort", err)
	}
	if st.got.Messages != nil {
		t.Error("nothing should be streamed for a short answer")
	}
}

func TestVerifyStreamFailure(t *testing.T) {
	st := &stubStreamer{reply: "Начало", err: errors.New("GEMINI_API_KEY is not set")}
	rec := &stubRecorder{}
	svc := NewPracticumService(st, rec)

	_, err := svc.Verify(context.Background(), testTask, longAnswer, nil)
	if err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY is not set") {
		t.Fatalf("err = %v", err)
	}
	if len(rec.got) != 0 {
		t.Error("failed verification must not be recorded")
	}
}

func TestVerifySaveFailureIsNotFatal(t *testing.T) {
	st := &stubStreamer{reply: "Нет роли. [НЕ ЗАЧТЕНО]"}
	rec := &stubRecorder{err: errors.New("offline")}
	svc := NewPracticumService(st, rec)

	v, err := svc.Verify(context.Background(), testTask, longAnswer, nil)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if v.Result.Passed || v.SaveErr == nil {
		t.Errorf("verification = %+v", v)
	}
}

func TestDiscuss(t *testing.T) {
	st := &stubStreamer{reply: "Подумай о формате."}
	svc := NewPracticumService(st, nil)

	history := []domain.ChatMessage{{Role: domain.UserRole, Content: "Что улучшить?"}}
	prev := domain.VerificationResult{Feedback: "Нет формата"}
	reply, err := svc.Discuss(context.Background(), testTask, longAnswer, prev, history, nil)
	if err != nil {
		t.Fatalf("Discuss: %v", err)
	}
	if reply != st.reply {
		t.Errorf("reply = %q", reply)
	}
	if st.got.Context.Mode != domain.ModeDiscuss || st.got.Context.PreviousFeedback != "Нет формата" {
		t.Errorf("context = %+v", st.got.Context)
	}

	if _, err := svc.Discuss(context.Background(), testTask, longAnswer, prev, nil, nil); !errors.Is(err, domain.ErrEmptyConversation) {
		t.Errorf("empty history err = %v", err)
	}
}
