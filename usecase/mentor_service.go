package usecase

import (
	"context"
	"iter"

	"github.com/satriahrh/cocoa-fruit/mentor/domain"
	"github.com/satriahrh/cocoa-fruit/mentor/utils/log"
	"go.uber.org/zap"
)

// MentorService turns relay requests into provider calls. It holds no
// per-request state.
type MentorService struct {
	llm domain.Llm
}

func NewMentorService(llm domain.Llm) *MentorService {
	return &MentorService{llm: llm}
}

// Stream composes the system instruction, splits the conversation into
// history and live turn, and starts the generation.
func (s *MentorService) Stream(ctx context.Context, req domain.ChatRequest) (iter.Seq2[string, error], error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	last := len(req.Messages) - 1
	llmReq := domain.LlmRequest{
		SystemInstruction: SystemInstruction(req.Mode, req.Context),
		History:           req.Messages[:last],
		Prompt:            req.Messages[last],
	}

	log.WithCtx(ctx).Info("mentor stream",
		zap.String("mode", string(req.Mode)),
		zap.Bool("known_mode", req.Mode.Valid()),
		zap.Int("messages", len(req.Messages)),
		zap.Int("context_len", len(req.Context)))

	return s.llm.StreamChat(ctx, llmReq)
}

func (s *MentorService) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	return s.llm.ListModels(ctx)
}
