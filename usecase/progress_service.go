package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/satriahrh/cocoa-fruit/mentor/domain"
	"github.com/satriahrh/cocoa-fruit/mentor/utils/log"
	"go.uber.org/zap"
)

var ErrMissingTaskID = errors.New("task_id is required")

// ProgressService stores graded attempts and announces completions.
type ProgressService struct {
	store  domain.ProgressStore
	hasher domain.Hasher
	broker domain.MessageBroker
}

func NewProgressService(store domain.ProgressStore, hasher domain.Hasher, broker domain.MessageBroker) *ProgressService {
	return &ProgressService{store: store, hasher: hasher, broker: broker}
}

// Record upserts the user's row for the task. A passing attempt is published
// on domain.ProgressTopic; publishing failures are logged, not returned.
func (s *ProgressService) Record(ctx context.Context, userID string, upd domain.ProgressUpdate) (*domain.Progress, error) {
	if strings.TrimSpace(upd.TaskID) == "" {
		return nil, ErrMissingTaskID
	}

	p := &domain.Progress{
		UserID:     userID,
		TaskID:     upd.TaskID,
		Answer:     upd.Answer,
		AnswerHash: domain.AnswerFingerprint(s.hasher, upd.Answer),
		Feedback:   upd.Feedback,
		Completed:  upd.Passed,
	}
	if err := s.store.UpsertProgress(ctx, p); err != nil {
		return nil, fmt.Errorf("record progress: %w", err)
	}

	if upd.Passed {
		s.publish(ctx, domain.ProgressEvent{
			UserID:    userID,
			TaskID:    upd.TaskID,
			Completed: p.Completed,
			Passed:    true,
			Timestamp: time.Now().UTC(),
		})
	}
	return p, nil
}

func (s *ProgressService) List(ctx context.Context, userID string) ([]domain.Progress, error) {
	return s.store.ListProgress(ctx, userID)
}

func (s *ProgressService) publish(ctx context.Context, ev domain.ProgressEvent) {
	if s.broker == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		log.WithCtx(ctx).Error("marshal progress event", zap.Error(err))
		return
	}
	if err := s.broker.Publish(ctx, domain.ProgressTopic, ev.UserID, payload); err != nil {
		log.WithCtx(ctx).Warn("progress event not published", zap.String("task_id", ev.TaskID), zap.Error(err))
	}
}
