package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/satriahrh/cocoa-fruit/mentor/domain"
	"github.com/satriahrh/cocoa-fruit/mentor/utils/log"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const progressMessageType = "progress"

// Notification is the JSON frame pushed to clients.
type Notification struct {
	Type      string               `json:"type"`
	Timestamp time.Time            `json:"timestamp"`
	Data      domain.ProgressEvent `json:"data"`
}

// Server pushes practicum progress events to the connections of the user
// they belong to.
type Server struct {
	upgrader      websocket.Upgrader
	messageBroker domain.MessageBroker
	hub           *Hub
}

func NewServer(messageBroker domain.MessageBroker) *Server {
	return &Server{
		upgrader:      websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		messageBroker: messageBroker,
		hub:           NewHub(),
	}
}

func (s *Server) Hub() *Hub {
	return s.hub
}

// Run serves the hub and the progress listener until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	messageChan, err := s.messageBroker.Subscribe(ctx, domain.ProgressTopic, "")
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		s.forwardProgress(ctx, messageChan)
		return nil
	})
	return g.Wait()
}

func (s *Server) forwardProgress(ctx context.Context, messageChan <-chan domain.Message) {
	log.WithCtx(ctx).Info("WebSocket server listening to progress events")

	for {
		select {
		case msg, ok := <-messageChan:
			if !ok {
				log.WithCtx(ctx).Info("progress subscription closed")
				return
			}

			var ev domain.ProgressEvent
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				log.WithCtx(ctx).Error("Failed to unmarshal progress event", zap.Error(err))
				continue
			}

			frame, err := json.Marshal(Notification{Type: progressMessageType, Timestamp: msg.Timestamp, Data: ev})
			if err != nil {
				log.WithCtx(ctx).Error("Failed to marshal notification", zap.Error(err))
				continue
			}

			sent := s.hub.SendToUser(ev.UserID, frame)
			log.WithCtx(ctx).Debug("progress forwarded",
				zap.String("user_id", ev.UserID),
				zap.String("task_id", ev.TaskID),
				zap.Int("connections", sent))

		case <-ctx.Done():
			log.WithCtx(ctx).Info("progress listener stopped")
			return
		}
	}
}
