package http

import (
	"iter"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/satriahrh/cocoa-fruit/mentor/adapters/chatstream"
	"github.com/satriahrh/cocoa-fruit/mentor/domain"
	"github.com/satriahrh/cocoa-fruit/mentor/usecase"
	"github.com/satriahrh/cocoa-fruit/mentor/utils/log"
	"go.uber.org/zap"
)

const modelsNote = "Это список моделей Gemini, доступных для ключа сервиса. Актуальный список: https://ai.google.dev/models"

// RelayHandler serves the mentor chat relay and its model listing.
type RelayHandler struct {
	mentor *usecase.MentorService
}

func NewRelayHandler(mentor *usecase.MentorService) *RelayHandler {
	return &RelayHandler{mentor: mentor}
}

type errorResponse struct {
	Error string `json:"error"`
}

func relayError(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

// Chat relays one conversation turn to the provider and streams the reply
// back as event-stream frames. Failures before the first fragment are
// answered with a JSON error; after that the stream is cut short with an
// error comment and no sentinel.
func (h *RelayHandler) Chat(c echo.Context) error {
	var req domain.ChatRequest
	if err := c.Bind(&req); err != nil {
		return relayError(c, "invalid request body")
	}

	ctx := log.ContextWith(c.Request().Context(), log.ModeKey, string(req.Mode))
	seq, err := h.mentor.Stream(ctx, req)
	if err != nil {
		log.WithCtx(ctx).Warn("relay rejected", zap.Error(err))
		return relayError(c, err.Error())
	}

	next, stop := iter.Pull2(seq)
	defer stop()

	fragment, err, ok := next()
	if ok && err != nil {
		log.WithCtx(ctx).Error("upstream failed before streaming", zap.Error(err))
		return relayError(c, err.Error())
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, chatstream.ContentType)
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	w := chatstream.NewWriter(res)
	start := time.Now()
	frames := 0
	for ; ok; fragment, err, ok = next() {
		if err != nil {
			log.WithCtx(ctx).Error("upstream failed mid-stream", zap.Int("frames", frames), zap.Error(err))
			_ = w.WriteComment("error " + err.Error())
			return nil
		}
		if err := w.WriteDelta(fragment); err != nil {
			log.WithCtx(ctx).Info("client went away", zap.Int("frames", frames), zap.Error(err))
			return nil
		}
		frames++
	}

	if err := w.WriteDone(); err != nil {
		log.WithCtx(ctx).Info("client went away before sentinel", zap.Error(err))
		return nil
	}
	log.WithCtx(ctx).Info("relay stream complete",
		zap.Int("frames", frames),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

type listModelsResponse struct {
	Models []domain.ModelInfo `json:"models"`
	Note   string             `json:"note"`
}

func (h *RelayHandler) ListModels(c echo.Context) error {
	models, err := h.mentor.ListModels(c.Request().Context())
	if err != nil {
		log.WithCtx(c.Request().Context()).Warn("list models failed", zap.Error(err))
		return relayError(c, err.Error())
	}
	if models == nil {
		models = []domain.ModelInfo{}
	}
	return c.JSON(http.StatusOK, listModelsResponse{Models: models, Note: modelsNote})
}

// HealthCheck reports liveness.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "mentor-relay",
	})
}
