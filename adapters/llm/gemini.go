package llm

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/satriahrh/cocoa-fruit/mentor/domain"
	"github.com/satriahrh/cocoa-fruit/mentor/utils/log"
	"go.uber.org/zap"
)

type modelsClient interface {
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
	All(ctx context.Context) iter.Seq2[*genai.Model, error]
}

var newGenaiClient = func(ctx context.Context, cfg *genai.ClientConfig) (modelsClient, error) {
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

type GeminiConfig struct {
	APIKey string
	Model  string
	// Timeout bounds a whole generation; zero leaves it to the caller's context.
	Timeout time.Duration
}

// GeminiClient streams chat completions from the Gemini API. It is safe for
// concurrent use; every call is independent.
type GeminiClient struct {
	models  modelsClient
	model   string
	timeout time.Duration
}

var _ domain.Llm = (*GeminiClient)(nil)

// NewGeminiClient builds the adapter. A missing API key is not an error here:
// the service still starts and every call reports domain.ErrMissingCredential.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	g := &GeminiClient{model: cfg.Model, timeout: cfg.Timeout}
	if cfg.APIKey == "" {
		log.With(zap.String("model", cfg.Model)).Warn("GEMINI_API_KEY is not set, chat requests will be rejected")
		return g, nil
	}

	models, err := newGenaiClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	g.models = models
	return g, nil
}

// StreamChat implements domain.Llm.
func (g *GeminiClient) StreamChat(ctx context.Context, req domain.LlmRequest) (iter.Seq2[string, error], error) {
	if g.models == nil {
		return nil, domain.ErrMissingCredential
	}

	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, msg := range req.History {
		contents = append(contents, toContent(msg))
	}
	contents = append(contents, toContent(req.Prompt))

	config := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemInstruction}},
		}
	}

	log.WithCtx(ctx).Debug("gemini stream",
		zap.String("model", g.model),
		zap.Int("history", len(req.History)))

	return func(yield func(string, error) bool) {
		callCtx, cancel := g.withTimeout(ctx)
		defer cancel()

		for resp, err := range g.models.GenerateContentStream(callCtx, g.model, contents, config) {
			if err != nil {
				yield("", fmt.Errorf("gemini stream: %w", err))
				return
			}
			text := extractText(resp)
			if text == "" {
				continue
			}
			if !yield(text, nil) {
				return
			}
		}
	}, nil
}

// ListModels implements domain.Llm. Only models that can generate content
// are reported.
func (g *GeminiClient) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	if g.models == nil {
		return nil, domain.ErrMissingCredential
	}

	var models []domain.ModelInfo
	for m, err := range g.models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list models: %w", err)
		}
		if !supports(m.SupportedActions, "generateContent") {
			continue
		}
		models = append(models, domain.ModelInfo{
			ID:        strings.TrimPrefix(m.Name, "models/"),
			Available: true,
		})
	}
	return models, nil
}

func (g *GeminiClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

func toContent(msg domain.ChatMessage) *genai.Content {
	role := string(genai.RoleUser)
	if msg.Role == domain.AssistantRole {
		role = string(genai.RoleModel)
	}
	return &genai.Content{
		Role:  role,
		Parts: []*genai.Part{{Text: msg.Content}},
	}
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

func supports(actions []string, action string) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}
