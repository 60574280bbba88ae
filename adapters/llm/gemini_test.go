package llm

import (
	"context"
	"errors"
	"iter"
	"testing"

	"google.golang.org/genai"

	"github.com/satriahrh/cocoa-fruit/mentor/domain"
)

type stubModels struct {
	responses []*genai.GenerateContentResponse
	streamErr error
	models    []*genai.Model

	gotModel    string
	gotContents []*genai.Content
	gotConfig   *genai.GenerateContentConfig
}

func (s *stubModels) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	s.gotModel = model
	s.gotContents = contents
	s.gotConfig = cfg
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, r := range s.responses {
			if !yield(r, nil) {
				return
			}
		}
		if s.streamErr != nil {
			yield(nil, s.streamErr)
		}
	}
}

func (s *stubModels) All(ctx context.Context) iter.Seq2[*genai.Model, error] {
	return func(yield func(*genai.Model, error) bool) {
		for _, m := range s.models {
			if !yield(m, nil) {
				return
			}
		}
	}
}

func textResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Role: genai.RoleModel, Parts: parts}}},
	}
}

func newStubbedClient(t *testing.T, stub *stubModels) *GeminiClient {
	t.Helper()
	orig := newGenaiClient
	t.Cleanup(func() { newGenaiClient = orig })

	var gotCfg *genai.ClientConfig
	newGenaiClient = func(ctx context.Context, cfg *genai.ClientConfig) (modelsClient, error) {
		gotCfg = cfg
		return stub, nil
	}

	g, err := NewGeminiClient(context.Background(), GeminiConfig{APIKey: "test-key", Model: "gemini-test"})
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}
	if gotCfg.APIKey != "test-key" || gotCfg.Backend != genai.BackendGeminiAPI {
		t.Fatalf("client config = %+v", gotCfg)
	}
	return g
}

func TestStreamChat_MissingKey(t *testing.T) {
	g, err := NewGeminiClient(context.Background(), GeminiConfig{Model: "gemini-test"})
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}
	if _, err := g.StreamChat(context.Background(), domain.LlmRequest{}); !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("StreamChat err = %v, want ErrMissingCredential", err)
	}
	if _, err := g.ListModels(context.Background()); !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("ListModels err = %v, want ErrMissingCredential", err)
	}
}

func TestStreamChat_TranslatesConversation(t *testing.T) {
	stub := &stubModels{
		responses: []*genai.GenerateContentResponse{
			textResponse(&genai.Part{Text: "Hel"}),
			textResponse(&genai.Part{Text: "thinking...", Thought: true}),
			textResponse(),
			textResponse(&genai.Part{Text: "lo!"}),
		},
	}
	g := newStubbedClient(t, stub)

	seq, err := g.StreamChat(context.Background(), domain.LlmRequest{
		SystemInstruction: "be a mentor",
		History: []domain.ChatMessage{
			{Role: domain.UserRole, Content: "q1"},
			{Role: domain.AssistantRole, Content: "a1"},
		},
		Prompt: domain.ChatMessage{Role: domain.UserRole, Content: "q2"},
	})
	if err != nil {
		t.Fatalf("StreamChat: %v", err)
	}

	var got []string
	for text, err := range seq {
		if err != nil {
			t.Fatalf("stream error: %v", err)
		}
		got = append(got, text)
	}
	if len(got) != 2 || got[0] != "Hel" || got[1] != "lo!" {
		t.Errorf("fragments = %q, want [Hel lo!]", got)
	}

	if stub.gotModel != "gemini-test" {
		t.Errorf("model = %q", stub.gotModel)
	}
	wantRoles := []string{"user", "model", "user"}
	if len(stub.gotContents) != len(wantRoles) {
		t.Fatalf("contents = %d, want %d", len(stub.gotContents), len(wantRoles))
	}
	for i, c := range stub.gotContents {
		if c.Role != wantRoles[i] {
			t.Errorf("content %d role = %q, want %q", i, c.Role, wantRoles[i])
		}
	}
	if stub.gotContents[2].Parts[0].Text != "q2" {
		t.Errorf("live turn = %q, want q2", stub.gotContents[2].Parts[0].Text)
	}
	if stub.gotConfig.SystemInstruction == nil || stub.gotConfig.SystemInstruction.Parts[0].Text != "be a mentor" {
		t.Errorf("system instruction = %+v", stub.gotConfig.SystemInstruction)
	}
}

func TestStreamChat_PropagatesUpstreamError(t *testing.T) {
	stub := &stubModels{
		responses: []*genai.GenerateContentResponse{textResponse(&genai.Part{Text: "par"})},
		streamErr: errors.New("quota exceeded"),
	}
	g := newStubbedClient(t, stub)

	seq, _ := g.StreamChat(context.Background(), domain.LlmRequest{Prompt: domain.ChatMessage{Role: domain.UserRole, Content: "x"}})
	var texts []string
	var lastErr error
	for text, err := range seq {
		if err != nil {
			lastErr = err
			break
		}
		texts = append(texts, text)
	}
	if len(texts) != 1 || lastErr == nil {
		t.Fatalf("texts = %q, err = %v", texts, lastErr)
	}
}

func TestListModels_FiltersGenerators(t *testing.T) {
	stub := &stubModels{models: []*genai.Model{
		{Name: "models/gemini-2.5-flash", SupportedActions: []string{"generateContent", "countTokens"}},
		{Name: "models/text-embedding-004", SupportedActions: []string{"embedContent"}},
	}}
	g := newStubbedClient(t, stub)

	models, err := g.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 1 || models[0].ID != "gemini-2.5-flash" || !models[0].Available {
		t.Errorf("models = %+v", models)
	}
}
