package gemini

import (
	"context"
	"errors"
	"testing"

	"oracle-assistant-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type stubModelsClient struct {
	resp *genai.GenerateContentResponse
	err  error

	gotModel    string
	gotContents []*genai.Content
	gotConfig   *genai.GenerateContentConfig
}

func (s *stubModelsClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.gotModel = model
	s.gotContents = contents
	s.gotConfig = cfg
	return s.resp, s.err
}

func textResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: genai.RoleModel, Parts: parts}},
		},
	}
}

func TestNewGeminiProvider_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), "  ", "")
	assert.Error(t, err)
}

func TestNewGeminiProvider_DefaultModel(t *testing.T) {
	orig := newClient
	defer func() { newClient = orig }()

	var gotCfg *genai.ClientConfig
	newClient = func(ctx context.Context, cfg *genai.ClientConfig) (*genai.Client, error) {
		gotCfg = cfg
		return &genai.Client{}, nil
	}

	p, err := NewGeminiProvider(context.Background(), "test-key", "")
	require.NoError(t, err)
	require.NotNil(t, gotCfg)
	assert.Equal(t, "test-key", gotCfg.APIKey)
	assert.Equal(t, genai.BackendGeminiAPI, gotCfg.Backend)
	assert.Equal(t, DefaultModel, p.Model())
}

func TestGeminiProvider_Generate(t *testing.T) {
	stub := &stubModelsClient{resp: textResponse(
		&genai.Part{Text: "thinking...", Thought: true},
		&genai.Part{Text: "A tablespace is "},
		&genai.Part{Text: "a logical storage unit."},
	)}
	p := &GeminiProvider{models: stub, defaultModel: "gemini-pro"}

	out, err := p.Generate(context.Background(), "What is a tablespace?", llm.WithTemperature(0.4))
	require.NoError(t, err)
	assert.Equal(t, "A tablespace is a logical storage unit.", out)
	assert.Equal(t, "gemini-pro", stub.gotModel)
	require.Len(t, stub.gotContents, 1)
	assert.Equal(t, genai.RoleUser, stub.gotContents[0].Role)
	assert.Equal(t, "What is a tablespace?", stub.gotContents[0].Parts[0].Text)
	require.NotNil(t, stub.gotConfig.Temperature)
	assert.InDelta(t, 0.4, *stub.gotConfig.Temperature, 0.0001)
}

func TestGeminiProvider_ChatSplitsSystemInstruction(t *testing.T) {
	stub := &stubModelsClient{resp: textResponse(&genai.Part{Text: "ok"})}
	p := &GeminiProvider{models: stub, defaultModel: "gemini-pro"}

	_, err := p.Chat(context.Background(), []llm.Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	}, llm.WithModel("gemini-1.5-flash"))
	require.NoError(t, err)

	assert.Equal(t, "gemini-1.5-flash", stub.gotModel)
	require.Len(t, stub.gotContents, 2)
	assert.Equal(t, genai.RoleModel, stub.gotContents[1].Role)
	require.NotNil(t, stub.gotConfig.SystemInstruction)
	assert.Equal(t, "be brief", stub.gotConfig.SystemInstruction.Parts[0].Text)
}

func TestGeminiProvider_EmptyResponseIsAnError(t *testing.T) {
	p := &GeminiProvider{models: &stubModelsClient{resp: &genai.GenerateContentResponse{}}, defaultModel: "gemini-pro"}

	_, err := p.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGeminiProvider_TransportErrorIsWrapped(t *testing.T) {
	boom := errors.New("quota exceeded")
	p := &GeminiProvider{models: &stubModelsClient{err: boom}, defaultModel: "gemini-pro"}

	_, err := p.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, boom)
}
