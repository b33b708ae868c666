package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"oracle-assistant-be/internal/constant"
	"oracle-assistant-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	reply   string
	err     error
	delay   time.Duration
	panics  bool
	prompts []string
}

func (f *fakeProvider) Model() string { return "fake-model" }

func (f *fakeProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return f.Generate(ctx, history[len(history)-1].Content, opts...)
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.panics {
		panic("sdk bug")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

func TestBuildPrompt_EmbedsQuestionTwice(t *testing.T) {
	prompt := BuildPrompt("What is a tablespace?")

	assert.Equal(t, 2, strings.Count(prompt, "What is a tablespace?"))
	assert.Contains(t, prompt, "User Question: What is a tablespace?")
	assert.Contains(t, prompt, "Oracle Database Expert Assistant")
	assert.Contains(t, prompt, `"Quick Tips"`)
	assert.Contains(t, prompt, "`code blocks`")
}

func TestBuildPrompt_PercentSignsSurvive(t *testing.T) {
	prompt := BuildPrompt("why is PCTFREE 10%?")
	assert.Contains(t, prompt, "User Question: why is PCTFREE 10%?")
	assert.NotContains(t, prompt, "%!")
}

func TestAsk_ReturnsCompletionVerbatim(t *testing.T) {
	provider := &fakeProvider{reply: "## Overview\nA tablespace is..."}
	a := NewOracleAssistant(provider, time.Second, nil)

	res := a.Ask(context.Background(), "What is a tablespace?")
	assert.False(t, res.Degraded)
	assert.Empty(t, res.Reason)
	assert.Equal(t, "## Overview\nA tablespace is...", res.Text)
	assert.Equal(t, "fake-model", res.Model)
	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0], "What is a tablespace?")
}

func TestAsk_ProviderErrorDegrades(t *testing.T) {
	a := NewOracleAssistant(&fakeProvider{err: errors.New("429 quota")}, time.Second, nil)

	res := a.Ask(context.Background(), "hi")
	assert.True(t, res.Degraded)
	assert.Equal(t, ReasonProviderError, res.Reason)
	assert.Equal(t, constant.AssistantFallbackReply, res.Text)
}

func TestAsk_TimeoutDegrades(t *testing.T) {
	a := NewOracleAssistant(&fakeProvider{reply: "late", delay: time.Second}, 20*time.Millisecond, nil)

	res := a.Ask(context.Background(), "hi")
	assert.True(t, res.Degraded)
	assert.Equal(t, ReasonTimeout, res.Reason)
}

func TestAsk_BlankCompletionDegrades(t *testing.T) {
	a := NewOracleAssistant(&fakeProvider{reply: " \n "}, time.Second, nil)

	res := a.Ask(context.Background(), "hi")
	assert.True(t, res.Degraded)
	assert.Equal(t, ReasonEmptyResponse, res.Reason)
}

func TestAsk_PanicDegrades(t *testing.T) {
	a := NewOracleAssistant(&fakeProvider{panics: true}, time.Second, nil)

	var res Result
	assert.NotPanics(t, func() { res = a.Ask(context.Background(), "hi") })
	assert.True(t, res.Degraded)
	assert.Equal(t, ReasonPanic, res.Reason)
	assert.NotEmpty(t, res.Text)
}
