// Package assistant turns a user question into one Oracle expert completion.
// It never fails: when the model cannot answer, the caller gets the fixed
// apology text flagged as degraded.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"oracle-assistant-be/internal/constant"
	"oracle-assistant-be/internal/pkg/logger"
	"oracle-assistant-be/pkg/llm"
)

const (
	ReasonTimeout       = "timeout"
	ReasonProviderError = "provider_error"
	ReasonEmptyResponse = "empty_response"
	ReasonPanic         = "panic"

	DefaultTimeout = 60 * time.Second
)

// Result distinguishes a genuine completion from the fallback.
type Result struct {
	Text     string
	Degraded bool
	Reason   string // empty unless Degraded
	Model    string
}

type IAssistant interface {
	Ask(ctx context.Context, question string) Result
}

type OracleAssistant struct {
	provider llm.LLMProvider
	timeout  time.Duration
	logger   logger.ILogger
}

func NewOracleAssistant(provider llm.LLMProvider, timeout time.Duration, log logger.ILogger) *OracleAssistant {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &OracleAssistant{
		provider: provider,
		timeout:  timeout,
		logger:   log,
	}
}

// BuildPrompt embeds the raw question into the Oracle expert template.
func BuildPrompt(question string) string {
	return fmt.Sprintf(constant.OracleExpertPromptV1, question)
}

// Ask makes exactly one provider call bounded by the configured timeout.
func (a *OracleAssistant) Ask(ctx context.Context, question string) (result Result) {
	model := a.provider.Model()

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("ASSISTANT", "Provider panicked", map[string]interface{}{
				"panic": fmt.Sprint(r),
				"model": model,
			})
			result = degraded(model, ReasonPanic)
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	text, err := a.provider.Generate(callCtx, BuildPrompt(question))
	latency := time.Since(start)

	if err != nil {
		reason := ReasonProviderError
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			reason = ReasonTimeout
		}
		a.logger.Warn("ASSISTANT", "Falling back to apology reply", map[string]interface{}{
			"reason":     reason,
			"error":      err.Error(),
			"model":      model,
			"latency_ms": latency.Milliseconds(),
		})
		return degraded(model, reason)
	}

	if strings.TrimSpace(text) == "" {
		a.logger.Warn("ASSISTANT", "Falling back to apology reply", map[string]interface{}{
			"reason": ReasonEmptyResponse,
			"model":  model,
		})
		return degraded(model, ReasonEmptyResponse)
	}

	a.logger.Info("ASSISTANT", "Completion received", map[string]interface{}{
		"model":      model,
		"latency_ms": latency.Milliseconds(),
		"chars":      len(text),
	})
	return Result{Text: text, Model: model}
}

func degraded(model, reason string) Result {
	return Result{
		Text:     constant.AssistantFallbackReply,
		Degraded: true,
		Reason:   reason,
		Model:    model,
	}
}
