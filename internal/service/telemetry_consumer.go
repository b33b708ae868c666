package service

import (
	"context"
	"sync/atomic"

	"oracle-assistant-be/internal/pkg/logger"
	"oracle-assistant-be/pkg/events"
)

// TelemetryConsumer keeps an operational trail of assistant replies that fell back
// to the apology text, so outages of the generative model show up in one place.
type TelemetryConsumer struct {
	logger   logger.ILogger
	degraded atomic.Int64
}

func NewTelemetryConsumer(log logger.ILogger) *TelemetryConsumer {
	return &TelemetryConsumer{logger: log}
}

func (c *TelemetryConsumer) Handle(ctx context.Context, event events.Event) error {
	if event.EventType() != events.TypeChatMessageCreated {
		return nil
	}

	payload := event.Payload()
	degraded, _ := payload["degraded"].(bool)
	if !degraded {
		return nil
	}

	c.degraded.Add(1)
	c.logger.Warn("TELEMETRY", "Assistant reply degraded", map[string]interface{}{
		"session_id": payload["session_id"],
		"message_id": payload["message_id"],
		"at":         event.Timestamp(),
	})
	return nil
}

// DegradedCount is the number of degraded replies seen since start.
func (c *TelemetryConsumer) DegradedCount() int64 {
	return c.degraded.Load()
}
