package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const AuthStateTopic = "auth.state_changed"

type AuthChangeType string

const (
	SignedIn       AuthChangeType = "SIGNED_IN"
	SignedOut      AuthChangeType = "SIGNED_OUT"
	TokenRefreshed AuthChangeType = "TOKEN_REFRESHED"
)

// AuthStateChange is the payload of the auth state channel.
type AuthStateChange struct {
	Type   AuthChangeType `json:"type"`
	UserID uuid.UUID      `json:"user_id"`
	Email  string         `json:"email"`
}

type AuthStateHandler func(ctx context.Context, change AuthStateChange) error

// AuthChannel delivers identity changes to in-process listeners.
// Publish blocks until every subscriber has handled the change, so a caller
// can read the effects (e.g. a fetched session list) as soon as it returns.
type AuthChannel struct {
	pubSub *gochannel.GoChannel
}

func NewAuthChannel() *AuthChannel {
	return &AuthChannel{
		pubSub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            64,
			BlockPublishUntilSubscriberAck: true,
		}, watermill.NopLogger{}),
	}
}

func (c *AuthChannel) Publish(change AuthStateChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal auth change: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := c.pubSub.Publish(AuthStateTopic, msg); err != nil {
		return fmt.Errorf("failed to publish auth change: %w", err)
	}
	return nil
}

// Subscribe starts a listener goroutine that lives until ctx is cancelled or the channel closes.
// Handler errors are logged and the change is acked anyway; auth changes are not redelivered.
func (c *AuthChannel) Subscribe(ctx context.Context, handler AuthStateHandler) error {
	messages, err := c.pubSub.Subscribe(ctx, AuthStateTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			var change AuthStateChange
			if err := json.Unmarshal(msg.Payload, &change); err != nil {
				log.Printf("[ERROR] Failed to unmarshal auth change: %v", err)
				msg.Ack()
				continue
			}

			if err := handler(msg.Context(), change); err != nil {
				log.Printf("[WARN] Auth change %s for %s not fully handled: %v", change.Type, change.UserID, err)
			}
			msg.Ack()
		}
	}()

	return nil
}

func (c *AuthChannel) Close() error {
	return c.pubSub.Close()
}
