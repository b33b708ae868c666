package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"oracle-assistant-be/internal/dto"
	"oracle-assistant-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func connect(t *testing.T, hub *Hub, userID uuid.UUID, buffer int) *Client {
	t.Helper()
	client := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, buffer)}
	hub.register <- client
	require.Eventually(t, func() bool { return hub.ConnectionCount(userID) > 0 }, time.Second, 5*time.Millisecond)
	return client
}

func receive(t *testing.T, client *Client) envelope {
	t.Helper()
	select {
	case raw := <-client.Send:
		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &msg))
		return envelope{Type: msg.Type, Data: msg.Data}
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return envelope{}
	}
}

func TestPushWorkspace_ReachesEveryTabOfTheUser(t *testing.T) {
	hub := startHub(t)
	userID := uuid.New()
	first := connect(t, hub, userID, 4)
	second := connect(t, hub, userID, 4)
	other := connect(t, hub, uuid.New(), 4)

	hub.PushWorkspace(userID, &dto.WorkspaceView{Authenticated: true, Draft: "half typed"})

	for _, c := range []*Client{first, second} {
		msg := receive(t, c)
		assert.Equal(t, EventWorkspace, msg.Type)
		assert.Contains(t, string(msg.Data.(json.RawMessage)), `"draft":"half typed"`)
	}
	assert.Empty(t, other.Send)
}

func TestPushAuth(t *testing.T) {
	hub := startHub(t)
	userID := uuid.New()
	client := connect(t, hub, userID, 4)

	hub.PushAuth(userID, "SIGNED_OUT")

	msg := receive(t, client)
	assert.Equal(t, EventAuth, msg.Type)
	assert.JSONEq(t, `{"event":"SIGNED_OUT"}`, string(msg.Data.(json.RawMessage)))
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := startHub(t)
	userID := uuid.New()
	client := connect(t, hub, userID, 1)

	hub.PushAuth(userID, "SIGNED_IN")
	hub.PushAuth(userID, "TOKEN_REFRESHED")

	assert.Eventually(t, func() bool { return hub.ConnectionCount(userID) == 0 }, time.Second, 5*time.Millisecond)

	<-client.Send
	_, open := <-client.Send
	assert.False(t, open)
}

func TestClusterMessages_SkipOwnOrigin(t *testing.T) {
	hub := startHub(t)
	userID := uuid.New()
	client := connect(t, hub, userID, 4)

	own, _ := json.Marshal(clusterMessage{Origin: hub.instanceID, TargetUserID: userID.String(), Message: json.RawMessage(`{"type":"auth"}`)})
	hub.handleClusterMessage(string(own))
	assert.Empty(t, client.Send)

	remote, _ := json.Marshal(clusterMessage{Origin: "other", TargetUserID: userID.String(), Message: json.RawMessage(`{"type":"auth","data":{}}`)})
	hub.handleClusterMessage(string(remote))
	assert.Equal(t, EventAuth, receive(t, client).Type)

	hub.handleClusterMessage("not json")
	assert.Empty(t, client.Send)
}

func TestPushWhileTabsDisconnect(t *testing.T) {
	hub := startHub(t)
	userID := uuid.New()

	for round := 0; round < 200; round++ {
		client := connect(t, hub, userID, 1)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				hub.PushAuth(userID, "TOKEN_REFRESHED")
			}
		}()
		go func() {
			defer wg.Done()
			hub.unregister <- client
		}()
		wg.Wait()

		require.Eventually(t, func() bool { return hub.ConnectionCount(userID) == 0 }, time.Second, time.Millisecond)
	}
}
