package sse

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/pathforge-backend/internal/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(func() { log.Sync() })
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestHubBroadcastOrdering(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := "user:" + uuid.New().String()

	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, channel)

	first := SSEMessage{Channel: channel, Event: SSEEventRoadmapCreated, Data: map[string]any{"seq": 1}}
	second := SSEMessage{Channel: channel, Event: SSEEventTopicStatusUpdated, Data: map[string]any{"seq": 2}}
	hub.Broadcast(first)
	hub.Broadcast(second)

	gotFirst := recvMessage(t, client.Outbound, time.Second)
	gotSecond := recvMessage(t, client.Outbound, time.Second)
	if gotFirst.Event != SSEEventRoadmapCreated {
		t.Fatalf("first event: want=%s got=%s", SSEEventRoadmapCreated, gotFirst.Event)
	}
	if gotSecond.Event != SSEEventTopicStatusUpdated {
		t.Fatalf("second event: want=%s got=%s", SSEEventTopicStatusUpdated, gotSecond.Event)
	}

	hub.CloseClient(client)
	select {
	case _, ok := <-client.Outbound:
		if ok {
			t.Fatalf("outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for outbound close")
	}
}

func TestHubChannelIsolation(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))

	userA := uuid.New()
	userB := uuid.New()
	clientA := hub.NewSSEClient(userA)
	clientB := hub.NewSSEClient(userB)
	hub.AddChannel(clientA, "user:"+userA.String())
	hub.AddChannel(clientB, "user:"+userB.String())

	hub.Broadcast(SSEMessage{Channel: "user:" + userA.String(), Event: SSEEventRoadmapDeleted})

	got := recvMessage(t, clientA.Outbound, time.Second)
	if got.Event != SSEEventRoadmapDeleted {
		t.Fatalf("event: want=%s got=%s", SSEEventRoadmapDeleted, got.Event)
	}

	select {
	case msg := <-clientB.Outbound:
		t.Fatalf("clientB should not receive another user's message: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}

	hub.CloseClient(clientA)
	hub.CloseClient(clientB)
}

func TestHubRemoveChannelStopsDelivery(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := "user:" + uuid.New().String()

	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, channel)
	hub.RemoveChannel(client, channel)

	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventRoadmapCreated})

	select {
	case msg := <-client.Outbound:
		t.Fatalf("unsubscribed client should not receive: %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}

	hub.CloseClient(client)
}
