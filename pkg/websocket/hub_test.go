package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viagens-moz/intercity/pkg/logger"
)

func newTestClient(hub *Hub, userID, userType string) *Client {
	return NewClient(hub, nil, userID, userType, logger.NewNop())
}

func attach(hub *Hub, clients ...*Client) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	for _, c := range clients {
		hub.clients[c] = true
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data := <-c.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatalf("client %s received nothing", c.UserID)
	}
	return Message{}
}

func assertNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.Send:
		t.Fatalf("client %s got unexpected message %s", c.UserID, data)
	default:
	}
}

func TestBroadcastToType(t *testing.T) {
	hub := NewHub(logger.NewNop())
	admin := newTestClient(hub, "admin-1", UserTypeAdmin)
	driver := newTestClient(hub, "driver-1", UserTypeDriver)
	attach(hub, admin, driver)

	hub.BroadcastToType(UserTypeAdmin, Message{Type: EventRosterUpdated})

	assert.Equal(t, EventRosterUpdated, receive(t, admin).Type)
	assertNothing(t, driver)
}

func TestPublish_ReachesAdminsAndSubscribers(t *testing.T) {
	hub := NewHub(logger.NewNop())
	admin := newTestClient(hub, "admin-1", UserTypeAdmin)
	follower := newTestClient(hub, "p-1", UserTypePassenger)
	other := newTestClient(hub, "p-2", UserTypePassenger)
	follower.Subscribe("trip-42")
	attach(hub, admin, follower, other)

	hub.Publish(EventTripAssigned, "trip-42", map[string]string{"driver_id": "d-1"})

	assert.Equal(t, EventTripAssigned, receive(t, admin).Type)
	assert.Equal(t, EventTripAssigned, receive(t, follower).Type)
	assertNothing(t, other)
}

func TestPublish_WithoutEntityOnlyReachesAdmins(t *testing.T) {
	hub := NewHub(logger.NewNop())
	admin := newTestClient(hub, "admin-1", UserTypeAdmin)
	follower := newTestClient(hub, "p-1", UserTypePassenger)
	follower.Subscribe("")
	attach(hub, admin, follower)

	hub.Publish(EventRosterUpdated, "", nil)

	receive(t, admin)
	assertNothing(t, follower)
}

func TestSendToUser(t *testing.T) {
	hub := NewHub(logger.NewNop())
	driver := newTestClient(hub, "driver-1", UserTypeDriver)
	attach(hub, driver)

	hub.SendToUser("driver-1", Message{Type: EventTripAssigned})
	hub.SendToUser("driver-unknown", Message{Type: EventTripAssigned})

	assert.Equal(t, EventTripAssigned, receive(t, driver).Type)
	assertNothing(t, driver)
}

func TestSubscribeUnsubscribe(t *testing.T) {
	hub := NewHub(logger.NewNop())
	c := newTestClient(hub, "p-1", UserTypePassenger)

	c.Subscribe("parcel-1")
	assert.True(t, c.IsSubscribedTo("parcel-1"))

	c.Unsubscribe("parcel-1")
	assert.False(t, c.IsSubscribedTo("parcel-1"))
}

func TestRun_RegistersAndStopsOnCancel(t *testing.T) {
	hub := NewHub(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	admin := newTestClient(hub, "admin-1", UserTypeAdmin)
	driver := newTestClient(hub, "driver-1", UserTypeDriver)
	hub.Register(admin)
	hub.Register(driver)
	assert.Eventually(t, func() bool { return hub.GetActiveConnections() == 2 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, hub.GetClientsByUserType(UserTypeDriver))

	hub.Unregister(driver)
	assert.Eventually(t, func() bool { return hub.GetActiveConnections() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Equal(t, 0, hub.GetActiveConnections())
	_, open := <-admin.Send
	assert.False(t, open)
}

func TestRegisterUnregister_AfterStopDoNotBlock(t *testing.T) {
	hub := NewHub(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	registered := newTestClient(hub, "p-1", UserTypePassenger)
	hub.Register(registered)
	cancel()
	<-stopped

	late := newTestClient(hub, "p-2", UserTypePassenger)
	returned := make(chan struct{})
	go func() {
		hub.Unregister(registered)
		hub.Register(late)
		hub.Unregister(late)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("hub calls blocked after shutdown")
	}
	_, open := <-late.Send
	assert.False(t, open)
	assert.Zero(t, hub.GetActiveConnections())
}

func TestClientHandle_Commands(t *testing.T) {
	hub := NewHub(logger.NewNop())
	c := newTestClient(hub, "admin-1", UserTypeAdmin)

	c.handle([]byte(`{"type":"subscribe","entity_ids":["trip-2","trip-1"],"entity_id":"parcel-9"}`))
	assert.Equal(t, []string{"parcel-9", "trip-1", "trip-2"}, c.Subscriptions())

	c.handle([]byte(`{"type":"unsubscribe","entity_id":"trip-1"}`))
	assert.Equal(t, []string{"parcel-9", "trip-2"}, c.Subscriptions())

	c.handle([]byte(`{"type":"ping"}`))
	assert.Equal(t, "pong", receive(t, c).Type)

	c.handle([]byte(`not json`))
	c.handle([]byte(`{"type":"dance"}`))
	assertNothing(t, c)
	assert.Len(t, c.Subscriptions(), 2)
}
