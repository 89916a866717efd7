package service

import (
	"context"
	"testing"

	"github.com/pingme/pingme-server"
)

func lastEvent(t *testing.T, c *fakeConn, eventType string) pingme.Event {
	t.Helper()
	for i := len(c.events) - 1; i >= 0; i-- {
		if c.events[i].Type == eventType {
			return c.events[i]
		}
	}
	t.Fatalf("connection %s never received %s", c.id, eventType)
	return pingme.Event{}
}

func announce(d *Dispatcher, conn Conn, userID string) {
	d.HandleEvent(context.Background(), conn, pingme.Event{
		Type:   pingme.EventAddUser,
		UserID: userID,
	})
}

func TestAnnounceBroadcastsSnapshot(t *testing.T) {
	d := NewDispatcher(NewPresenceRegistry(), nil)
	c1 := &fakeConn{id: "c1"}
	c2 := &fakeConn{id: "c2"}

	announce(d, c1, "u1")

	ev := lastEvent(t, c1, pingme.EventGetUser)
	if len(ev.Users) != 1 || ev.Users[0].UserID != "u1" || ev.Users[0].ConnectionID != "c1" {
		t.Fatalf("unexpected snapshot %+v", ev.Users)
	}

	announce(d, c2, "u2")

	ev = lastEvent(t, c1, pingme.EventGetUser)
	if len(ev.Users) != 2 || ev.Users[0].UserID != "u1" || ev.Users[1].UserID != "u2" {
		t.Fatalf("unexpected snapshot %+v", ev.Users)
	}
}

func TestSendMessageDeliversVerbatimToReceiverOnly(t *testing.T) {
	d := NewDispatcher(NewPresenceRegistry(), nil)
	sender := &fakeConn{id: "c1"}
	receiver := &fakeConn{id: "c2"}
	bystander := &fakeConn{id: "c3"}

	announce(d, sender, "u1")
	announce(d, receiver, "u2")
	announce(d, bystander, "u3")

	before := len(bystander.events)

	d.HandleEvent(context.Background(), sender, pingme.Event{
		Type:           pingme.EventSendMessage,
		SenderID:       "u1",
		ReceiverID:     "u2",
		Message:        "hello",
		ConversationID: "conv-1",
	})

	ev := lastEvent(t, receiver, pingme.EventGetMessage)
	if ev.SenderID != "u1" || ev.ReceiverID != "u2" || ev.Message != "hello" || ev.ConversationID != "conv-1" {
		t.Fatalf("payload not relayed verbatim: %+v", ev)
	}

	if len(bystander.events) != before {
		t.Fatalf("bystander received targeted message")
	}
	for _, e := range sender.events {
		if e.Type == pingme.EventGetMessage {
			t.Fatalf("sender received its own message")
		}
	}
}

func TestSendMessageToOfflineReceiverIsDropped(t *testing.T) {
	d := NewDispatcher(NewPresenceRegistry(), nil)
	sender := &fakeConn{id: "c1"}
	announce(d, sender, "u1")

	// no panic, no error, no delivery
	d.HandleEvent(context.Background(), sender, pingme.Event{
		Type:       pingme.EventSendMessage,
		SenderID:   "u1",
		ReceiverID: "nobody",
		Message:    "into the void",
	})

	for _, e := range sender.events {
		if e.Type == pingme.EventGetMessage {
			t.Fatalf("dropped message was delivered somewhere")
		}
	}
}

func TestUserOnlineBroadcastsOnlineList(t *testing.T) {
	d := NewDispatcher(NewPresenceRegistry(), nil)
	c1 := &fakeConn{id: "c1"}
	c2 := &fakeConn{id: "c2"}

	announce(d, c1, "u1")
	announce(d, c2, "u2")

	d.HandleEvent(context.Background(), c2, pingme.Event{
		Type:   pingme.EventUserOnline,
		UserID: "u2",
	})

	ev := lastEvent(t, c1, pingme.EventUpdateOnlineUsers)
	if len(ev.Online) != 1 || ev.Online[0] != "u2" {
		t.Fatalf("unexpected online list %v", ev.Online)
	}
}

func TestDisconnectCleansUpAndRebroadcasts(t *testing.T) {
	d := NewDispatcher(NewPresenceRegistry(), nil)
	c1 := &fakeConn{id: "c1"}
	c2 := &fakeConn{id: "c2"}

	announce(d, c1, "u1")
	announce(d, c2, "u2")
	d.HandleEvent(context.Background(), c1, pingme.Event{Type: pingme.EventUserOnline, UserID: "u1"})

	d.HandleDisconnect(context.Background(), c1)

	ev := lastEvent(t, c2, pingme.EventGetUser)
	if len(ev.Users) != 1 || ev.Users[0].UserID != "u2" {
		t.Fatalf("expected snapshot [u2] after disconnect, got %+v", ev.Users)
	}
	online := lastEvent(t, c2, pingme.EventUpdateOnlineUsers)
	if online.Online == nil || len(online.Online) != 0 {
		t.Fatalf("expected explicit empty online list, got %v", online.Online)
	}

	// idempotent: a second disconnect for the same connection is safe
	d.HandleDisconnect(context.Background(), c1)
}

func TestHeartbeatAndUnknownEventsIgnored(t *testing.T) {
	d := NewDispatcher(NewPresenceRegistry(), nil)
	c := &fakeConn{id: "c1"}
	announce(d, c, "u1")

	before := len(c.events)
	d.HandleEvent(context.Background(), c, pingme.Event{Type: pingme.EventHeartbeat})
	d.HandleEvent(context.Background(), c, pingme.Event{Type: "whatever"})

	if len(c.events) != before {
		t.Fatalf("heartbeat/unknown events produced output")
	}
}

func TestEndToEndPresenceFlow(t *testing.T) {
	d := NewDispatcher(NewPresenceRegistry(), nil)
	c1 := &fakeConn{id: "c1"}
	c2 := &fakeConn{id: "c2"}

	announce(d, c1, "u1")
	if ids := snapshotIDs(d.Registry()); len(ids) != 1 || ids[0] != "u1" {
		t.Fatalf("expected [u1], got %v", ids)
	}

	announce(d, c2, "u2")
	if ids := snapshotIDs(d.Registry()); len(ids) != 2 || ids[1] != "u2" {
		t.Fatalf("expected [u1 u2], got %v", ids)
	}

	d.HandleEvent(context.Background(), c1, pingme.Event{
		Type:       pingme.EventSendMessage,
		SenderID:   "u1",
		ReceiverID: "u2",
		Message:    "hey",
	})
	if ev := lastEvent(t, c2, pingme.EventGetMessage); ev.Message != "hey" {
		t.Fatalf("u2 did not receive the payload: %+v", ev)
	}

	d.HandleDisconnect(context.Background(), c1)
	if ids := snapshotIDs(d.Registry()); len(ids) != 1 || ids[0] != "u2" {
		t.Fatalf("expected [u2] after disconnect, got %v", ids)
	}
}

func TestBroadcastSurvivesFailingConnection(t *testing.T) {
	d := NewDispatcher(NewPresenceRegistry(), nil)
	ok1 := &fakeConn{id: "c1"}
	bad := &fakeConn{id: "c2", fail: true}
	ok2 := &fakeConn{id: "c3"}

	announce(d, ok1, "u1")
	announce(d, bad, "u2")
	announce(d, ok2, "u3")

	// the failing connection must not stop delivery to the others
	ev := lastEvent(t, ok2, pingme.EventGetUser)
	if len(ev.Users) != 3 {
		t.Fatalf("expected full snapshot at healthy connection, got %+v", ev.Users)
	}
}
