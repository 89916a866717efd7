package service

import (
	"context"
	"log/slog"

	"github.com/pingme/pingme-server"
)

// Dispatcher routes realtime events between live connections. It owns
// no persistence: message durability is a separate HTTP call from the
// client, and a store outage never stalls delivery here.
type Dispatcher struct {
	registry *PresenceRegistry
	signal   *SignalService
}

// NewDispatcher wires the dispatch engine to its registry. signal may
// be nil; presence/message signals are then skipped entirely.
func NewDispatcher(registry *PresenceRegistry, signal *SignalService) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		signal:   signal,
	}
}

// Registry exposes the canonical presence registry.
func (d *Dispatcher) Registry() *PresenceRegistry {
	return d.registry
}

// HandleEvent processes one inbound frame from a connection. Events of
// a single connection arrive in order; events across connections do
// not. Unknown types are logged and dropped.
func (d *Dispatcher) HandleEvent(ctx context.Context, conn Conn, ev pingme.Event) {
	switch ev.Type {
	case pingme.EventAddUser:
		d.handleAnnounce(ctx, conn, ev.UserID)
	case pingme.EventSendMessage:
		d.handleChat(ctx, ev.Chat())
	case pingme.EventUserOnline:
		d.handleOnline(ctx, conn, ev.UserID)
	case pingme.EventHeartbeat:
		// do nothing
	default:
		slog.InfoContext(
			ctx, "Unknown event type",
			slog.String("type", ev.Type),
			slog.String("module", "dispatch"),
		)
	}
}

// HandleDisconnect removes the connection's binding and re-broadcasts
// presence. Safe to call more than once for the same connection; only
// the first call finds a binding to remove.
func (d *Dispatcher) HandleDisconnect(ctx context.Context, conn Conn) {
	identity, ok := d.registry.Unregister(conn)
	if ok {
		slog.DebugContext(
			ctx, "Identity went offline",
			slog.String("userId", identity),
			slog.String("module", "dispatch"),
		)
		d.publish(ctx, SignalChannelPresence, pingme.Event{
			Type:   pingme.EventUpdateOnlineUsers,
			Online: d.registry.OnlineIdentities(),
		})
	}
	d.broadcastPresence(ctx)
	d.broadcastOnline(ctx)
}

func (d *Dispatcher) handleAnnounce(ctx context.Context, conn Conn, userID string) {
	if userID == "" {
		return
	}
	if prev, ok := d.registry.Lookup(userID); ok && prev != conn {
		slog.DebugContext(
			ctx, "Identity reconnected, evicting previous connection",
			slog.String("userId", userID),
			slog.String("module", "dispatch"),
		)
	}
	d.registry.Register(userID, conn)
	d.publish(ctx, SignalChannelPresence, pingme.Event{Type: pingme.EventAddUser, UserID: userID})
	d.broadcastPresence(ctx)
}

// handleChat relays the payload to the receiver's connection, verbatim.
// An offline receiver is not an error: at-most-once, no queue, nothing
// surfaced to the sender.
func (d *Dispatcher) handleChat(ctx context.Context, payload pingme.ChatPayload) {
	receiver, ok := d.registry.Lookup(payload.ReceiverID)
	if !ok {
		slog.DebugContext(
			ctx, "Receiver offline, dropping message",
			slog.String("receiverId", payload.ReceiverID),
			slog.String("module", "dispatch"),
		)
		return
	}

	if err := receiver.Emit(pingme.ChatEvent(payload)); err != nil {
		slog.ErrorContext(
			ctx, "Error relaying message",
			slog.String("error", err.Error()),
			slog.String("module", "dispatch"),
		)
	}
	d.publish(ctx, SignalChannelMessages, pingme.ChatEvent(payload))
}

func (d *Dispatcher) handleOnline(ctx context.Context, conn Conn, userID string) {
	if userID == "" {
		return
	}
	d.registry.MarkOnline(userID, conn)
	d.publish(ctx, SignalChannelPresence, pingme.Event{Type: pingme.EventUserOnline, UserID: userID})
	d.broadcastOnline(ctx)
}

func (d *Dispatcher) broadcastPresence(ctx context.Context) {
	d.broadcast(ctx, pingme.Event{
		Type:  pingme.EventGetUser,
		Users: d.registry.Snapshot(),
	})
}

func (d *Dispatcher) broadcastOnline(ctx context.Context) {
	d.broadcast(ctx, pingme.Event{
		Type:   pingme.EventUpdateOnlineUsers,
		Online: d.registry.OnlineIdentities(),
	})
}

// broadcast emits to a snapshot of currently bound connections. A
// connection failing mid-broadcast is handled by its own read loop as
// a disconnect; here it is only logged.
func (d *Dispatcher) broadcast(ctx context.Context, ev pingme.Event) {
	for _, conn := range d.registry.Conns() {
		if err := conn.Emit(ev); err != nil {
			slog.DebugContext(
				ctx, "Broadcast write failed",
				slog.String("connectionId", conn.ID()),
				slog.String("error", err.Error()),
				slog.String("module", "dispatch"),
			)
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, channel string, ev pingme.Event) {
	if d.signal == nil {
		return
	}
	if err := d.signal.Publish(ctx, channel, ev); err != nil {
		slog.DebugContext(
			ctx, "Signal publish failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
			slog.String("module", "dispatch"),
		)
	}
}
