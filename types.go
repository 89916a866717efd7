package pingme

import (
	"time"
)

// Wire event names shared by the realtime channel and the client SDK.
// These names are the contract with the frontend and must not change.
const (
	EventAddUser           = "addUser"
	EventGetUser           = "getUser"
	EventSendMessage       = "sendMessage"
	EventGetMessage        = "getMessage"
	EventUserOnline        = "user_online"
	EventUpdateOnlineUsers = "update_online_users"
	EventHeartbeat         = "h"
)

// Event is the JSON frame exchanged over the realtime channel. The
// chat fields sit at the top level so a relayed getMessage carries the
// sendMessage payload verbatim.
type Event struct {
	Type string `json:"type"`

	// addUser / user_online
	UserID string `json:"userId,omitempty"`

	// sendMessage / getMessage
	SenderID       string `json:"senderId,omitempty"`
	ReceiverID     string `json:"receiverId,omitempty"`
	Message        string `json:"message,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`

	// getUser. Not omitempty: clients must see the registry emptying
	// out as an explicit "users":[].
	Users []PresenceEntry `json:"users"`

	// update_online_users. Same contract as Users.
	Online []string `json:"online"`
}

// ChatPayload is relayed verbatim from sender to receiver.
type ChatPayload struct {
	SenderID       string `json:"senderId"`
	ReceiverID     string `json:"receiverId"`
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

// Chat extracts the chat payload of a sendMessage frame.
func (e Event) Chat() ChatPayload {
	return ChatPayload{
		SenderID:       e.SenderID,
		ReceiverID:     e.ReceiverID,
		Message:        e.Message,
		ConversationID: e.ConversationID,
	}
}

// ChatEvent builds a getMessage frame from a relayed payload.
func ChatEvent(p ChatPayload) Event {
	return Event{
		Type:           EventGetMessage,
		SenderID:       p.SenderID,
		ReceiverID:     p.ReceiverID,
		Message:        p.Message,
		ConversationID: p.ConversationID,
	}
}

// PresenceEntry is one element of a getUser broadcast.
type PresenceEntry struct {
	UserID       string `json:"userId"`
	ConnectionID string `json:"connectionId"`
}

// PublicUser is the externally visible subset of an account.
type PublicUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

type SignupRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  PublicUser `json:"user"`
	Token string     `json:"token"`
}

type ConversationRequest struct {
	SenderID   string `json:"senderId" validate:"required"`
	ReceiverID string `json:"receiverId" validate:"required"`
}

// Conversation is the persisted two-party channel as presented over HTTP.
type Conversation struct {
	ID        string    `json:"id"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConversationEntry pairs a conversation id with the counterpart's profile.
type ConversationEntry struct {
	User           PublicUser `json:"user"`
	ConversationID string     `json:"conversationId"`
}

type MessageRequest struct {
	ConversationID string `json:"conversationId" validate:"required"`
	SenderID       string `json:"senderId" validate:"required"`
	ReceiverID     string `json:"receiverId" validate:"required"`
	Message        string `json:"message" validate:"required"`
}

// StoredMessage is the append-message response, echoing server-assigned fields.
type StoredMessage struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"createdAt"`
}

// MessageEntry is one element of a conversation's message listing,
// enriched with the sender's profile.
type MessageEntry struct {
	User           PublicUser `json:"user"`
	Message        string     `json:"message"`
	ConversationID string     `json:"conversationId"`
	CreatedAt      time.Time  `json:"createdAt"`
}
