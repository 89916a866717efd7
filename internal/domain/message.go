package domain

import "time"

// Message is one immutable entry of a conversation. ConversationID is
// an equality-scan key, not a referential constraint.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	ReceiverID     string    `json:"receiverId"`
	Body           string    `json:"message"`
	CreatedAt      time.Time `json:"createdAt"`
}
