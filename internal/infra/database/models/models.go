package models

import (
	"time"
)

type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	Username  string    `json:"username" gorm:"type:text;not null"`
	Email     string    `json:"email" gorm:"type:text;not null;index:user_email,unique"`
	Password  string    `json:"-" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"type:timestamp with time zone"`
}

// Conversation members are stored in canonical order (MemberA < MemberB).
// The composite unique index closes the find-then-create race: two
// concurrent creates of the same pair cannot both insert.
type Conversation struct {
	ID        string    `json:"id" gorm:"primaryKey;type:text"`
	MemberA   string    `json:"memberA" gorm:"type:text;not null;index;index:conversation_members,unique"`
	MemberB   string    `json:"memberB" gorm:"type:text;not null;index;index:conversation_members,unique"`
	CreatedAt time.Time `json:"createdAt" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

// Message rows are append-only. ConversationID is a plain indexed
// column, not a foreign key; orphaned messages are accepted.
type Message struct {
	ID             string    `json:"id" gorm:"primaryKey;type:text"`
	ConversationID string    `json:"conversationId" gorm:"type:text;not null;index"`
	SenderID       string    `json:"senderId" gorm:"type:text;not null"`
	ReceiverID     string    `json:"receiverId" gorm:"type:text"`
	Body           string    `json:"message" gorm:"type:text;not null"`
	CreatedAt      time.Time `json:"createdAt" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
