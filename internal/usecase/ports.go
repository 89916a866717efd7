package usecase

import (
	"context"

	"github.com/pingme/pingme-server/internal/domain"
)

// UserRepository defines persistence/lookup for accounts.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	Get(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// ConversationRepository defines storage operations for conversations.
// Members are addressed in canonical order; Create must be safe against
// a concurrent create of the same pair and return the surviving row.
type ConversationRepository interface {
	FindByMembers(ctx context.Context, memberA, memberB string) (domain.Conversation, error)
	Create(ctx context.Context, conv domain.Conversation) (domain.Conversation, error)
	ListByMember(ctx context.Context, identity string) ([]domain.Conversation, error)
}

// MessageRepository defines append/scan operations for messages.
type MessageRepository interface {
	Append(ctx context.Context, msg domain.Message) (domain.Message, error)
	ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error)
}
