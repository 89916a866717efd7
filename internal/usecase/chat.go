package usecase

import (
	"context"
	"errors"

	"github.com/pingme/pingme-server"
	"github.com/pingme/pingme-server/internal/domain"
)

type ChatUsecase struct {
	conversations ConversationRepository
	messages      MessageRepository
	users         UserRepository
}

func NewChatUsecase(
	conversations ConversationRepository,
	messages MessageRepository,
	users UserRepository,
) *ChatUsecase {
	return &ChatUsecase{
		conversations: conversations,
		messages:      messages,
		users:         users,
	}
}

// FindOrCreateConversation returns the conversation shared by the two
// identities, creating it on first contact. The pair is canonicalised
// so (a, b) and (b, a) address the same row; the storage layer carries
// a uniqueness constraint on the canonical pair, so a concurrent
// create of the same pair converges on one conversation. The returned
// flag reports whether this call created the conversation.
func (uc *ChatUsecase) FindOrCreateConversation(ctx context.Context, a, b string) (domain.Conversation, bool, error) {
	if a == "" {
		return domain.Conversation{}, false, domain.ValidationError{Field: "senderId"}
	}
	if b == "" {
		return domain.Conversation{}, false, domain.ValidationError{Field: "receiverId"}
	}

	memberA, memberB := pingme.CanonicalPair(a, b)

	conv, err := uc.conversations.FindByMembers(ctx, memberA, memberB)
	if err == nil {
		return conv, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Conversation{}, false, err
	}

	conv, err = uc.conversations.Create(ctx, domain.Conversation{
		MemberA: memberA,
		MemberB: memberB,
	})
	if err != nil {
		return domain.Conversation{}, false, err
	}
	return conv, true, nil
}

// ListConversations returns every conversation the identity belongs
// to, each enriched with the counterpart's public profile. Entries
// whose counterpart cannot be resolved are omitted, not failed.
func (uc *ChatUsecase) ListConversations(ctx context.Context, userID string) ([]pingme.ConversationEntry, error) {
	if userID == "" {
		return nil, domain.ValidationError{Field: "userId"}
	}

	convs, err := uc.conversations.ListByMember(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]pingme.ConversationEntry, 0, len(convs))
	for _, conv := range convs {
		other, ok := pingme.Counterpart(conv.MemberA, conv.MemberB, userID)
		if !ok {
			continue
		}

		user, err := uc.users.Get(ctx, other)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}

		entries = append(entries, pingme.ConversationEntry{
			User: pingme.PublicUser{
				ID:       user.ID,
				Email:    user.Email,
				Username: user.Username,
			},
			ConversationID: conv.ID,
		})
	}
	return entries, nil
}

// AppendMessage persists a message with a server-assigned id and
// creation timestamp. The conversation id is not checked against the
// conversation store; the caller owns that linkage.
func (uc *ChatUsecase) AppendMessage(ctx context.Context, conversationID, senderID, receiverID, body string) (domain.Message, error) {
	if conversationID == "" {
		return domain.Message{}, domain.ValidationError{Field: "conversationId"}
	}
	if senderID == "" {
		return domain.Message{}, domain.ValidationError{Field: "senderId"}
	}
	if body == "" {
		return domain.Message{}, domain.ValidationError{Field: "message"}
	}

	return uc.messages.Append(ctx, domain.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Body:           body,
	})
}

// ListMessages returns the messages of a conversation in insertion
// order, enriched with the sender's public profile. Messages whose
// sender cannot be resolved are omitted.
func (uc *ChatUsecase) ListMessages(ctx context.Context, conversationID string) ([]pingme.MessageEntry, error) {
	if conversationID == "" {
		return nil, domain.ValidationError{Field: "conversationId"}
	}

	msgs, err := uc.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	entries := make([]pingme.MessageEntry, 0, len(msgs))
	for _, msg := range msgs {
		user, err := uc.users.Get(ctx, msg.SenderID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}

		entries = append(entries, pingme.MessageEntry{
			User: pingme.PublicUser{
				ID:       user.ID,
				Email:    user.Email,
				Username: user.Username,
			},
			Message:        msg.Body,
			ConversationID: msg.ConversationID,
			CreatedAt:      msg.CreatedAt,
		})
	}
	return entries, nil
}
