package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pingme/pingme-server/internal/domain"
	"github.com/pingme/pingme-server/internal/infra/database/models"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Append stores a message with a server-assigned id and timestamp and
// returns the stored record. ConversationID is taken as given; there
// is deliberately no existence check against the conversation table.
func (r *MessageRepository) Append(ctx context.Context, msg domain.Message) (domain.Message, error) {
	model := models.Message{
		ID:             uuid.New().String(),
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		ReceiverID:     msg.ReceiverID,
		Body:           msg.Body,
		CreatedAt:      time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).Create(&model).Error
	if err != nil {
		return domain.Message{}, err
	}
	return toDomainMessage(model), nil
}

// ListByConversation scans by conversation id. Ordering by creation
// time then id keeps "insertion order" deterministic when timestamps
// collide.
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	var rows []models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	msgs := make([]domain.Message, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, toDomainMessage(row))
	}
	return msgs, nil
}

func toDomainMessage(model models.Message) domain.Message {
	return domain.Message{
		ID:             model.ID,
		ConversationID: model.ConversationID,
		SenderID:       model.SenderID,
		ReceiverID:     model.ReceiverID,
		Body:           model.Body,
		CreatedAt:      model.CreatedAt,
	}
}
