package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pingme/pingme-server/internal/domain"
	"github.com/pingme/pingme-server/internal/infra/database/models"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) FindByMembers(ctx context.Context, memberA, memberB string) (domain.Conversation, error) {
	var model models.Conversation
	err := r.db.WithContext(ctx).
		Where("member_a = ? AND member_b = ?", memberA, memberB).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Conversation{}, domain.NotFoundError{Resource: "conversation"}
		}
		return domain.Conversation{}, err
	}
	return toDomainConversation(model), nil
}

// Create inserts the conversation, relying on the unique index over the
// canonical member pair. When a concurrent create wins the race the
// insert is a no-op and the surviving row is read back, so both callers
// end up with the same conversation.
func (r *ConversationRepository) Create(ctx context.Context, conv domain.Conversation) (domain.Conversation, error) {
	model := models.Conversation{
		ID:        uuid.New().String(),
		MemberA:   conv.MemberA,
		MemberB:   conv.MemberB,
		CreatedAt: time.Now().UTC(),
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "member_a"}, {Name: "member_b"}},
		DoNothing: true,
	}).Create(&model).Error
	if err != nil {
		return domain.Conversation{}, err
	}

	return r.FindByMembers(ctx, conv.MemberA, conv.MemberB)
}

func (r *ConversationRepository) ListByMember(ctx context.Context, identity string) ([]domain.Conversation, error) {
	var rows []models.Conversation
	err := r.db.WithContext(ctx).
		Where("member_a = ? OR member_b = ?", identity, identity).
		Order("created_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	convs := make([]domain.Conversation, 0, len(rows))
	for _, row := range rows {
		convs = append(convs, toDomainConversation(row))
	}
	return convs, nil
}

func toDomainConversation(model models.Conversation) domain.Conversation {
	return domain.Conversation{
		ID:        model.ID,
		MemberA:   model.MemberA,
		MemberB:   model.MemberB,
		CreatedAt: model.CreatedAt,
	}
}
