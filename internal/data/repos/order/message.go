package order

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kbrou/chatorder-backend/internal/data/dbctx"
	types "github.com/kbrou/chatorder-backend/internal/domain/order"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
)

type MessageRepo interface {
	Create(dbc dbctx.Context, messages []*types.ConversationMessage) ([]*types.ConversationMessage, error)
	ListByConversation(dbc dbctx.Context, conversationID uuid.UUID, limit int) ([]*types.ConversationMessage, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	return &messageRepo{
		db:  db,
		log: baseLog.With("repo", "MessageRepo"),
	}
}

func (r *messageRepo) Create(dbc dbctx.Context, messages []*types.ConversationMessage) ([]*types.ConversationMessage, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(messages) == 0 {
		return []*types.ConversationMessage{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepo) ListByConversation(dbc dbctx.Context, conversationID uuid.UUID, limit int) ([]*types.ConversationMessage, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if conversationID == uuid.Nil {
		return nil, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows []*types.ConversationMessage
	if err := t.WithContext(dbc.Ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
