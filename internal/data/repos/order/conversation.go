package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbrou/chatorder-backend/internal/data/dbctx"
	types "github.com/kbrou/chatorder-backend/internal/domain/order"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
)

type ConversationRepo interface {
	GetOrCreateByAddr(dbc dbctx.Context, customerAddr, channel string) (*types.Conversation, error)
	GetByID(dbc dbctx.Context, conversationID uuid.UUID) (*types.Conversation, error)
	TouchLastMessage(dbc dbctx.Context, conversationID uuid.UUID, at time.Time) error
	UpdateStatus(dbc dbctx.Context, conversationID uuid.UUID, status types.ConversationStatus) error
	ListRecent(dbc dbctx.Context, limit int) ([]*types.Conversation, error)
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	return &conversationRepo{
		db:  db,
		log: baseLog.With("repo", "ConversationRepo"),
	}
}

func (r *conversationRepo) GetOrCreateByAddr(dbc dbctx.Context, customerAddr, channel string) (*types.Conversation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if customerAddr == "" {
		return nil, errors.New("customer address is empty")
	}
	if channel == "" {
		channel = "whatsapp"
	}

	var row types.Conversation
	if err := t.WithContext(dbc.Ctx).
		Where("customer_addr = ?", customerAddr).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID != uuid.Nil {
		return &row, nil
	}

	now := time.Now().UTC()
	row = types.Conversation{
		CustomerAddr:  customerAddr,
		Channel:       channel,
		Status:        string(types.StatusCollecting),
		LastMessageAt: now,
	}
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_addr"}},
			DoNothing: true,
		}).
		Create(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID != uuid.Nil {
		return &row, nil
	}

	// Lost the insert race: another webhook delivery created the row first.
	if err := t.WithContext(dbc.Ctx).
		Where("customer_addr = ?", customerAddr).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *conversationRepo) GetByID(dbc dbctx.Context, conversationID uuid.UUID) (*types.Conversation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if conversationID == uuid.Nil {
		return nil, nil
	}
	var row types.Conversation
	if err := t.WithContext(dbc.Ctx).
		Where("id = ?", conversationID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *conversationRepo) TouchLastMessage(dbc dbctx.Context, conversationID uuid.UUID, at time.Time) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]any{
			"last_message_at": at.UTC(),
			"updated_at":      time.Now().UTC(),
		}).Error
}

func (r *conversationRepo) UpdateStatus(dbc dbctx.Context, conversationID uuid.UUID, status types.ConversationStatus) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *conversationRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.Conversation, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []*types.Conversation
	if err := t.WithContext(dbc.Ctx).
		Order("last_message_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
