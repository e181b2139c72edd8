package order

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbrou/chatorder-backend/internal/data/dbctx"
	types "github.com/kbrou/chatorder-backend/internal/domain/order"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
)

type SnapshotRepo interface {
	// Create inserts the snapshot once per conversation. A duplicate
	// delivery of the completing turn returns the existing row untouched.
	Create(dbc dbctx.Context, snapshot *types.OrderSnapshot) (*types.OrderSnapshot, error)
	GetByConversationID(dbc dbctx.Context, conversationID uuid.UUID) (*types.OrderSnapshot, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*types.OrderSnapshot, error)
}

type snapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) SnapshotRepo {
	return &snapshotRepo{
		db:  db,
		log: baseLog.With("repo", "SnapshotRepo"),
	}
}

func (r *snapshotRepo) Create(dbc dbctx.Context, snapshot *types.OrderSnapshot) (*types.OrderSnapshot, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if snapshot == nil || snapshot.ConversationID == uuid.Nil {
		return nil, nil
	}
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "conversation_id"}},
			DoNothing: true,
		}).
		Create(snapshot).Error
	if err != nil {
		return nil, err
	}
	if snapshot.ID != uuid.Nil {
		return snapshot, nil
	}
	return r.GetByConversationID(dbc, snapshot.ConversationID)
}

func (r *snapshotRepo) GetByConversationID(dbc dbctx.Context, conversationID uuid.UUID) (*types.OrderSnapshot, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if conversationID == uuid.Nil {
		return nil, nil
	}
	var row types.OrderSnapshot
	if err := t.WithContext(dbc.Ctx).
		Where("conversation_id = ?", conversationID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *snapshotRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.OrderSnapshot, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []*types.OrderSnapshot
	if err := t.WithContext(dbc.Ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
