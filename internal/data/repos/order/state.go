package order

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kbrou/chatorder-backend/internal/data/dbctx"
	types "github.com/kbrou/chatorder-backend/internal/domain/order"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
)

type StateRepo interface {
	Ensure(dbc dbctx.Context, conversationID uuid.UUID) error
	GetByConversationID(dbc dbctx.Context, conversationID uuid.UUID) (*types.ConversationState, error)
	// Save rewrites the whole state row. Field deltas from the current turn
	// win over whatever another device wrote since rehydration.
	Save(dbc dbctx.Context, state *types.ConversationState) error
}

type stateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStateRepo(db *gorm.DB, baseLog *logger.Logger) StateRepo {
	return &stateRepo{
		db:  db,
		log: baseLog.With("repo", "StateRepo"),
	}
}

func (r *stateRepo) Ensure(dbc dbctx.Context, conversationID uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if conversationID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	row := &types.ConversationState{
		ConversationID: conversationID,
		Status:         string(types.StatusCollecting),
		Fields:         []byte(`{}`),
		Pending:        []byte(`[]`),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row).Error
}

func (r *stateRepo) GetByConversationID(dbc dbctx.Context, conversationID uuid.UUID) (*types.ConversationState, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if conversationID == uuid.Nil {
		return nil, nil
	}
	var row types.ConversationState
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

func (r *stateRepo) Save(dbc dbctx.Context, state *types.ConversationState) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if state == nil || state.ConversationID == uuid.Nil {
		return nil
	}
	updates := map[string]any{
		"status":     state.Status,
		"fields":     state.Fields,
		"pending":    state.Pending,
		"updated_at": time.Now().UTC(),
	}
	if state.SnapshotID != nil {
		updates["snapshot_id"] = *state.SnapshotID
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.ConversationState{}).
		Where("conversation_id = ?", state.ConversationID).
		Updates(updates).Error
}
