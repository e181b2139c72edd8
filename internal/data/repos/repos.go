package repos

import (
	"gorm.io/gorm"

	"github.com/kbrou/chatorder-backend/internal/data/repos/order"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
)

type ConversationRepo = order.ConversationRepo
type MessageRepo = order.MessageRepo
type StateRepo = order.StateRepo
type SnapshotRepo = order.SnapshotRepo

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	return order.NewConversationRepo(db, baseLog)
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	return order.NewMessageRepo(db, baseLog)
}

func NewStateRepo(db *gorm.DB, baseLog *logger.Logger) StateRepo {
	return order.NewStateRepo(db, baseLog)
}

func NewSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) SnapshotRepo {
	return order.NewSnapshotRepo(db, baseLog)
}
