package app

import (
	"gorm.io/gorm"

	"github.com/kbrou/chatorder-backend/internal/data/repos"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
)

type Repos struct {
	Conversations repos.ConversationRepo
	Messages      repos.MessageRepo
	States        repos.StateRepo
	Snapshots     repos.SnapshotRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Conversations: repos.NewConversationRepo(db, log),
		Messages:      repos.NewMessageRepo(db, log),
		States:        repos.NewStateRepo(db, log),
		Snapshots:     repos.NewSnapshotRepo(db, log),
	}
}
