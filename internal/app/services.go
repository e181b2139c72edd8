package app

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kbrou/chatorder-backend/internal/catalog"
	ordermod "github.com/kbrou/chatorder-backend/internal/modules/order"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
	"github.com/kbrou/chatorder-backend/internal/services"
)

type Services struct {
	Catalog       *catalog.Catalog
	Orders        ordermod.Usecases
	Signals       services.SignalExtractionService
	Conversations services.ConversationService
}

func wireServices(db *gorm.DB, log *logger.Logger, clientset Clients, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	cat, err := catalog.NewFromEnv(log)
	if err != nil {
		return Services{}, fmt.Errorf("init catalog: %w", err)
	}

	orders := ordermod.New(ordermod.UsecasesDeps{
		Log:     log,
		AI:      clientset.AI,
		Catalog: cat,
		Now:     func() time.Time { return time.Now() },
	})

	signals, err := services.NewSignalExtractionService(log, clientset.Twilio, clientset.Caption, clientset.Receipt, clientset.Bucket)
	if err != nil {
		return Services{}, fmt.Errorf("init signal extraction: %w", err)
	}

	conversations, err := services.NewConversationService(
		db,
		log,
		reposet.Conversations,
		reposet.Messages,
		reposet.States,
		reposet.Snapshots,
		clientset.Cache,
		signals,
		orders,
		clientset.Twilio,
	)
	if err != nil {
		return Services{}, fmt.Errorf("init conversation service: %w", err)
	}

	return Services{
		Catalog:       cat,
		Orders:        orders,
		Signals:       signals,
		Conversations: conversations,
	}, nil
}
