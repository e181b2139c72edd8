package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/kbrou/chatorder-backend/internal/data/db"
	httpx "github.com/kbrou/chatorder-backend/internal/http"
	httpH "github.com/kbrou/chatorder-backend/internal/http/handlers"
	"github.com/kbrou/chatorder-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *httpx.Server
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
}

func New() (*App, error) {
	cfg := LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	clientset, err := wireClients(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(theDB, log, clientset, reposet)
	if err != nil {
		log.Sync()
		return nil, err
	}

	srv := httpx.NewServer(httpx.RouterConfig{
		Log:                 log,
		TwilioAuthToken:     clientset.Twilio.AuthToken(),
		WebhookHandler:      httpH.NewWebhookHandler(log, serviceset.Conversations),
		ConversationHandler: httpH.NewConversationHandler(serviceset.Conversations),
		HealthHandler:       httpH.NewHealthHandler(),
	})

	return &App{
		Log:      log,
		DB:       theDB,
		Server:   srv,
		Cfg:      cfg,
		Clients:  clientset,
		Repos:    reposet,
		Services: serviceset,
	}, nil
}

func (a *App) Run() error {
	a.Log.Info("Starting HTTP server", "port", a.Cfg.Port)
	return a.Server.Run(":" + a.Cfg.Port)
}

func (a *App) Close() {
	if a.Clients.Cache != nil {
		_ = a.Clients.Cache.Close()
	}
	a.Log.Sync()
}
