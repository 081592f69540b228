package main

import (
	"database/sql"
	"log"

	"github.com/redis/go-redis/v9"

	"zakazBack/internal/cache"
	"zakazBack/internal/config"
	"zakazBack/internal/handlers"
	"zakazBack/internal/repositories"
	"zakazBack/internal/services"
	"zakazBack/utils"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	cfg      config.Config
	db       *sql.DB

	tokenManager *utils.Manager
	wsManager    *WebSocketManager

	userRepo *repositories.UserRepository

	requestHandler  *handlers.RequestHandler
	proposalHandler *handlers.ProposalHandler
	ratingHandler   *handlers.RatingHandler
	userHandler     *handlers.UserHandler
}

func initializeApp(db *sql.DB, rdb *redis.Client, push services.PushSender, cfg config.Config, errorLog, infoLog *log.Logger) *application {
	// Repositories
	requestRepo := repositories.RequestRepository{DB: db}
	proposalRepo := repositories.ProposalRepository{DB: db}
	ratingRepo := repositories.RatingRepository{DB: db}
	userRepo := repositories.UserRepository{DB: db}

	tokenManager, err := utils.NewManager(cfg.Auth.SigningKey)
	if err != nil {
		errorLog.Fatal(err)
	}

	storage := &utils.MediaStorage{
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		CacheDir:  cfg.Storage.CacheDir,
	}

	statsCache := &cache.ProviderStatsCache{RDB: rdb, TTL: cfg.Redis.StatsTTL}

	// The hub re-runs standing queries against the request repository and
	// doubles as the Publisher the workflows signal after every write.
	wsManager := NewWebSocketManager(&requestRepo, errorLog)

	// Services
	requestService := &services.RequestService{
		RequestRepo: &requestRepo,
		Uploader:    storage,
		Events:      wsManager,
	}
	proposalService := &services.ProposalService{
		ProposalRepo: &proposalRepo,
		RequestRepo:  &requestRepo,
		UserRepo:     &userRepo,
		Push:         push,
		Events:       wsManager,
	}
	ratingService := &services.RatingService{
		RatingRepo: &ratingRepo,
		Cache:      statsCache,
		Events:     wsManager,
	}
	userService := &services.UserService{
		UserRepo:     &userRepo,
		TokenManager: tokenManager,
		Cache:        statsCache,
		AccessTTL:    cfg.Auth.AccessTTL,
		RefreshTTL:   cfg.Auth.RefreshTTL,
	}

	// Handlers
	requestHandler := &handlers.RequestHandler{Service: requestService}
	proposalHandler := &handlers.ProposalHandler{Service: proposalService}
	ratingHandler := &handlers.RatingHandler{Service: ratingService}
	userHandler := &handlers.UserHandler{Service: userService}

	return &application{
		errorLog:        errorLog,
		infoLog:         infoLog,
		cfg:             cfg,
		db:              db,
		tokenManager:    tokenManager,
		wsManager:       wsManager,
		userRepo:        &userRepo,
		requestHandler:  requestHandler,
		proposalHandler: proposalHandler,
		ratingHandler:   ratingHandler,
		userHandler:     userHandler,
	}
}
