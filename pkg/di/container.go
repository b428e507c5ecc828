package di

import (
	"context"
	"time"

	"gorm.io/gorm"

	"dataset-feedback/backend/ai"
	"dataset-feedback/backend/internal/repository"
	"dataset-feedback/backend/internal/service"
	"dataset-feedback/backend/pkg/cache"
	"dataset-feedback/backend/pkg/config"
	"dataset-feedback/backend/pkg/health"
	"dataset-feedback/backend/pkg/jwt"
	"dataset-feedback/backend/pkg/logger"
	"dataset-feedback/backend/pkg/secrets"
)

// Container wires the application's dependencies once at startup.
type Container struct {
	Config *config.Config
	Logger *logger.Logger
	DB     *gorm.DB
	Store  repository.Store
	Cache  *cache.Client

	JWTService *jwt.Service
	Health     *health.Checker

	FeedbackQueryEngine *service.FeedbackQueryEngine
	ModerationService   *service.ModerationService
	CommentService      *service.CommentService
	UtilizationService  *service.UtilizationService
	SummaryService      *service.SummaryService
	SuggestionService   *service.SuggestionService
}

// Options carries the optional collaborators a caller may override, mainly
// for tests.
type Options struct {
	MoralChecker ai.MoralChecker
	Captcha      service.CaptchaVerifier
	Notifier     service.Notifier
}

// New builds the container. Secrets are resolved through Vault with
// environment fallback before anything connects.
func New(cfg *config.Config, log *logger.Logger, opts Options) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	vault, err := secrets.NewVaultManager(secrets.VaultConfigFromEnv(), log)
	if err != nil {
		return nil, err
	}
	cfg.Database.Password = vault.GetSecretWithDefault(ctx, "db-password", cfg.Database.Password)
	cfg.JWT.Secret = vault.GetSecretWithDefault(ctx, "jwt-secret", cfg.JWT.Secret)

	db, err := config.NewDB(cfg)
	if err != nil {
		return nil, err
	}

	store := repository.NewStore(db)

	var cacheClient *cache.Client
	if cfg.Cache.Enabled {
		cacheClient = cache.New(cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Cache.TTL,
		})
	}

	checker := ai.MoralChecker(opts.MoralChecker)
	if checker == nil && cfg.MoralCheck.Enabled && cfg.MoralCheck.ServiceURL != "" {
		client, err := ai.NewMoralCheckClient(cfg.MoralCheck.ServiceURL, cfg.MoralCheck.Timeout, log)
		if err != nil {
			return nil, err
		}
		checker = client
	}

	c := &Container{
		Config:     cfg,
		Logger:     log,
		DB:         db,
		Store:      store,
		Cache:      cacheClient,
		JWTService: jwt.NewService(cfg.JWT.Secret, cfg.JWT.Expiry),
	}

	c.FeedbackQueryEngine = service.NewFeedbackQueryEngine(store)
	c.SummaryService = service.NewSummaryService(store, cacheClient, log)
	c.ModerationService = service.NewModerationService(store, c.SummaryService, opts.Notifier, log)
	c.CommentService = service.NewCommentService(store, log)
	c.UtilizationService = service.NewUtilizationService(store, log)
	c.SuggestionService = service.NewSuggestionService(store, checker, opts.Captcha, cfg, log)

	c.Health = health.NewChecker(log, 30*time.Second)
	c.Health.RegisterDatabaseCheck(func() error {
		return config.TestConnection(db)
	})
	if cacheClient != nil {
		c.Health.RegisterCacheCheck(cacheClient.Ping)
	}

	return c, nil
}
