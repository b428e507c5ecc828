package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"dataset-feedback/backend/internal/models"
	"dataset-feedback/backend/pkg/config"
	"dataset-feedback/backend/pkg/di"
	"dataset-feedback/backend/pkg/logger"
	"dataset-feedback/backend/pkg/observability"
	"dataset-feedback/backend/pkg/router"
)

func main() {
	cfg := config.New()

	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"
	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("Starting dataset feedback engine", "env", cfg.Server.Env)

	shutdownTracing, err := observability.SetupTracing("dataset-feedback")
	if err != nil {
		log.LogError(err, "Failed to initialize tracing")
		os.Exit(1)
	}
	defer shutdownTracing()
	if _, err := observability.SetupMetrics(); err != nil {
		log.LogError(err, "Failed to initialize metrics")
		os.Exit(1)
	}

	container, err := di.New(cfg, log, di.Options{})
	if err != nil {
		log.LogError(err, "Failed to initialize dependency container")
		os.Exit(1)
	}

	if err := migrate(container.DB); err != nil {
		log.LogError(err, "Failed to migrate database")
		os.Exit(1)
	}

	container.Health.Start()

	r := router.New(container)
	r.SetupRoutes()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r.Engine,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.LogError(err, "Server forced to shutdown")
	}

	log.Info("Server exited gracefully")
}

// migrate creates the schema. The unique indexes on the summary and
// reaction tables back the idempotent upserts, so they are created
// explicitly before the server accepts traffic.
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Organization{},
		&models.Dataset{},
		&models.Resource{},
		&models.ResourceComment{},
		&models.ResourceCommentReply{},
		&models.ResourceCommentReaction{},
		&models.ResourceCommentSummary{},
		&models.Utilization{},
		&models.UtilizationComment{},
		&models.IssueResolution{},
		&models.UtilizationSummary{},
		&models.IssueResolutionSummary{},
		&models.DownloadSummary{},
		&models.ResourceLikeSummary{},
		&models.MoralCheckLog{},
	); err != nil {
		return err
	}

	uniqueIndexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_comment_summary_resource ON resource_comment_summaries(resource_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_utilization_summary_resource ON utilization_summaries(resource_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_issue_resolution_summary_utilization ON issue_resolution_summaries(utilization_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_download_summary_resource ON download_summaries(resource_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_like_summary_resource ON resource_like_summaries(resource_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_reaction_comment ON resource_comment_reactions(resource_comment_id)",
	}
	for _, stmt := range uniqueIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
