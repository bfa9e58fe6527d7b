package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/webnovel/internal/ai"
	"github.com/xxxsen/webnovel/internal/config"
	"github.com/xxxsen/webnovel/internal/content"
	"github.com/xxxsen/webnovel/internal/db"
	"github.com/xxxsen/webnovel/internal/filestore"
	"github.com/xxxsen/webnovel/internal/handler"
	"github.com/xxxsen/webnovel/internal/job"
	"github.com/xxxsen/webnovel/internal/middleware"
	"github.com/xxxsen/webnovel/internal/repo"
	"github.com/xxxsen/webnovel/internal/schedule"
	"github.com/xxxsen/webnovel/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "webnovel",
		Short: "webnovel backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run webnovel server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
	)

	userRepo := repo.NewUserRepo(conn)
	bookRepo := repo.NewBookRepo(conn)
	chapterRepo := repo.NewChapterRepo(conn)
	mediaRepo := repo.NewMediaRepo(conn)
	commentRepo := repo.NewCommentRepo(conn)

	files, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}
	contentStore := content.NewStore(files)

	jwtTTL := time.Hour * time.Duration(cfg.JWTTTLHours)
	authService := service.NewAuthService(userRepo, []byte(cfg.JWTSecret), jwtTTL)
	bookService := service.NewBookService(bookRepo, chapterRepo, mediaRepo, contentStore, files)
	chapterService := service.NewChapterService(bookRepo, chapterRepo, mediaRepo, contentStore, files)
	mediaService := service.NewMediaService(bookRepo, chapterRepo, mediaRepo, files, chapterService, cfg.PublicBaseURL)
	commentService := service.NewCommentService(commentRepo, chapterRepo, mediaRepo, contentStore)

	var aiService *service.AIService
	if cfg.AI.Provider != "" {
		provider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
		if err != nil {
			return fmt.Errorf("init ai provider: %w", err)
		}
		gen := ai.NewGenerator(provider, cfg.AI.Model)
		aiService = service.NewAIService(gen, chapterRepo, contentStore,
			cfg.AI.MaxInputChars, time.Duration(cfg.AI.TimeoutSecs)*time.Second)
	} else {
		aiService = service.NewAIService(nil, chapterRepo, contentStore, cfg.AI.MaxInputChars, 0)
	}

	deps := handler.RouterDeps{
		Auth:      handler.NewAuthHandler(authService),
		Books:     handler.NewBookHandler(bookService),
		Chapters:  handler.NewChapterHandler(chapterService),
		Media:     handler.NewMediaHandler(mediaService),
		Comments:  handler.NewCommentHandler(commentService),
		AI:        handler.NewAIHandler(aiService),
		Files:     handler.NewFileHandler(files),
		JWTSecret: []byte(cfg.JWTSecret),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewPublishScheduledJob(chapterService), cfg.Jobs.PublishSpec); err != nil {
		return fmt.Errorf("schedule publish job: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
