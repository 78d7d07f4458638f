package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/brandbeam/brandbeam/internal/config"
	"github.com/brandbeam/brandbeam/internal/repository"
	"github.com/brandbeam/brandbeam/internal/service"
	"github.com/brandbeam/brandbeam/internal/service/publisher"
	"github.com/brandbeam/brandbeam/internal/service/publisher/platforms"
	"github.com/brandbeam/brandbeam/internal/service/reports"
)

type Server struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Router *gin.Engine
	Logger *zap.Logger
	Server *http.Server

	// Repositories
	Content      repository.ContentRepository
	Integrations *repository.IntegrationRepository
	Tasks        *repository.TaskRepository
	Users        *repository.UserRepository

	// Services
	Auth         *service.AuthService
	Orchestrator *service.Orchestrator
	Reports      *reports.Service
	Crawler      *service.CrawlerService
	Performance  *service.PerformanceService
	Scheduler    *service.Scheduler
	PlanWorker   *service.ActionPlanWorker
	Snapshots    *service.SnapshotUpdater
}

func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	// Set gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := service.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := service.NewRedis(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	// Repositories
	content := repository.NewContentRepository(db)
	integrations := repository.NewIntegrationRepository(db)
	tasks := repository.NewTaskRepository(db)
	users := repository.NewUserRepository(db)

	// Publisher fan-out with one client per supported platform
	manager := publisher.NewManager(integrations, logger)
	for _, p := range []publisher.Publisher{
		platforms.NewGitHubPublisher(logger),
		platforms.NewRedditPublisher(logger),
		platforms.NewMediumPublisher(logger),
		platforms.NewQuoraPublisher(logger),
		platforms.NewFacebookPublisher(logger),
		platforms.NewLinkedInPublisher(logger),
		platforms.NewInstagramPublisher(logger),
		platforms.NewShopifyPublisher(logger),
	} {
		if err := manager.Register(p); err != nil {
			return nil, fmt.Errorf("failed to register publisher: %w", err)
		}
	}

	taskInterval, err := time.ParseDuration(cfg.Scheduler.TaskInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid task interval: %w", err)
	}
	snapshotInterval, err := time.ParseDuration(cfg.Scheduler.SnapshotInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot interval: %w", err)
	}

	// Services
	orchestrator := service.NewOrchestrator(content, tasks, manager, logger)

	srv := &Server{
		Config:       cfg,
		DB:           db,
		Redis:        rdb,
		Router:       gin.New(),
		Logger:       logger,
		Content:      content,
		Integrations: integrations,
		Tasks:        tasks,
		Users:        users,
		Auth:         service.NewAuthService(logger, users, cfg.Auth.AdminTOTPSecret),
		Orchestrator: orchestrator,
		Reports:      reports.NewService(db, rdb, cfg.Reports, logger),
		Crawler:      service.NewCrawlerService(db, &cfg.Crawler, logger),
		Performance:  service.NewPerformanceService(db, &cfg.Reports, logger),
		Scheduler:    service.NewScheduler(&cfg.Scheduler, logger, content, orchestrator),
		PlanWorker:   service.NewActionPlanWorker(tasks, logger, taskInterval),
		Snapshots:    service.NewSnapshotUpdater(db, users, logger, snapshotInterval),
	}

	// Setup middleware and routes
	srv.setupMiddleware()
	srv.setupRoutes()

	return srv, nil
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.Router.Use(gin.Recovery())

	// Logger middleware
	s.Router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	// CORS middleware
	s.Router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
}

func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// Shared report snapshots are public by design
	s.Router.GET("/share/:token", s.handleSharedReport)

	// API routes
	api := s.Router.Group("/api/v1")
	api.Use(s.Auth.APIKeyMiddleware())
	{
		content := api.Group("/content")
		{
			content.POST("", s.handleCreateContent)
		}

		orchestrator := api.Group("/orchestrator")
		{
			orchestrator.GET("", s.handleListContent)
			orchestrator.POST("", s.handleOrchestratorAction)
		}

		api.POST("/content-performance", s.handleContentPerformance)

		tools := api.Group("/tools")
		{
			tools.POST("/crawler", s.handleCrawler)
		}

		rep := api.Group("/reports")
		{
			rep.GET("/overview", s.handleReportOverview)
			rep.GET("/keywords", s.handleReportKeywords)
			rep.GET("/ai-visibility", s.handleReportAIVisibility)
			rep.GET("/gaps", s.handleReportGaps)
			rep.GET("/questions", s.handleReportQuestions)
			rep.GET("/export.csv", s.handleReportCSV)
			rep.POST("/share", s.handleReportShare)
			rep.POST("/email", s.handleReportEmail)
		}
	}

	// Admin routes behind TOTP session auth
	s.Router.POST("/admin/login", s.handleAdminLogin)
	admin := s.Router.Group("/admin")
	admin.Use(s.Auth.AdminMiddleware())
	{
		admin.GET("/summary", s.handleAdminSummary)
	}
}

func (s *Server) Start(ctx context.Context) error {
	// Start background workers
	if err := s.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	s.PlanWorker.Start(ctx)
	s.Snapshots.Start(ctx)

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)

	s.Server = &http.Server{
		Addr:    addr,
		Handler: s.Router,
	}

	s.Logger.Info("Starting HTTP server", zap.String("addr", addr))

	if s.Config.Server.CertFile != "" && s.Config.Server.KeyFile != "" {
		return s.Server.ListenAndServeTLS(s.Config.Server.CertFile, s.Config.Server.KeyFile)
	}

	return s.Server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop background workers first
	s.Scheduler.Stop()
	s.PlanWorker.Stop()
	s.Snapshots.Stop()

	if s.Server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.Server.Shutdown(shutdownCtx)
}
