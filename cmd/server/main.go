// Package main runs the event planning HTTP API with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/causeplan/backend/config"
	"github.com/causeplan/backend/internal/assistant"
	"github.com/causeplan/backend/internal/attention"
	"github.com/causeplan/backend/internal/auth"
	"github.com/causeplan/backend/internal/emaillogs"
	"github.com/causeplan/backend/internal/events"
	"github.com/causeplan/backend/internal/middleware"
	"github.com/causeplan/backend/internal/milestones"
	"github.com/causeplan/backend/internal/organizations"
	"github.com/causeplan/backend/internal/permissions"
	"github.com/causeplan/backend/internal/templates"
	"github.com/causeplan/backend/pkg/database"
	"github.com/causeplan/backend/pkg/queue"
	"github.com/causeplan/backend/pkg/redis"
	"github.com/causeplan/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Organizations and team invites
	orgRepo := organizations.NewRepository(pool)
	orgHandler := organizations.NewHandler(orgRepo, logger)
	inviteHandler := organizations.NewInviteHandler(orgRepo, jobQueue, cfg.App.BaseURL, cfg.App.InviteExpireHours, logger)

	// Events and milestones
	eventRepo := events.NewRepository(pool)
	milestoneRepo := milestones.NewRepository(pool)
	milestoneHandler := milestones.NewHandler(milestoneRepo, orgRepo, logger)

	// Templates, versioning and the event/template diff
	templateRepo := templates.NewRepository(pool)
	templateHandler := templates.NewHandler(templateRepo, eventRepo, logger)
	eventHandler := events.NewHandler(eventRepo, templateRepo, logger)

	// Attention dashboard
	attentionHandler := attention.NewHandler(eventRepo, logger)

	// AI milestone assistant (optional; off without an API key)
	var assistantClient *assistant.Client
	if cfg.OpenAI.APIKey != "" {
		assistantClient = assistant.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
	} else {
		logger.Info("assistant disabled, no OPENAI_API_KEY")
	}
	assistantHandler := assistant.NewHandler(assistantClient, logger)

	// Email audit log
	emailLogsRepo := emaillogs.NewRepository(pool)
	emailLogsHandler := emaillogs.NewHandler(emailLogsRepo)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Public invite preview (the accept page loads this before login)
	router.GET("/invites/:token/validate", inviteHandler.ValidateInvite)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.GET("/auth/me", authHandler.Me)
		api.POST("/invites/:token/accept", inviteHandler.AcceptInvite)

		// Organizations
		api.GET("/organizations", orgHandler.ListMyOrganizations)
		api.POST("/organizations", orgHandler.CreateOrganization)
		api.GET("/organizations/:id", middleware.RequireOrgPermission(orgRepo, permissions.PermOrgView), orgHandler.GetOrganization)
		api.PATCH("/organizations/:id", middleware.RequireOrgPermission(orgRepo, permissions.PermOrgEdit), orgHandler.UpdateOrganization)
		api.DELETE("/organizations/:id", middleware.RequireOrgPermission(orgRepo, permissions.PermOrgArchive), orgHandler.ArchiveOrganization)

		// Team
		api.GET("/organizations/:id/members", middleware.RequireOrgPermission(orgRepo, permissions.PermTeamView), orgHandler.ListMembers)
		api.GET("/organizations/:id/assignable-roles", middleware.RequireOrgPermission(orgRepo, permissions.PermTeamView), orgHandler.ListAssignableRoles)
		api.PATCH("/organizations/:id/members/:userId", middleware.RequireOrgPermission(orgRepo, permissions.PermTeamChangeRoles), orgHandler.ChangeMemberRole)
		api.DELETE("/organizations/:id/members/:userId", middleware.RequireOrgPermission(orgRepo, permissions.PermTeamRemove), orgHandler.RemoveMember)
		api.POST("/organizations/:id/invites", middleware.RequireOrgPermission(orgRepo, permissions.PermTeamInvite), inviteHandler.CreateInvite)

		// Events
		api.POST("/organizations/:id/events", middleware.RequireOrgPermission(orgRepo, permissions.PermEventCreate), eventHandler.CreateEvent)
		api.GET("/organizations/:id/events", middleware.RequireOrgPermission(orgRepo, permissions.PermEventView), eventHandler.ListEvents)
		api.GET("/events/:id", events.RequirePermission(eventRepo, orgRepo, permissions.PermEventView), eventHandler.GetEvent)
		api.PATCH("/events/:id", events.RequirePermission(eventRepo, orgRepo, permissions.PermEventEdit), eventHandler.UpdateEvent)
		api.PATCH("/events/:id/status", events.RequirePermission(eventRepo, orgRepo, permissions.PermEventChangeStatus), eventHandler.ChangeStatus)
		api.DELETE("/events/:id", events.RequirePermission(eventRepo, orgRepo, permissions.PermEventDelete), eventHandler.DeleteEvent)
		api.GET("/events/:id/emails", events.RequirePermission(eventRepo, orgRepo, permissions.PermEventView), emailLogsHandler.ListByEvent)

		// Milestones
		api.POST("/events/:id/milestones", events.RequirePermission(eventRepo, orgRepo, permissions.PermMilestoneCreate), milestoneHandler.CreateMilestone)
		api.PATCH("/milestones/:id", milestoneHandler.UpdateMilestone)
		api.PATCH("/milestones/:id/status", milestoneHandler.ChangeStatus)
		api.PATCH("/milestones/:id/assign", milestoneHandler.AssignMilestone)
		api.DELETE("/milestones/:id", milestoneHandler.DeleteMilestone)

		// Templates and versioning
		api.POST("/organizations/:id/templates", middleware.RequireOrgPermission(orgRepo, permissions.PermTemplateCreate), templateHandler.CreateTemplate)
		api.GET("/organizations/:id/templates", middleware.RequireOrgPermission(orgRepo, permissions.PermTemplateView), templateHandler.ListTemplates)
		api.GET("/templates/:id", templates.RequirePermission(templateRepo, orgRepo, permissions.PermTemplateView), templateHandler.GetTemplate)
		api.GET("/templates/:id/versions", templates.RequirePermission(templateRepo, orgRepo, permissions.PermTemplateView), templateHandler.ListVersions)
		api.POST("/templates/:id/versions", templates.RequirePermission(templateRepo, orgRepo, permissions.PermTemplateVersion), templateHandler.CreateVersion)
		api.DELETE("/templates/:id", templates.RequirePermission(templateRepo, orgRepo, permissions.PermTemplateDelete), templateHandler.DeactivateTemplate)
		api.GET("/events/:id/template-diff", events.RequirePermission(eventRepo, orgRepo, permissions.PermTemplateView), templateHandler.EventTemplateDiff)

		// Attention dashboard
		api.GET("/organizations/:id/attention", middleware.RequireOrgPermission(orgRepo, permissions.PermMilestoneView), attentionHandler.GetAttention)

		// Email audit log
		api.GET("/organizations/:id/emails", middleware.RequireOrgPermission(orgRepo, permissions.PermOrgView), emailLogsHandler.ListByOrg)

		// AI assistant (feeds template creation, so gated the same way)
		api.POST("/organizations/:id/assistant/milestones", middleware.RequireOrgPermission(orgRepo, permissions.PermTemplateCreate), assistantHandler.GenerateMilestones)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
