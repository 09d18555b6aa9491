// Package main runs the background worker: the email queue consumer and
// the periodic milestone reminder sweep.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/causeplan/backend/config"
	"github.com/causeplan/backend/internal/auth"
	"github.com/causeplan/backend/internal/emaillogs"
	"github.com/causeplan/backend/internal/events"
	"github.com/causeplan/backend/internal/worker"
	"github.com/causeplan/backend/pkg/database"
	"github.com/causeplan/backend/pkg/mailer"
	"github.com/causeplan/backend/pkg/queue"
	"github.com/causeplan/backend/pkg/redis"
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

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	mail := mailer.New(mailer.Config{
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SMTPHost:    cfg.Email.SMTPHost,
		SMTPPort:    cfg.Email.SMTPPort,
		SMTPUser:    cfg.Email.SMTPUser,
		SMTPPass:    cfg.Email.SMTPPass,
	}, logger)
	if !mail.Enabled() {
		logger.Warn("smtp not configured, emails will be logged and dropped")
	}

	jobQueue := queue.NewQueue(rdb.Client, logger)
	emailLogsRepo := emaillogs.NewRepository(pool)
	eventRepo := events.NewRepository(pool)
	authRepo := auth.NewRepository(pool)

	processor := worker.NewEmailProcessor(mail, emailLogsRepo, jobQueue, logger)
	sweeper := worker.NewReminderSweeper(eventRepo, authRepo, emailLogsRepo, jobQueue,
		time.Duration(cfg.Reminders.SweepIntervalMinutes)*time.Minute, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	go sweeper.Run(workerCtx)
	logger.Info("worker started",
		zap.Int("sweep_interval_min", cfg.Reminders.SweepIntervalMinutes))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
