// Package main runs the standalone message delivery worker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/parishdesk/backend/config"
	"github.com/parishdesk/backend/internal/messaging"
	"github.com/parishdesk/backend/internal/worker"
	"github.com/parishdesk/backend/pkg/database"
	"github.com/parishdesk/backend/pkg/queue"
	"github.com/parishdesk/backend/pkg/redis"
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

	var emailSender *messaging.EmailSender
	if cfg.SendGrid.APIKey != "" {
		emailSender = messaging.NewEmailSender(cfg.SendGrid.APIKey, cfg.Email.FromAddress, cfg.Email.FromName)
	}
	var phoneSender *messaging.PhoneSender
	if cfg.Twilio.AccountSID != "" {
		phoneSender = messaging.NewPhoneSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber)
	}

	jobQueue := queue.NewQueue(rdb.Client, logger)
	msgRepo := messaging.NewRepository(pool)
	processor := worker.NewMessageProcessor(msgRepo, emailSender, phoneSender, jobQueue, logger)

	runCtx, cancel := context.WithCancel(context.Background())
	go processor.Run(runCtx)
	logger.Info("message worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
