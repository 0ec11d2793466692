package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Demigodrick/community-bot/internal/config"
	"github.com/Demigodrick/community-bot/internal/database"
	"github.com/Demigodrick/community-bot/internal/lemmy"
	"github.com/Demigodrick/community-bot/internal/logger"
	"github.com/Demigodrick/community-bot/internal/metrics"
	"github.com/Demigodrick/community-bot/internal/notify"
	"github.com/Demigodrick/community-bot/internal/scheduler"
	"github.com/Demigodrick/community-bot/internal/server"
	"github.com/Demigodrick/community-bot/internal/services"
	"github.com/Demigodrick/community-bot/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log().WithError(err).Fatal("load config")
	}

	// Log to both stdout and a rotated file.
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		logger.Log().WithError(err).Fatal("ensure log directory")
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, "community-bot.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	logger.Init(cfg.Environment == "development", io.MultiWriter(os.Stdout, rotator))

	logger.Log().WithField("version", version.Full()).Info("starting " + version.Name)

	if cfg.Instance == "" || cfg.BotUsername == "" || cfg.BotPassword == "" {
		logger.Log().Fatal("CB_INSTANCE, CB_BOT_USERNAME and CB_BOT_PASSWORD must be set")
	}

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		logger.Log().WithError(err).Fatal("connect database")
	}

	platform := lemmy.New(cfg.Instance, cfg.BotUsername, cfg.BotPassword)
	if err := platform.Login(); err != nil {
		logger.Log().WithError(err).Fatal("platform login")
	}

	notifier := notify.New(cfg.NotifyURLs)
	rules := services.NewRuleService(db)
	engine := services.NewEnforcementService(db, rules, platform, notifier, cfg.BotAccountID)
	scanner := services.NewScanService(db, rules, engine, platform, cfg.ScanWindow)

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	sched := scheduler.New()
	if err := sched.Start(scanner.ScanCommunities, cfg.ScanInterval, engine.ProcessDueCases, cfg.EnforceInterval); err != nil {
		logger.Log().WithError(err).Fatal("start scheduler")
	}
	defer sched.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, registry, sched.LastEnforceTick)
	if err := srv.Run(ctx); err != nil {
		logger.Log().WithError(err).Fatal("server error")
	}

	logger.Log().Info("shutdown complete")
}
