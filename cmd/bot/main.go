package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kitchen_notification_bot/internal/app"
	"kitchen_notification_bot/internal/domain/notification"
	domainTelegram "kitchen_notification_bot/internal/domain/telegram"
	"kitchen_notification_bot/internal/infra/config"
	idb "kitchen_notification_bot/internal/infra/database"
	"kitchen_notification_bot/internal/infra/httpapi"
	"kitchen_notification_bot/internal/infra/logger"
	"kitchen_notification_bot/internal/infra/memory"
	"kitchen_notification_bot/internal/infra/orderapi"
	"kitchen_notification_bot/internal/infra/scheduler"
	"kitchen_notification_bot/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	fmt.Println("Kitchen Notification Bot starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.Infof("INFO: Configuration loaded. LogLevel: %s, Environment: %s, Staff ID: %s", cfg.LogLevel, cfg.Environment, cfg.StaffID)

	// Order service client: snapshot source, dish enricher and item service
	// in one adapter.
	orderClient := orderapi.NewClient(cfg.OrderAPIURL, cfg.StaffID, cfg.PollTimeout)
	log.Info("INFO: Order service client initialized.")

	// Processed set: durable Postgres when DATABASE_URL is set, otherwise
	// in-memory for the lifetime of the session.
	var processedRepo notification.ProcessedRepository
	if cfg.DatabaseURL != "" {
		db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("FATAL: Could not connect to database: %v", err)
		}
		defer db.Close()
		processedRepo = idb.NewPostgresProcessedRepository(db)
		log.Info("INFO: Durable processed-set repository initialized (Postgres).")
	} else {
		processedRepo = memory.NewProcessedRepository()
		log.Info("INFO: In-memory processed-set repository initialized.")
	}

	// Optional Telegram alert channel.
	var bot *telebot.Bot
	var telegramClient *telegram.TelebotAdapter
	if cfg.TelegramToken != "" {
		pref := telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) { // Global error handler
				log.Errorf("ERROR (telebot): %v", err)
			},
		}
		bot, err = telebot.NewBot(pref)
		if err != nil {
			log.Fatalf("FATAL: Could not create Telegram bot: %v", err)
		}
		telegramClient = telegram.NewTelebotAdapter(bot)
		log.Info("INFO: Telegram alert channel enabled.")
	}

	// A typed nil adapter must not leak into the interface, or the service
	// would believe the channel is enabled.
	var alertChannel domainTelegram.Client
	if telegramClient != nil {
		alertChannel = telegramClient
	}

	// Core services.
	store := app.NewNotificationStore()
	notifService := app.NewNotificationService(
		orderClient,
		orderClient,
		processedRepo,
		store,
		alertChannel,
		log,
		app.NotificationServiceConfig{
			ActorID:              cfg.StaffID,
			IncludeAllStaff:      cfg.NotifyAllStaff,
			RenotifyOnCorrection: cfg.RenotifyOnCorrection,
			RetryCap:             cfg.EnrichRetryCap,
			EnrichTimeout:        cfg.EnrichTimeout,
			KitchenChatID:        cfg.KitchenChatID,
		},
	)
	batchService := app.NewBatchService(orderClient, log)
	log.Info("INFO: Notification and batch services initialized.")

	// Poll scheduler.
	pollScheduler := scheduler.NewPollScheduler(orderClient, notifService, batchService, log, cfg.PollCronSpec, cfg.PollTimeout)
	if err := pollScheduler.Start(); err != nil {
		log.Fatalf("FATAL: Could not start poll scheduler: %v", err)
	}
	go pollScheduler.RunOnce() // Eager first cycle instead of waiting a tick.

	// Telegram callback handlers.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if bot != nil {
		telegram.RegisterAlertHandlers(ctx, bot, notifService)
		go bot.Start()
		log.Info("INFO: Telegram alert handlers registered.")
	}

	// Display-surface REST API.
	server := httpapi.NewServer(notifService, batchService, log, cfg.HTTPPort)
	go func() {
		if err := server.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: HTTP server stopped: %v", err)
		}
	}()
	log.Infof("INFO: Display API listening on port %s.", cfg.HTTPPort)

	log.Info("INFO: Application setup complete.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	log.Info("INFO: Shutting down application...")
	pollScheduler.Stop()
	notifService.Close()
	if bot != nil {
		bot.Stop()
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("ERROR: HTTP server shutdown failed: %v", err)
	}
	log.Info("INFO: Application shut down gracefully.")
}
