package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/JulioFS/zforum/internal/config"
	"github.com/JulioFS/zforum/internal/database"
	"github.com/JulioFS/zforum/internal/handler"
	"github.com/JulioFS/zforum/internal/middleware"
	"github.com/JulioFS/zforum/internal/models"
	"github.com/JulioFS/zforum/internal/repository"
	"github.com/JulioFS/zforum/internal/router"
	"github.com/JulioFS/zforum/internal/service"
	"github.com/JulioFS/zforum/pkg/bannerfs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Channel{},
		&models.ChannelAdmin{},
		&models.ChannelMembership{},
		&models.Topic{},
		&models.SystemSetting{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Drain()
	}

	banners, err := bannerfs.New(cfg.BannerRoot, cfg.BannerPublicBase, logger)
	if err != nil {
		log.Fatalf("failed to prepare banner storage: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	channelRepo := repository.NewChannelRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	accessService := service.NewAccessService(channelRepo, membershipRepo, logger)
	events := service.NewEventPublisher(natsConn, redisClient, cfg.EventSubjectBase, logger)
	membershipService := service.NewMembershipService(membershipRepo, channelRepo, accessService, events, cfg.MembershipTermYears, logger)
	channelService := service.NewChannelService(channelRepo, accessService, banners, redisClient, cfg.ListingCacheTTL, cfg.BannerMaxBytes, logger)
	topicService := service.NewTopicService(topicRepo, channelRepo, accessService, events, validate, logger)
	rankService := service.NewRankService(channelRepo, cfg.RankRefreshInterval, logger)
	settingsService := service.NewSettingsService(settingRepo, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := settingsService.Seed(ctx); err != nil {
		log.Fatalf("failed to seed system settings: %v", err)
	}
	rankService.Start(ctx)

	channelHandler := handler.NewChannelHandler(channelService, membershipService, logger)
	topicHandler := handler.NewTopicHandler(topicService, logger)
	settingHandler := handler.NewSettingHandler(settingsService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ChannelHandler: channelHandler,
		TopicHandler:   topicHandler,
		SettingHandler: settingHandler,
		JWTRequired:    middleware.JWTProtected(cfg.JWTSecret),
		JWTOptional:    middleware.JWTOptional(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(ctx, app)
}

func waitForShutdown(ctx context.Context, app *fiber.App) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
