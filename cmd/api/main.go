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
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lovemyfam/common-room-api/internal/config"
	"github.com/lovemyfam/common-room-api/internal/database"
	"github.com/lovemyfam/common-room-api/internal/handler"
	"github.com/lovemyfam/common-room-api/internal/middleware"
	"github.com/lovemyfam/common-room-api/internal/models"
	"github.com/lovemyfam/common-room-api/internal/repository"
	"github.com/lovemyfam/common-room-api/internal/router"
	"github.com/lovemyfam/common-room-api/internal/service"
	cloud "github.com/lovemyfam/common-room-api/pkg/cloudinary"
	push "github.com/lovemyfam/common-room-api/pkg/webpush"
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
		&models.User{},
		&models.SystemSettings{},
		&models.Post{},
		&models.PostLike{},
		&models.PostDismissal{},
		&models.Comment{},
		&models.CommentLike{},
		&models.ChatMessage{},
		&models.MessageReaction{},
		&models.AlbumMedia{},
		&models.Testimonial{},
		&models.Notification{},
		&models.PushSubscription{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient := connectRedis(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	natsConn := connectNATS(cfg, logger)
	if natsConn != nil {
		defer natsConn.Close()
	}

	var storage service.FileStorage
	if cfg.CloudinaryCloudName != "" {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		storage = uploader
	} else {
		logger.Warn().Msg("cloudinary not configured, uploads disabled")
	}

	var pusher service.PushSender
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		sender, err := push.New(push.Config{
			Subject:    cfg.VAPIDSubject,
			PublicKey:  cfg.VAPIDPublicKey,
			PrivateKey: cfg.VAPIDPrivateKey,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create web push sender: %v", err)
		}
		pusher = sender
	} else {
		logger.Warn().Msg("vapid keys not configured, web push disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	chatRepo := repository.NewChatRepository(db)
	albumRepo := repository.NewAlbumRepository(db)
	testimonialRepo := repository.NewTestimonialRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	pushRepo := repository.NewPushRepository(db)

	mailer := service.NewLogMailer(logger)

	notificationService := service.NewNotificationService(notificationRepo, pushRepo, pusher, validate, logger)
	authService := service.NewAuthService(userRepo, settingsRepo, chatRepo, mailer, validate, logger, cfg.SessionSecret, cfg.SessionTTL)
	feedService := service.NewFeedService(postRepo, userRepo, notificationService, validate, logger)
	commentService := service.NewCommentService(commentRepo, postRepo, userRepo, notificationService, validate, logger)
	chatService := service.NewChatService(chatRepo, redisClient, cfg.ChannelBase, natsConn, validate, logger)
	memberService := service.NewMemberService(userRepo, storage, validate, logger)
	albumService := service.NewAlbumService(albumRepo, storage, validate, logger)
	testimonialService := service.NewTestimonialService(testimonialRepo, userRepo, validate, logger)

	seeder := service.NewSeeder(userRepo, settingsRepo, logger)
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := seeder.Run(seedCtx, cfg.AdminEmail, cfg.AdminFirstName, cfg.AdminLastName); err != nil {
		seedCancel()
		log.Fatalf("failed to seed database: %v", err)
	}
	seedCancel()

	secureCookies := cfg.AppEnv == "production"

	healthHandler := handler.NewHealthHandler(db, redisClient, logger)
	authHandler := handler.NewAuthHandler(authService, logger, cfg.SessionTTL, secureCookies)
	feedHandler := handler.NewFeedHandler(feedService, logger)
	commentHandler := handler.NewCommentHandler(commentService, logger)
	chatHandler := handler.NewChatHandler(chatService, logger)
	memberHandler := handler.NewMemberHandler(memberService, logger)
	albumHandler := handler.NewAlbumHandler(albumService, logger, cfg.MaxUploadMB)
	testimonialHandler := handler.NewTestimonialHandler(testimonialService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.MaxUploadMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		HealthHandler:       healthHandler,
		AuthHandler:         authHandler,
		FeedHandler:         feedHandler,
		CommentHandler:      commentHandler,
		ChatHandler:         chatHandler,
		MemberHandler:       memberHandler,
		AlbumHandler:        albumHandler,
		TestimonialHandler:  testimonialHandler,
		NotificationHandler: notificationHandler,
		SessionRequired:     middleware.SessionProtected(cfg.SessionSecret, userRepo),
		SessionOptional:     middleware.SessionOptional(cfg.SessionSecret, userRepo),
	})

	runCtx, stopConsumers := context.WithCancel(context.Background())
	defer stopConsumers()
	chatService.Start(runCtx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func connectRedis(cfg config.Config, logger zerolog.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		logger.Warn().Msg("redis not configured, chat fan-out runs in-process only")
		return nil
	}

	client, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	return client
}

func connectNATS(cfg config.Config, logger zerolog.Logger) *nats.Conn {
	if cfg.NATSURL == "" {
		return nil
	}

	conn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	logger.Info().Msg("nats fan-out enabled")
	return conn
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
