package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"

	config "github.com/autumsam/postpilot/configs"
	"github.com/autumsam/postpilot/internal/api/handlers"
	"github.com/autumsam/postpilot/internal/api/middleware"
	"github.com/autumsam/postpilot/internal/composer"
	job "github.com/autumsam/postpilot/internal/jobs"
	"github.com/autumsam/postpilot/internal/queue"
	"github.com/autumsam/postpilot/internal/repository"
	"github.com/autumsam/postpilot/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	asynqClient := asynq.NewClient(redisConn)
	defer asynqClient.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer rdb.Close()

	loc, err := time.LoadLocation(cfg.ScheduleTimezone)
	if err != nil {
		log.Printf("Unknown schedule timezone %q, falling back to UTC", cfg.ScheduleTimezone)
		loc = time.UTC
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	postMediaRepo := repository.NewPostMediaRepository(db)
	selectedAccountRepo := repository.NewSelectedAccountRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)
	postingHistoryRepo := repository.NewPostingHistoryRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	apiKeyRepo := repository.NewApiKeyRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	r2Service := service.NewR2Service(*cfg)
	mediaService := service.NewMediaService(mediaAssetRepo, r2Service)
	twitterService := service.NewTwitterService(*cfg, socialAccountRepo, postMediaRepo, mediaAssetRepo)
	instagramService := service.NewInstagramService(*cfg, socialAccountRepo, postMediaRepo, mediaAssetRepo)
	facebookService := service.NewFacebookService(*cfg, socialAccountRepo, postMediaRepo, mediaAssetRepo)
	linkedinService := service.NewLinkedInService(*cfg, socialAccountRepo, postMediaRepo, mediaAssetRepo)
	tiktokService := service.NewTiktokService(*cfg, socialAccountRepo, postMediaRepo, mediaAssetRepo)
	platformService := service.NewPlatformService(*cfg, socialAccountRepo, tiktokService)
	settingsService := service.NewSettingsService(settingsRepo)
	apiKeyService := service.NewApiKeyService(apiKeyRepo)
	subscriptionService := service.NewSubscriptionService(userRepo, subscriptionRepo)
	trendingService := service.NewTrendingService(*cfg, rdb)
	aiService := service.NewAIService(*cfg, postRepo, trendingService)

	enqueuer := queue.NewEnqueuer(asynqClient)
	postService := service.NewPostService(db, postRepo, selectedAccountRepo, socialAccountRepo, postMediaRepo, postingHistoryRepo, enqueuer)

	sessions := composer.NewManager(postService, aiService, settingsService, loc)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	auth := handlers.NewAuthHandler(*cfg, authService, sessions)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallback)

	platform := handlers.NewPlatformHandler(platformService, twitterService, instagramService, facebookService, linkedinService, tiktokService, *cfg)
	app.Get("/auth/:platform", platform.AddSocialAccount)
	app.Get("/auth/:platform/callback", platform.CallbackHandler)

	subscription := handlers.NewSubscriptionHandler(subscriptionService)
	app.Post("/webhooks/subscription", subscription.Webhook)

	api := app.Group("/api")
	api.Use(authMiddleware.RequireAuth())

	app.Get("/logout", authMiddleware.RequireAuth(), auth.Logout)

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUser)
	api.Post("/user/remove", user.RemoveUser)

	cmp := handlers.NewComposerHandler(sessions, mediaService)
	api.Get("/composer", cmp.Snapshot)
	api.Post("/composer/platforms/toggle", cmp.TogglePlatform)
	api.Put("/composer/content", cmp.SetContent)
	api.Post("/composer/content/hashtag", cmp.AppendHashtag)
	api.Post("/composer/content/mention", cmp.AppendMention)
	api.Post("/composer/content/emoji", cmp.AppendEmoji)
	api.Post("/composer/media", cmp.UploadMedia)
	api.Post("/composer/media/library", cmp.AddLibraryTrack)
	api.Patch("/composer/media/:id", cmp.UpdateMedia)
	api.Delete("/composer/media/:id", cmp.RemoveMedia)
	api.Delete("/composer/media", cmp.ClearMedia)
	api.Get("/composer/preview", cmp.Preview)
	api.Put("/composer/schedule/date", cmp.SetScheduleDate)
	api.Put("/composer/schedule/time", cmp.SetScheduleTime)
	api.Post("/composer/commit/now", cmp.CommitNow)
	api.Post("/composer/commit/schedule", cmp.CommitSchedule)
	api.Post("/composer/candidate/select", cmp.SelectCandidate)

	ai := handlers.NewAIHandler(sessions, trendingService)
	api.Post("/ai/generate", ai.Generate)
	api.Get("/ai/trending", ai.Trending)

	post := handlers.NewPostHandler(postService)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/history", post.History)
	api.Post("/posts/remove", post.RemovePost)

	api.Get("/accounts", platform.ListSocialAccounts)
	api.Post("/accounts/remove", platform.DeleteSocialAccount)

	settings := handlers.NewSettingsHandler(settingsService)
	api.Get("/settings/info", settings.GetSettings)
	api.Post("/settings/update", settings.UpdateSettings)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveKey)

	api.Get("/subscription", subscription.Overview)

	admin := handlers.NewAdminHandler(userService)
	adminGroup := api.Group("/admin", authMiddleware.RequireAdmin())
	adminGroup.Get("/users", admin.ListUsers)
	adminGroup.Post("/users/role", admin.UpdateRole)
	adminGroup.Post("/users/status", admin.BulkUpdateStatus)
	adminGroup.Post("/users/plan", admin.UpdatePlan)

	refreshTokenJob := job.NewTokenRefreshJob(socialAccountRepo, twitterService, instagramService, facebookService, linkedinService, tiktokService)

	queueW := queue.NewQueue(postRepo, selectedAccountRepo, socialAccountRepo, postingHistoryRepo, twitterService, instagramService, facebookService, linkedinService, tiktokService)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
