package main

import (
	"log"
	"strings"
	"time"

	"anoa.com/homeboard/internal/config"
	"anoa.com/homeboard/internal/handler"
	"anoa.com/homeboard/internal/middleware"
	"anoa.com/homeboard/internal/model"
	"anoa.com/homeboard/internal/repository"
	"anoa.com/homeboard/internal/service"
	"anoa.com/homeboard/internal/ws"
	"anoa.com/homeboard/pkg/database"
	"anoa.com/homeboard/pkg/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	imageStorage, err := buildStorage(cfg)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
	}

	var searchService service.SearchService
	if cfg.MeiliSearchHost != "" {
		client := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		searchService = service.NewSearchService(client)
	}

	hub := ws.NewHub()
	go hub.Run()

	userRepo := repository.NewUserRepository(db)
	personRepo := repository.NewPersonRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	authService := service.NewAuthService(userRepo, postRepo, imageStorage, cfg.JWTSecret, cfg.JWTTTL)
	personService := service.NewPersonService(personRepo)
	recordService := service.NewRecordService(recordRepo, personRepo)
	medicineService := service.NewMedicineService(recordRepo)
	reminderService := service.NewReminderService(recordRepo)
	feedService := service.NewFeedService(postRepo, commentRepo, likeRepo, imageStorage, searchService, redisClient, cfg.RateLimitPost)

	authHandler := handler.NewAuthHandler(authService)
	personHandler := handler.NewPersonHandler(personService)
	recordHandler := handler.NewRecordHandler(recordService, medicineService, reminderService, hub)
	feedHandler := handler.NewFeedHandler(feedService, searchService, hub)
	eventsHandler := handler.NewEventsHandler(hub)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.MaxMultipartMemory = 8 << 20

	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.StorageBackend == "local" {
		router.Static("/uploads", cfg.UploadDir)
	}

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api.Use(authMiddleware.RequireAuth())
	{
		api.DELETE("/users/me", authHandler.DeleteAccount)

		api.GET("/people", personHandler.GetPeople)
		api.POST("/people", personHandler.CreatePerson)
		api.DELETE("/people/:id", personHandler.DeletePerson)

		api.GET("/records", recordHandler.GetRecords)
		api.POST("/records", recordHandler.CreateRecord)
		api.PUT("/records/:id", recordHandler.UpdateRecord)
		api.PUT("/records/:id/status", recordHandler.UpdateStatus)
		api.DELETE("/records/:id", recordHandler.DeleteRecord)
		api.POST("/shopping/clear", recordHandler.ClearShopping)

		api.PUT("/records/:id/purchase", recordHandler.TogglePurchase)
		api.POST("/records/:id/refill", recordHandler.RefillMedicine)
		api.PUT("/records/:id/quantity", recordHandler.SetMedicineQuantity)

		api.GET("/posts", feedHandler.GetPosts)
		api.POST("/posts", feedHandler.CreatePost)
		api.GET("/posts/search", feedHandler.SearchPosts)
		api.PUT("/posts/:id", feedHandler.UpdatePost)
		api.DELETE("/posts/:id", feedHandler.DeletePost)
		api.POST("/posts/:id/like", feedHandler.ToggleLike)
		api.POST("/posts/:id/comments", feedHandler.AddComment)
		api.DELETE("/comments/:id", feedHandler.DeleteComment)

		api.GET("/events", eventsHandler.Subscribe)
	}

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Person{},
		&model.Record{},
		&model.Post{},
		&model.Comment{},
		&model.PostLike{},
	)
}

func buildStorage(cfg *config.Config) (storage.ImageStorage, error) {
	if cfg.StorageBackend == "cloudinary" {
		return storage.NewCloudinaryStorage()
	}
	return storage.NewLocalStorage(cfg.UploadDir)
}
