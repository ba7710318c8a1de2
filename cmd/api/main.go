package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"kvadrat-backend/internal/auth"
	"kvadrat-backend/internal/cleanup"
	"kvadrat-backend/internal/config"
	"kvadrat-backend/internal/database"
	"kvadrat-backend/internal/handlers"
	"kvadrat-backend/internal/mailer"
	"kvadrat-backend/internal/scheduler"
	"kvadrat-backend/internal/tokencache"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; values already in the environment win
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	configPath := getEnv("CONFIG_PATH", "config/kvadrat.yaml")
	appConfig, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}

	if secret := os.Getenv("AUTH_SECRET"); secret != "" {
		appConfig.Auth.Secret = secret
	}
	if appConfig.Auth.Secret == "" {
		log.Fatal("Auth secret is not configured (set auth.secret or AUTH_SECRET)")
	}

	gormDB, err := database.NewGormDB(appConfig.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer gormDB.Close()

	if err := gormDB.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	// Token cache: Redis when configured, in-memory otherwise
	var cache tokencache.Store
	if appConfig.Redis.Addr != "" {
		redisStore, err := tokencache.NewRedisStore(appConfig.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis at %s: %v", appConfig.Redis.Addr, err)
		}
		cache = redisStore
		log.Printf("Token cache using Redis at %s", appConfig.Redis.Addr)
	} else {
		cache = tokencache.NewMemoryStore()
		log.Println("Token cache using in-memory store")
	}

	tokens := auth.NewTokenManager(appConfig.Auth.Secret, appConfig.Auth.AccessTTL(), appConfig.Auth.RefreshTTL())
	mail := mailer.NewSMTPMailer(appConfig.Mail)

	cleanupService := cleanup.NewService(gormDB.DB())
	appScheduler := scheduler.NewScheduler(cleanupService, appConfig.Cleanup)
	if err := appScheduler.Start(); err != nil {
		log.Printf("Warning: Failed to start scheduler: %v", err)
	}
	defer appScheduler.Stop()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     appConfig.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	propertyHandler := handlers.NewPropertyHandler(gormDB, appConfig.Media.Root)
	catalogHandler := handlers.NewCatalogHandler(gormDB)
	authHandler := handlers.NewAuthHandler(gormDB, tokens, cache, mail, *appConfig)
	userHandler := handlers.NewUserHandler(gormDB)
	adminHandler := handlers.NewAdminHandler(gormDB, cleanupService)

	authRequired := auth.RequireAuth(tokens, gormDB)
	staffRequired := auth.RequireStaff()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now()})
	})

	r.Static("/media", appConfig.Media.Root)

	api := r.Group("/api")
	{
		// Public read endpoints
		api.GET("/properties", propertyHandler.List)
		api.GET("/properties/featured", propertyHandler.Featured)
		api.GET("/properties/search", propertyHandler.Search)
		api.POST("/properties/filter", propertyHandler.Filter)
		api.GET("/properties/:id", propertyHandler.Retrieve)

		api.GET("/categories", catalogHandler.ListCategories)
		api.GET("/categories/:id", catalogHandler.GetCategory)
		api.GET("/amenities", catalogHandler.ListAmenities)
		api.GET("/amenities/:id", catalogHandler.GetAmenity)
		api.GET("/activities", catalogHandler.ListActivities)
		api.GET("/activities/:id", catalogHandler.GetActivity)
		api.GET("/banners", catalogHandler.ListBanners)
		api.GET("/banners/:id", catalogHandler.GetBanner)

		// Auth
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)
		api.POST("/auth/token/refresh", authHandler.Refresh)
		api.POST("/auth/forgot-password", authHandler.ForgotPassword)
		api.POST("/auth/reset-password", authHandler.ResetPassword)
		api.POST("/auth/change-password", authRequired, authHandler.ChangePassword)

		// Authenticated user endpoints
		user := api.Group("/user", authRequired)
		{
			user.GET("/me", userHandler.Me)
			user.GET("/profile", userHandler.MyProfile)
			user.PATCH("/profile", userHandler.UpdateMyProfile)
		}

		// Staff-only write endpoints
		staff := api.Group("", authRequired, staffRequired)
		{
			staff.POST("/properties", propertyHandler.Create)
			staff.PUT("/properties/:id", propertyHandler.Update)
			staff.PATCH("/properties/:id", propertyHandler.PartialUpdate)
			staff.DELETE("/properties/:id", propertyHandler.Delete)
			staff.POST("/properties/:id/upload_images", propertyHandler.UploadImages)

			staff.POST("/categories", catalogHandler.CreateCategory)
			staff.PUT("/categories/:id", catalogHandler.UpdateCategory)
			staff.DELETE("/categories/:id", catalogHandler.DeleteCategory)

			staff.POST("/amenities", catalogHandler.CreateAmenity)
			staff.PUT("/amenities/:id", catalogHandler.UpdateAmenity)
			staff.DELETE("/amenities/:id", catalogHandler.DeleteAmenity)

			staff.POST("/activities", catalogHandler.CreateActivity)
			staff.PUT("/activities/:id", catalogHandler.UpdateActivity)
			staff.DELETE("/activities/:id", catalogHandler.DeleteActivity)

			staff.POST("/banners", catalogHandler.CreateBanner)
			staff.PUT("/banners/:id", catalogHandler.UpdateBanner)
			staff.DELETE("/banners/:id", catalogHandler.DeleteBanner)

			staff.GET("/users", userHandler.ListUsers)
			staff.GET("/users/:id", userHandler.GetUser)
			staff.PATCH("/users/:id", userHandler.UpdateUser)
			staff.DELETE("/users/:id", userHandler.DeleteUser)
			staff.GET("/profiles", userHandler.ListProfiles)
			staff.GET("/profiles/:id", userHandler.GetProfile)
			staff.PATCH("/profiles/:id", userHandler.UpdateProfile)

			admin := staff.Group("/admin")
			{
				admin.GET("/stats", adminHandler.Stats)
				admin.POST("/cleanup/run", adminHandler.RunCleanup)
				admin.GET("/cleanup/logs", adminHandler.CleanupLogs)
			}
		}
	}

	port := getEnv("PORT", appConfig.Server.Port)
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
