package main

import (
	"fmt"
	"log"

	"workdrive/config"
	"workdrive/database"
	"workdrive/handlers"
	"workdrive/logger"
	"workdrive/middleware"
	"workdrive/models"
	"workdrive/repositories"
	"workdrive/services"
	"workdrive/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("starting workdrive service")

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	logger.SetLevel(cfg.Log.Level)

	if err := database.InitMySQL(&cfg.Database); err != nil {
		log.Fatalf("init mysql failed: %v", err)
	}

	database.DB.AutoMigrate(
		&models.User{},
		&models.Folder{},
		&models.File{},
	)
	log.Println("database migration completed")

	if err := database.InitRedis(&cfg.Redis); err != nil {
		log.Fatalf("init redis failed: %v", err)
	}

	store, err := storage.New(&cfg.Storage)
	if err != nil {
		log.Fatalf("init storage failed: %v", err)
	}

	repoContainer := repositories.NewGormRepositories(database.DB, database.RedisClient).BuildContainer()
	serviceContainer := services.NewContainer(repoContainer, store)
	handlers.SetServices(serviceContainer)

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestLogger())
	setupRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("server listening on http://%s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server start failed: %v", err)
	}
}

func setupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.GET("/health", handlers.HealthCheck)

	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
		auth.GET("/oauth/:provider", handlers.OAuthLogin)
		auth.GET("/oauth/:provider/callback", handlers.OAuthCallback)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", handlers.GetProfile)

		protected.GET("/workspace", handlers.BrowseWorkspace)

		protected.POST("/folders", handlers.CreateFolder)
		protected.PUT("/folders/:id", handlers.RenameFolder)
		protected.DELETE("/folders/:id", handlers.DeleteFolder)

		protected.POST("/items/move", handlers.MoveItem)

		protected.POST("/files/upload", handlers.UploadFiles)
		protected.POST("/files/upload-tree", handlers.UploadTree)
		protected.GET("/files/:id/download", handlers.DownloadFile)
		protected.PUT("/files/:id/rename", handlers.RenameFile)
		protected.DELETE("/files/:id", handlers.DeleteFile)
	}
}
