package main

import (
	"context"
	"net/http"
	"os"

	"civicreport-be/config"
	"civicreport-be/controllers"
	"civicreport-be/notify"
	"civicreport-be/repository"
	"civicreport-be/routes"
	"civicreport-be/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	logger := newLogger()

	db := config.ConnectDB()
	if db == nil {
		logger.Fatal("Failed to connect to MongoDB")
	}
	logger.Info("MongoDB connection established successfully!")

	config.ConnectRedis()
	logger.Info("Connected to Redis")

	issueRepo := repository.NewIssueRepo(config.GetCollection("issues"))
	userRepo := repository.NewUserRepo(config.GetCollection("users"))
	notificationRepo := repository.NewNotificationRepo(config.GetCollection("notifications"))

	ctx := context.Background()
	if err := issueRepo.EnsureIndexes(ctx); err != nil {
		logger.WithError(err).Warn("Failed to create issue indexes")
	}
	if err := notificationRepo.EnsureIndexes(ctx); err != nil {
		logger.WithError(err).Warn("Failed to create notification indexes")
	}

	publisher := notify.NewRedisPublisher(config.RedisClient)
	worker := notify.NewWorker(config.RedisClient, notificationRepo, logger)
	worker.Start(ctx)

	issueService := services.NewIssueService(issueRepo, userRepo, publisher, logger)
	notificationService := services.NewNotificationService(notificationRepo, logger)

	issueController := controllers.NewIssueController(issueService)
	notificationController := controllers.NewNotificationController(notificationService)
	authController := controllers.NewAuthController(userRepo, logger)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{os.Getenv("FRONTEND_ORIGIN")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	routes.AuthRoutes(r, authController)
	routes.IssueRoutes(r, issueController)
	routes.NotificationRoutes(r, notificationController)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
