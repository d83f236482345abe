package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"practice-service/internal/config"
	"practice-service/internal/db"
	"practice-service/internal/event"
	"practice-service/internal/handlers"
	"practice-service/internal/llm"
	"practice-service/internal/middleware"
	"practice-service/internal/repository"
	"practice-service/internal/service"
	"practice-service/internal/storage"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.WithFields(logrus.Fields{
		"service": cfg.ServiceName,
		"version": cfg.ServiceVersion,
	}).Info("starting")

	gin.SetMode(cfg.GinMode)

	mongoClient, err := db.Connect(cfg.MongoURI)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to MongoDB")
	}
	database := mongoClient.Database(cfg.MongoDatabase)

	// RabbitMQ event publisher
	var publisher *event.Publisher
	if cfg.RabbitMQURI != "" && cfg.RabbitMQExchange != "" {
		publisher, err = event.NewPublisher(cfg.RabbitMQURI, cfg.RabbitMQExchange, logger)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to RabbitMQ")
		}
		defer publisher.Close()
	} else {
		logger.Info("RabbitMQ not configured, events will not be published")
	}

	// Draft storage backend
	var drafts storage.DraftStore
	switch cfg.DraftStore {
	case "memory":
		drafts = storage.NewMemoryStore()
	case "redis":
		if cfg.RedisAddr == "" {
			logger.Fatal("DRAFT_STORE=redis requires REDIS_ADDR")
		}
		drafts = storage.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	default:
		drafts = storage.NewMongoStore(database)
	}

	questionRepo := repository.NewQuestionRepository(database)
	sessionRepo := repository.NewSessionRepository(database)
	resultRepo := repository.NewResultRepository(database)

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
	generationService := service.NewGenerationService(llmClient, logger)
	practiceService := service.NewPracticeService(generationService, drafts, sessionRepo, resultRepo, questionRepo, logger)

	sessionHandler := handlers.NewSessionHandler(practiceService)
	questionHandler := handlers.NewQuestionHandler(questionRepo)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": cfg.ServiceName, "version": cfg.ServiceVersion})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	publicQuestion := r.Group("/public/practice/question")
	{
		publicQuestion.GET("/", questionHandler.ListQuestions)
		publicQuestion.GET("/:id", questionHandler.GetQuestion)
		publicQuestion.GET("/category/:category", questionHandler.GetQuestionsByCategory)
	}

	protected := r.Group("/protected/practice")
	protected.Use(middleware.ValidateJWT(cfg.JWTSecret), middleware.RequireUser())

	protectedQuestion := protected.Group("/question")
	{
		protectedQuestion.POST("/", questionHandler.CreateQuestion)
		protectedQuestion.PUT("/:id", questionHandler.UpdateQuestion)
		protectedQuestion.DELETE("/:id", questionHandler.DeleteQuestion)
	}

	protectedSession := protected.Group("/session")
	{
		protectedSession.POST("/", func(c *gin.Context) {
			sessionHandler.StartSession(c)
			if publisher != nil {
				publisher.Publish("session.started", gin.H{"user_id": c.GetHeader("X-User-ID")})
			}
		})
		protectedSession.GET("/:id", sessionHandler.GetSession)
		protectedSession.GET("/:id/progress", sessionHandler.GetProgress)
		protectedSession.GET("/:id/metrics", sessionHandler.GetMetrics)
		protectedSession.POST("/:id/goto/:index", sessionHandler.GoToQuestion)
		protectedSession.POST("/:id/next", sessionHandler.NextQuestion)
		protectedSession.POST("/:id/previous", sessionHandler.PreviousQuestion)
		protectedSession.POST("/:id/draft", sessionHandler.UpdateDraft)
		protectedSession.POST("/:id/autosave", sessionHandler.AutoSave)
		protectedSession.POST("/:id/answer", func(c *gin.Context) {
			sessionHandler.SubmitAnswer(c)
			if publisher != nil {
				publisher.Publish("session.answer", gin.H{"session_id": c.Param("id")})
			}
		})
		protectedSession.POST("/:id/hint", func(c *gin.Context) {
			sessionHandler.RevealHint(c)
			if publisher != nil {
				publisher.Publish("session.hint", gin.H{"session_id": c.Param("id")})
			}
		})
		protectedSession.POST("/:id/complete", func(c *gin.Context) {
			sessionHandler.CompleteSession(c)
			if publisher != nil {
				publisher.Publish("session.completed", gin.H{"session_id": c.Param("id")})
			}
		})
		protectedSession.POST("/:id/end", sessionHandler.EndSession)
		protectedSession.POST("/:id/reset", sessionHandler.ResetSession)
	}

	protectedUser := protected.Group("/user")
	{
		protectedUser.GET("/:id/results", sessionHandler.GetResultsByUser)
	}

	logger.WithField("port", cfg.Port).Info("listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
