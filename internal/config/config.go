package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	GinMode          string
	MongoURI         string
	MongoDatabase    string
	RabbitMQURI      string
	RabbitMQExchange string
	RedisAddr        string
	DraftStore       string // memory | mongo | redis
	LLMBaseURL       string
	LLMAPIKey        string
	LLMModel         string
	JWTSecret        string
	AllowOrigins     []string
	QuestionCount    int
	ServiceName      string
	ServiceVersion   string
}

func Load() *Config {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		GinMode:          getEnvOrDefault("GIN_MODE", "debug"),
		MongoURI:         getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:    getEnvOrDefault("MONGO_DATABASE", "practice_service"),
		RabbitMQURI:      getEnvOrDefault("RABBITMQ_URI", ""),
		RabbitMQExchange: getEnvOrDefault("RABBITMQ_EXCHANGE", ""),
		RedisAddr:        getEnvOrDefault("REDIS_ADDR", ""),
		DraftStore:       getEnvOrDefault("DRAFT_STORE", "mongo"),
		LLMBaseURL:       getEnvOrDefault("BASE_URL", "http://localhost:11434/v1"),
		LLMAPIKey:        getEnvOrDefault("API_KEY", ""),
		LLMModel:         getEnvOrDefault("MODEL", "qwen3:1.7b"),
		JWTSecret:        getEnvOrDefault("JWT_SECRET", ""),
		AllowOrigins:     []string{getEnvOrDefault("ALLOW_ORIGIN", "http://localhost:3000")},
		QuestionCount:    getEnvIntOrDefault("QUESTION_COUNT", 5),
		ServiceName:      getEnvOrDefault("SERVICE_NAME", "practice-service"),
		ServiceVersion:   getEnvOrDefault("SERVICE_VERSION", "1.0.0"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
