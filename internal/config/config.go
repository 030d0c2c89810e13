package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds every environment-driven setting the server needs.
type Config struct {
	Port        string
	MongoURI    string
	MongoDBName string
	JWTSecret   string
	TokenExpiry time.Duration

	GeminiAPIKey string
	GeminiModel  string
}

// LoadConfig reads configuration from the environment, loading .env first
// when present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, relying on environment variables")
	}

	expiryHours, err := strconv.Atoi(getEnv("TOKEN_EXPIRY_HOURS", "24"))
	if err != nil {
		expiryHours = 24
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "fitbalance"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenExpiry: time.Duration(expiryHours) * time.Hour,

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
