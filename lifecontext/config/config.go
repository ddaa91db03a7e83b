package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	APIHost string
	APIPort string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	JWTSecret string
	APIKey    string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string

	RedisAddr string

	LLMBaseURL string
	LLMModel   string

	SettingsPath string
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return Config{
		APIHost:        getEnv("API_HOST", "localhost"),
		APIPort:        getEnv("API_PORT", "8000"),
		DBUser:         getEnv("DB_USER", ""),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBHost:         getEnv("DB_HOST", ""),
		DBPort:         getEnv("DB_PORT", ""),
		DBName:         getEnv("DB_NAME", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		APIKey:         getEnv("API_KEY", ""),
		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:    getEnv("MINIO_BUCKET", "lifecontext"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		LLMBaseURL:     getEnv("LLM_BASE_URL", "http://localhost:11434"),
		LLMModel:       getEnv("LLM_MODEL", "gpt-oss:120b-cloud"),
		SettingsPath:   getEnv("SETTINGS_PATH", "./settings.yaml"),
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return fallback
}
