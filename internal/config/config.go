package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string

	// Base64-encoded AES key (32 bytes) and IV (16 bytes) used to encrypt
	// the PII of deactivated accounts.
	EncryptionKey string
	EncryptionIV  string

	SMTPHost       string
	SMTPPort       string
	SMTPUser       string
	SMTPPassword   string
	SenderName     string
	SenderEmail    string
	PublicBaseURL  string
	CloudinaryURL  string
}

func Load() *Config {
	// Optional .env file for local development; real environments set the
	// variables directly.
	_ = godotenv.Load()

	return &Config{
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "3306"),
		DBUser:        getEnv("DB_USER", "taskly"),
		DBPassword:    getEnv("DB_PASSWORD", "taskly"),
		DBName:        getEnv("DB_NAME", "taskly"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),
		EncryptionIV:  getEnv("ENCRYPTION_IV", ""),
		SMTPHost:      getEnv("SMTP_HOST", "localhost"),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SenderName:    getEnv("SMTP_SENDER_NAME", "Taskly"),
		SenderEmail:   getEnv("SMTP_SENDER_EMAIL", "noreply@taskly.app"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		CloudinaryURL: getEnv("CLOUDINARY_URL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
