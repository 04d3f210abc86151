package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppPort           = "5000"
	defaultTokenTTL          = 240 * time.Hour
	defaultSMTPPort          = 587
	defaultNotificationTopic = "notifications.email"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string
	CORSOrigin string

	JWTSecret string
	TokenTTL  time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	NotificationBackend string
	NotificationTopic   string
	KafkaBrokers        []string

	InternalSecretKey string
}

// LoadConfig reads the environment (and .env when present) once at startup.
func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Environment variables not loaded properly: %v", err)
	}
	return cfg
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:              os.Getenv("DB_HOST"),
		DBUser:              os.Getenv("DB_USER"),
		DBPassword:          os.Getenv("DB_PASSWORD"),
		DBName:              os.Getenv("DB_NAME"),
		DBPort:              os.Getenv("DB_PORT"),
		AppPort:             getEnv("APP_PORT", defaultAppPort),
		AppEnv:              os.Getenv("APP_ENV"),
		CORSOrigin:          getEnv("CORS_ORIGIN", "http://localhost:3000"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		TokenTTL:            defaultTokenTTL,
		SMTPHost:            os.Getenv("SMTP_HOST"),
		SMTPPort:            defaultSMTPPort,
		SMTPUser:            os.Getenv("SMTP_USER"),
		SMTPPassword:        os.Getenv("SMTP_PASSWORD"),
		MailFrom:            getEnv("MAIL_FROM", "Rely Tailors <no-reply@relytailors.com>"),
		NotificationBackend: getEnv("NOTIFICATION_BACKEND", "gochannel"),
		NotificationTopic:   getEnv("NOTIFICATION_TOPIC", defaultNotificationTopic),
		KafkaBrokers:        splitList(os.Getenv("KAFKA_BROKERS")),
		InternalSecretKey:   os.Getenv("INTERNAL_SECRET_KEY"),
	}

	if v := os.Getenv("JWT_TTL_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours <= 0 {
			return nil, errors.New("JWT_TTL_HOURS must be a positive integer")
		}
		cfg.TokenTTL = time.Duration(hours) * time.Hour
	}

	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("SMTP_PORT must be a number")
		}
		cfg.SMTPPort = port
	}

	if cfg.DBHost == "" {
		return nil, errors.New("DB_HOST is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	if cfg.NotificationBackend == "kafka" && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required for the kafka notification backend")
	}

	return cfg, nil
}

// LoadDatabase reads only the DB_* keys, for tools such as the migration
// runner that never serve HTTP.
func LoadDatabase() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppEnv:     os.Getenv("APP_ENV"),
	}
	if cfg.DBHost == "" {
		return nil, errors.New("DB_HOST is not set")
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
