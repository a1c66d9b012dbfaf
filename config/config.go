// File: /config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"
)

type Config struct {
	Environment string
	Port        string

	DatabaseDriver string
	DatabaseURL    string
	SeedData       bool

	// Token signing
	SecretKey       string
	Salt            string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ResetTokenTTL   time.Duration

	ServerTimezone *time.Location
	FrontendURL    string

	// Media
	StaticFolder     string
	DefaultUserImage string
	DefaultVanImage  string

	// Back-office
	AdminUsername   string
	AdminPassword   string
	AdminSessionTTL time.Duration

	// Email Configuration
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	FromEmail     string
	FromName      string
	MailWorkers   int
	MailQueueSize int
	MailPerMinute int

	// Optional infrastructure; empty values select the in-process fallbacks
	AMQPURL       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", EnvProduction)
	test := env == EnvTest

	accessTTL, refreshTTL, resetTTL := time.Hour, 14*24*time.Hour, 900*time.Second
	if test {
		accessTTL, refreshTTL, resetTTL = 5*time.Second, time.Minute, 5*time.Second
	}

	return &Config{
		Environment: env,
		Port:        getEnv("PORT", "8080"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", "mysql"),
		DatabaseURL:    getEnv("DATABASE_URL", "user:password@tcp(localhost:3306)/vanlife?charset=utf8mb4&parseTime=True&loc=UTC"),
		SeedData:       getBool("SEED_DATA", false),

		SecretKey:       getEnv("SECRET_KEY", "change-me"),
		Salt:            getEnv("SALT", "password-reset"),
		AccessTokenTTL:  getDuration("ACCESS_TOKEN_TTL", accessTTL),
		RefreshTokenTTL: getDuration("REFRESH_TOKEN_TTL", refreshTTL),
		ResetTokenTTL:   getDuration("RESET_TOKEN_TTL", resetTTL),

		ServerTimezone: getLocation("SERVER_TIMEZONE", "Europe/Riga"),
		FrontendURL:    strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),

		StaticFolder:     getEnv("STATIC_FOLDER", "static"),
		DefaultUserImage: "static/user/.default/default.png",
		DefaultVanImage:  "static/vans/.default/default.jpg",

		AdminUsername:   os.Getenv("ADMIN_USERNAME"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
		AdminSessionTTL: getDuration("ADMIN_SESSION_TTL", 8*time.Hour),

		SMTPHost:      getEnv("SMTP_HOST", "sandbox.smtp.mailtrap.io"),
		SMTPPort:      getInt("SMTP_PORT", 2525),
		SMTPUsername:  os.Getenv("SMTP_USERNAME"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		FromEmail:     getEnv("FROM_EMAIL", "vanlife@support.com"),
		FromName:      getEnv("FROM_NAME", "VanLife"),
		MailWorkers:   getInt("MAIL_WORKERS", 2),
		MailQueueSize: getInt("MAIL_QUEUE_SIZE", 64),
		MailPerMinute: getInt("MAIL_PER_MINUTE", 30),

		AMQPURL:       os.Getenv("AMQP_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", defaultLogFormat(env)),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func (c *Config) IsTest() bool {
	return c.Environment == EnvTest
}

func defaultLogFormat(env string) string {
	if env == EnvProduction {
		return "json"
	}
	return "text"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return b
}

// getDuration accepts Go durations ("15m") or a bare number of seconds ("900").
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return defaultValue
}

func getLocation(key, defaultValue string) *time.Location {
	loc, err := time.LoadLocation(getEnv(key, defaultValue))
	if err != nil {
		return time.UTC
	}
	return loc
}
