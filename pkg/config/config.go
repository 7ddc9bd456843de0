package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL    string
	DatabaseDriver string

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	GCSBucket          string
	GCSCredentialsFile string
	MediaPublicBaseURL string
	MediaRoot          string

	SendGridAPIKey string
	SendGridFrom   string

	PasswordResetURL string
	PasswordResetTTL time.Duration

	CheckoutRatePerMin int
	DefaultWhatsApp    string
	CSRFEnabled        bool
	CookieSecure       bool
}

// Load reads the optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env not loaded: %v, using system environment", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DatabaseDriver: EnvDefault("DB_DRIVER", "pgx"),

		JWTAccessSecret:  []byte(os.Getenv("JWT_SECRET")),
		JWTRefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       EnvIntDefault("REDIS_DB", 0),
		SessionTTL:    time.Duration(EnvIntDefault("SESSION_TTL_HOURS", 24*14)) * time.Hour,

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		GCSBucket:          os.Getenv("GCS_BUCKET"),
		GCSCredentialsFile: os.Getenv("GCS_CREDENTIALS_FILE"),
		MediaPublicBaseURL: EnvDefault("MEDIA_PUBLIC_BASE_URL", "https://storage.googleapis.com"),
		MediaRoot:          EnvDefault("MEDIA_ROOT", "media"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		SendGridFrom:   os.Getenv("SENDGRID_FROM"),

		PasswordResetURL: EnvDefault("PASSWORD_RESET_URL", "http://localhost:8080/reset-password?token="),
		PasswordResetTTL: time.Duration(EnvIntDefault("PASSWORD_RESET_TTL_MINUTES", 60)) * time.Minute,

		CheckoutRatePerMin: EnvIntDefault("CHECKOUT_RATE_PER_MIN", 10),
		DefaultWhatsApp:    EnvDefault("DEFAULT_WHATSAPP", "+254700000000"),
		CSRFEnabled:        EnvDefault("CSRF_ENABLED", "true") == "true",
		CookieSecure:       EnvDefault("COOKIE_SECURE", "false") == "true",
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
