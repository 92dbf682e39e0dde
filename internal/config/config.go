package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env                   string
	MongoURI              string
	MongoDB               string
	ServerAddr            string
	PublicURL             string
	FrontendOrigins       []string
	RateLimitLeads        int
	RateLimitLogin        int
	RateLimitWindowSec    int
	RedisURL              string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	AdminEmail            string
	AdminPassword         string
	JWTSecret             string
	AccessTTLMinutes      int
	RefreshTTLMinutes     int
	RecentLoginMinutes    int
	LoginMaxAttempts      int
	LoginLockoutSec       int
	CookieSecure          bool
	CSRFKey               string
	NotifyEmail           string
	BrevoAPIKey           string
	BrevoSenderEmail      string
	BrevoSenderName       string
	BrevoSandbox          bool
	SMTPHost              string
	SMTPPort              int
	SMTPUser              string
	SMTPPassword          string
	SMTPFrom              string
	AMQPURL               string
	AMQPExchange          string
	MetricsEnabled        bool
	Timezone              *time.Location
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first without overriding variables that are
// already set.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	loc, err := time.LoadLocation(getEnv("TZ", "Asia/Kolkata"))
	if err != nil {
		return nil, err
	}

	mongoURI := getEnv("MONGO_URI", "mongodb://localhost:27017/ise")
	mongoDB := getEnv("MONGO_DB", "")
	if mongoDB == "" {
		mongoDB = mongoDBFromURI(mongoURI)
	}
	if mongoDB == "" {
		mongoDB = "ise"
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		MongoURI:           mongoURI,
		MongoDB:            mongoDB,
		ServerAddr:         getEnv("SERVER_ADDR", ":8080"),
		PublicURL:          getEnv("PUBLIC_URL", "http://localhost:8080"),
		FrontendOrigins:    getEnvList("FRONTEND_ORIGINS", []string{"http://localhost:5173"}),
		RateLimitLeads:     getEnvInt("RATE_LIMIT_LEADS", 5),
		RateLimitLogin:     getEnvInt("RATE_LIMIT_LOGIN", 10),
		RateLimitWindowSec: getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		AdminEmail:         getEnv("ADMIN_EMAIL", ""),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		AccessTTLMinutes:   getEnvInt("ACCESS_TTL_MINUTES", 60),
		RefreshTTLMinutes:  getEnvInt("REFRESH_TTL_MINUTES", 43200),
		RecentLoginMinutes: getEnvInt("RECENT_LOGIN_MINUTES", 0),
		LoginMaxAttempts:   getEnvInt("LOGIN_MAX_ATTEMPTS", 5),
		LoginLockoutSec:    getEnvInt("LOGIN_LOCKOUT_SEC", 900),
		CookieSecure:       getEnvBool("COOKIE_SECURE", false),
		CSRFKey:            getEnv("CSRF_KEY", ""),
		NotifyEmail:        getEnv("NOTIFY_EMAIL", "iseelevator@gmail.com"),
		BrevoAPIKey:        getEnv("BREVO_API_KEY", ""),
		BrevoSenderEmail:   getEnv("BREVO_SENDER_EMAIL", ""),
		BrevoSenderName:    getEnv("BREVO_SENDER_NAME", "ISE Elevators"),
		BrevoSandbox:       getEnvBool("BREVO_SANDBOX", false),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getEnvInt("SMTP_PORT", 587),
		SMTPUser:           getEnv("SMTP_USER", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:           getEnv("SMTP_FROM", "no-reply@iseelevators.in"),
		AMQPURL:            getEnv("AMQP_URL", ""),
		AMQPExchange:       getEnv("AMQP_EXCHANGE", "ise.events"),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		Timezone:           loc,
	}

	if cfg.Env == "production" && cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required in production")
	}

	return cfg, nil
}

// CSRFAuthKey returns the 32 byte key used to sign CSRF tokens. It falls back
// to the JWT secret so a single secret is enough in development.
func (c *Config) CSRFAuthKey() []byte {
	key := c.CSRFKey
	if key == "" {
		key = c.JWTSecret
	}
	if key == "" {
		key = "ise-development-csrf-key"
	}
	out := make([]byte, 32)
	copy(out, key)
	return out
}

func mongoDBFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	db := strings.Trim(u.Path, "/")
	if db == "" {
		return ""
	}
	// mongodb URIs sometimes include extra path segments; we only support the first one as db name.
	if idx := strings.Index(db, "/"); idx >= 0 {
		db = db[:idx]
	}
	return db
}
