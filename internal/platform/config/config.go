package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures HTTP server level configuration.
type Server struct {
	Env              string
	Addr             string
	JWTSigningKey    string
	JWTIssuer        string
	TokenTTL         time.Duration
	VerificationTTL  time.Duration
	ShutdownTimeout  time.Duration
	SeedDemoAccounts bool

	Log      LogConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Mail     MailConfig
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

// RedisConfig holds connection settings for the verification and revocation stores.
// An empty URL selects the in-memory stores.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig holds the DSN for the user and task stores.
// An empty DSN selects the in-memory stores.
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int
}

// MailConfig selects how verification emails leave the process.
type MailConfig struct {
	Sender       string
	KafkaBrokers []string
	KafkaTopic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present.
func FromEnv() (Server, error) {
	_ = godotenv.Load()

	cfg := Server{
		Env:              getEnv("CAMPUS_ENV", "development"),
		Addr:             getEnv("CAMPUS_ADDR", ":8080"),
		JWTSigningKey:    os.Getenv("JWT_SIGNING_KEY"),
		JWTIssuer:        getEnv("JWT_ISSUER", "campus"),
		TokenTTL:         getDuration("TOKEN_TTL", 24*time.Hour),
		VerificationTTL:  getDuration("VERIFICATION_TTL", time.Hour),
		ShutdownTimeout:  getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		SeedDemoAccounts: getBool("SEED_DEMO_ACCOUNTS", false),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			DSN:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: getInt("DATABASE_MAX_OPEN_CONNS", 10),
		},
		Mail: MailConfig{
			Sender:       getEnv("MAIL_SENDER", "no-reply@campus.local"),
			KafkaBrokers: splitList(os.Getenv("MAIL_KAFKA_BROKERS")),
			KafkaTopic:   getEnv("MAIL_KAFKA_TOPIC", "campus.mail.verification"),
		},
	}

	if cfg.JWTSigningKey == "" {
		if cfg.IsProduction() {
			return Server{}, errors.New("JWT_SIGNING_KEY is required in production")
		}
		key, err := randomSigningKey()
		if err != nil {
			return Server{}, err
		}
		// Tokens issued by a development server do not survive a restart.
		cfg.JWTSigningKey = key
	}
	return cfg, nil
}

// IsProduction reports whether development defaults must be refused.
func (s Server) IsProduction() bool {
	return strings.EqualFold(s.Env, "production")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func randomSigningKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
