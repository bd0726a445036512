package main

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// config is resolved once from the environment (and .env) at startup.
type config struct {
	Port          string
	LogLevel      string
	LogPretty     bool
	JWTSecret     string
	TokenTTL      time.Duration
	ClientOrigin  string
	DBPath        string
	MigrationsDir string

	RedisAddr     string
	RedisPassword string
	RedisPrefix   string

	RoomIdleTTL     time.Duration
	RoomFinishedTTL time.Duration
	ReapInterval    time.Duration

	AnswersFile   string
	AllowedFile   string
	StrictGuesses bool
}

const devSecret = "dev_secret_change_me"

func loadConfig() config {
	return config{
		Port:          getEnv("PORT", "5175"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPretty:     envBool("LOG_PRETTY", false),
		JWTSecret:     getEnv("JWT_SECRET", devSecret),
		TokenTTL:      envDuration("TOKEN_TTL", 12*time.Hour),
		ClientOrigin:  getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		DBPath:        getEnv("DB_PATH", "./data/versus.db"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "sql"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisPrefix:   getEnv("REDIS_PREFIX", "versus:"),

		RoomIdleTTL:     envDuration("ROOM_IDLE_TTL", 30*time.Minute),
		RoomFinishedTTL: envDuration("ROOM_FINISHED_TTL", 5*time.Minute),
		ReapInterval:    envDuration("REAP_INTERVAL", time.Minute),

		AnswersFile:   os.Getenv("WORDS_ANSWERS_FILE"),
		AllowedFile:   os.Getenv("WORDS_ALLOWED_FILE"),
		StrictGuesses: envBool("STRICT_GUESSES", true),
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Msg("invalid boolean, using default")
		return def
	}
	return b
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Warn().Str("key", k).Str("value", v).Msg("invalid duration, using default")
		return def
	}
	return d
}
