package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Server holds process settings for `arcade serve`, read from the
// environment (optionally seeded from a .env file).
type Server struct {
	Addr            string // ARCADE_ADDR
	DBPath          string // ARCADE_DB
	SessionBackend  string // ARCADE_SESSION_BACKEND: sqlite, redis or memory
	RedisURL        string // ARCADE_REDIS_URL
	RedisPassword   string // ARCADE_REDIS_PASSWORD
	LogLevel        string // ARCADE_LOG_LEVEL
	SessionsPerMin  int    // ARCADE_SESSIONS_PER_MINUTE, per client address
	RulesPath       string // ARCADE_RULES
	RunnerPath      string // ARCADE_RUNNER
	CORSAllowOrigin string // ARCADE_CORS_ORIGIN
}

// LoadServerEnv reads server settings. envFiles are loaded first when they
// exist; variables already set in the environment take precedence.
func LoadServerEnv(envFiles ...string) Server {
	_ = godotenv.Load(envFiles...)

	return Server{
		Addr:            getEnv("ARCADE_ADDR", ":8080"),
		DBPath:          getEnv("ARCADE_DB", "~/.arcade/leaderboard.db"),
		SessionBackend:  getEnv("ARCADE_SESSION_BACKEND", "sqlite"),
		RedisURL:        getEnv("ARCADE_REDIS_URL", "localhost:6379"),
		RedisPassword:   os.Getenv("ARCADE_REDIS_PASSWORD"),
		LogLevel:        getEnv("ARCADE_LOG_LEVEL", "info"),
		SessionsPerMin:  getEnvInt("ARCADE_SESSIONS_PER_MINUTE", 30),
		RulesPath:       os.Getenv("ARCADE_RULES"),
		RunnerPath:      os.Getenv("ARCADE_RUNNER"),
		CORSAllowOrigin: getEnv("ARCADE_CORS_ORIGIN", "*"),
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
