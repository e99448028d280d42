package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string

	DBDriver         string
	DatabaseDSN      string
	DBMaxRetries     int
	DBMaxRetryDelay  time.Duration
	DBCommandTimeout time.Duration
	ResetDB          bool

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTExpiry   time.Duration

	CORSAllowedOrigins []string
	SeedUsersPath      string

	LogLevel  string
	LogFormat string

	SwaggerHost string
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		DBDriver:           strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DatabaseDSN:        getEnv("DATABASE_DSN", "user:password@tcp(localhost:3306)/taskmanager?charset=utf8mb4&parseTime=True&loc=UTC"),
		DBMaxRetries:       getEnvInt("DB_MAX_RETRIES", 5),
		DBMaxRetryDelay:    getEnvDuration("DB_MAX_RETRY_DELAY", 30*time.Second),
		DBCommandTimeout:   getEnvDuration("DB_COMMAND_TIMEOUT", 30*time.Second),
		ResetDB:            getEnvBool("RESET_DB", false),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		RedisPass:          os.Getenv("REDIS_PASSWORD"),
		JWTSecret:          getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTIssuer:          getEnv("JWT_ISSUER", "TaskManagerAPI"),
		JWTAudience:        getEnv("JWT_AUDIENCE", "TaskManagerClient"),
		JWTExpiry:          time.Duration(getEnvInt("JWT_EXPIRY_MINUTES", 60)) * time.Minute,
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		SeedUsersPath:      os.Getenv("SEED_USERS_PATH"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		SwaggerHost:        os.Getenv("SWAGGER_HOST"),
	}
}

// DefaultJWTSecret is the development signing secret; main warns when it is in use.
const DefaultJWTSecret = "change-me"

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
