package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yukikurage/goal-community-api/internal/constants"
)

type Config struct {
	ServerPort     string   `yaml:"server_port"`
	DBDriver       string   `yaml:"db_driver"` // postgres, mysql, sqlite
	DBDSN          string   `yaml:"db_dsn"`
	DBHost         string   `yaml:"db_host"`
	DBPort         string   `yaml:"db_port"`
	DBUser         string   `yaml:"db_user"`
	DBPassword     string   `yaml:"db_password"`
	DBName         string   `yaml:"db_name"`
	RedisHost      string   `yaml:"redis_host"`
	RedisPort      string   `yaml:"redis_port"`
	RedisURL       string   `yaml:"redis_url"`
	SessionSecret  string   `yaml:"session_secret"`
	JWTSecret      string   `yaml:"jwt_secret"`
	JWTExpireHours int      `yaml:"jwt_expire_hours"`
	GinMode        string   `yaml:"gin_mode"`
	LogLevel       string   `yaml:"log_level"`
	VoteThreshold  int64    `yaml:"vote_threshold"`
	OpenAIAPIKey   string   `yaml:"openai_api_key"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst"`
	CORSOrigins    []string `yaml:"cors_origins"`
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and finally the environment (a local .env file is loaded first).
// A CONFIG_FILE that cannot be read or parsed is an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DBDSN = getEnv("DB_DSN", cfg.DBDSN)
	cfg.DBHost = getEnv("DB_HOST", cfg.DBHost)
	cfg.DBPort = getEnv("DB_PORT", cfg.DBPort)
	cfg.DBUser = getEnv("DB_USER", cfg.DBUser)
	cfg.DBPassword = getEnv("DB_PASSWORD", cfg.DBPassword)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.RedisHost = getEnv("REDIS_HOST", cfg.RedisHost)
	cfg.RedisPort = getEnv("REDIS_PORT", cfg.RedisPort)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.SessionSecret = getEnv("SESSION_SECRET", cfg.SessionSecret)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.JWTExpireHours = getEnvInt("JWT_EXPIRE_HOURS", cfg.JWTExpireHours)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.VoteThreshold = int64(getEnvInt("VOTE_THRESHOLD", int(cfg.VoteThreshold)))
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.RateLimitRPS = getEnvFloat("RATE_LIMIT_RPS", cfg.RateLimitRPS)
	cfg.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", cfg.RateLimitBurst)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitList(origins)
	}

	if cfg.VoteThreshold < 1 {
		cfg.VoteThreshold = constants.DefaultVoteThreshold
	}

	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ServerPort:     "3000",
		DBDriver:       "postgres",
		DBHost:         "localhost",
		DBPort:         "5432",
		DBUser:         "goaluser",
		DBPassword:     "goalpassword",
		DBName:         "goal_community",
		RedisHost:      "localhost",
		RedisPort:      "6379",
		SessionSecret:  "default-secret-key-change-me",
		JWTSecret:      "default-jwt-secret-change-me",
		JWTExpireHours: constants.DefaultTokenHours,
		GinMode:        "debug",
		LogLevel:       "info",
		VoteThreshold:  constants.DefaultVoteThreshold,
		RateLimitRPS:   20,
		RateLimitBurst: 40,
		CORSOrigins:    []string{"*"},
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
