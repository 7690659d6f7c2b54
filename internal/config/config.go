package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Env     string // local, dev, prod
	Address string
}

type DatabaseConfig struct {
	PostgresConn string
	QueryTimeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
	LockWait time.Duration
}

type BotConfig struct {
	Token            string
	ReferralLinkBase string
}

type LoyaltyConfig struct {
	// курс конвертации балла в валюту при списании
	PointRate float64
	// минимальное количество баллов, которое разрешено списывать за раз
	MinPointsToRedeem int
}

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Bot      BotConfig
	Loyalty  LoyaltyConfig
}

func MustLoad() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Env:     getEnv("ENV", "local"),
			Address: getEnv("ADDRESS", ":8080"),
		},
		Database: DatabaseConfig{
			PostgresConn: mustGetEnv("POSTGRES_CONN"),
			QueryTimeout: getDurationEnv("QUERY_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			LockTTL:  getDurationEnv("DEBIT_LOCK_TTL", 5*time.Second),
			LockWait: getDurationEnv("DEBIT_LOCK_WAIT", 3*time.Second),
		},
		Bot: BotConfig{
			Token:            mustGetEnv("TELEGRAM_TOKEN"),
			ReferralLinkBase: getEnv("REFERRAL_LINK_BASE", "https://t.me/referalApi_bot?start="),
		},
		Loyalty: LoyaltyConfig{
			PointRate:         getFloatEnv("POINT_RATE", 1.0),
			MinPointsToRedeem: getIntEnv("MIN_POINTS_TO_REDEEM", 0),
		},
	}
}

func mustGetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		panic("missing required environment variable: " + key)
	}
	return value
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		panic("Invalid " + key + " format: " + err.Error())
	}
	return value
}

func getFloatEnv(key string, fallback float64) float64 {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		panic("Invalid " + key + " format: " + err.Error())
	}
	return value
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		panic("Invalid " + key + " format: " + err.Error())
	}
	return value
}
