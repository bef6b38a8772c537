package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	BackendBaseURL  string
	LeadSinkURL     string
	LeadSinkSecret  string
	RedisURL        string
	TrackingBaseURL string

	MetaAccountID     string
	GoogleCustomerID  string
	TikTokAdvertiser  string
	YouTubeChannelID  string
	MicroBudgetAmount int

	Port          string
	LogLevel      string
	HTTPTimeout   time.Duration
	FetchTimeout  time.Duration
	RetryAttempts int
	LeadHistory   int
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	httpTimeout, _ := time.ParseDuration(getEnv("HTTP_TIMEOUT", "30s"))
	fetchTimeout, _ := time.ParseDuration(getEnv("FETCH_TIMEOUT", "10s"))
	retryAttempts, _ := strconv.Atoi(getEnv("RETRY_ATTEMPTS", "3"))
	leadHistory, _ := strconv.Atoi(getEnv("LEAD_HISTORY_LIMIT", "100"))
	microBudget, _ := strconv.Atoi(getEnv("MICRO_BUDGET_AMOUNT", "100"))

	return &Config{
		BackendBaseURL:  getEnv("BACKEND_BASE_URL", "https://api.attributelypro.com"),
		LeadSinkURL:     getEnv("LEAD_SINK_URL", ""),
		LeadSinkSecret:  getEnv("LEAD_SINK_SECRET", "attributely_secret_example"),
		RedisURL:        getEnv("REDIS_URL", ""),
		TrackingBaseURL: getEnv("TRACKING_BASE_URL", "https://attributelypro.com"),

		MetaAccountID:     getEnv("META_ACCOUNT_ID", "act_1038930414999384"),
		GoogleCustomerID:  getEnv("GOOGLE_CUSTOMER_ID", "7453703942"),
		TikTokAdvertiser:  getEnv("TIKTOK_ADVERTISER_ID", "7517787463485482881"),
		YouTubeChannelID:  getEnv("YOUTUBE_CHANNEL_ID", ""),
		MicroBudgetAmount: microBudget,

		Port:          getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		HTTPTimeout:   httpTimeout,
		FetchTimeout:  fetchTimeout,
		RetryAttempts: retryAttempts,
		LeadHistory:   leadHistory,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
