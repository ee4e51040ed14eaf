package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For splitting the admin id list
	"time"    // For the gateway timeout

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort        string         // HTTP API port
	DBUser         string         // Database user
	DBPassword     string         // Database password
	DBHost         string         // Database host
	DBPort         string         // Database port
	DBName         string         // Database name
	JWTSecret      string         // JWT secret shared with front-end services
	RedisAddr      string         // Redis server address
	RedisPass      string         // Redis password
	RedisDB        int            // Redis database number
	BotToken       string         // Telegram bot token
	GatewayBaseURL string         // Payment gateway base URL
	GatewayToken   string         // Payment gateway API token
	GatewayTimeout time.Duration  // Upper bound on a single gateway call
	CallbackToken  string         // Bearer token the gateway presents on callbacks
	AdminIDs       map[int64]bool // Static admin allow-list, OR'd with the stored flag
	IsProd         bool           // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	timeoutSecs, err := strconv.Atoi(os.Getenv("GATEWAY_TIMEOUT_SECONDS"))
	if err != nil || timeoutSecs <= 0 {
		timeoutSecs = 15 // Default bound for gateway calls
	}
	baseURL := os.Getenv("GATEWAY_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.playwallet.bot" // Default gateway endpoint
	}
	return &Config{
		AppPort:        os.Getenv("APP_PORT"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         os.Getenv("DB_PORT"),
		DBName:         os.Getenv("DB_NAME"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPass:      os.Getenv("REDIS_PASS"),
		RedisDB:        redisDB,
		BotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		GatewayBaseURL: baseURL,
		GatewayToken:   os.Getenv("GATEWAY_API_TOKEN"),
		GatewayTimeout: time.Duration(timeoutSecs) * time.Second,
		CallbackToken:  os.Getenv("GATEWAY_CALLBACK_TOKEN"),
		AdminIDs:       ParseAdminIDs(os.Getenv("ADMIN_IDS")),
		IsProd:         os.Getenv("IS_PROD") == "true",
	}
}

// ParseAdminIDs parses a comma-separated list of Telegram ids into a set
func ParseAdminIDs(raw string) map[int64]bool {
	ids := make(map[int64]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue // Skip malformed entries rather than failing startup
		}
		ids[id] = true
	}
	return ids
}
