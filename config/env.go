package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Service   string
	Env       string
	HTTP      HTTPConfig
	GRPC      GRPCConfig
	Redis     RedisConfig
	DB        DBConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Pricing   PricingConfig
	Reports   ReportConfig
	Gateway   GatewayConfig
	Seed      bool
}

type HTTPConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

type GRPCConfig struct {
	Port string
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SlowQuery    time.Duration
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type RateLimitConfig struct {
	Login   string
	Gateway string
}

// PricingConfig controls the sale-price recomputation applied on restock.
type PricingConfig struct {
	AutoMarkup    bool
	MarkupPercent decimal.Decimal
	RoundingStep  decimal.Decimal
}

type ReportConfig struct {
	LowStockFallback int32
	ExpiryWindowDays int
	TopItems         int
	RecentSales      int
}

type GatewayConfig struct {
	CafeURL       string
	FarmaURL      string
	CafeGRPCAddr  string
	FarmaGRPCAddr string
}

// LoadConfig reads the environment for the named service. The DSN is taken
// from <SERVICE>_DSN first and DATABASE_URL second.
func LoadConfig(service string) Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	prefix := strings.ToUpper(service) + "_"

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	dsn := os.Getenv(prefix + "DSN")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}

	return Config{
		Service: getEnv("SERVICE_NAME", service),
		Env:     getEnv("ENV", "dev"),
		HTTP: HTTPConfig{
			Port:           getEnv(prefix+"HTTP_PORT", getEnv("HTTP_PORT", "8080")),
			ReadTimeout:    getDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
			AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", "*"),
		},
		GRPC: GRPCConfig{
			Port: getEnv(prefix+"GRPC_PORT", getEnv("GRPC_PORT", "50051")),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		DB: DBConfig{
			DSN:          dsn,
			MaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			SlowQuery:    getDuration("DB_SLOW_QUERY", 200*time.Millisecond),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "152fe54a-ac31-4d3c-b94b-6135cc25c55a"),
			TokenTTL:  getDuration("JWT_TTL", 24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Login:   getEnv("LOGIN_RATE_LIMIT", "10-M"),
			Gateway: getEnv("GATEWAY_RATE_LIMIT", "300-M"),
		},
		Pricing: PricingConfig{
			AutoMarkup:    getBool("PRICING_AUTO_MARKUP", false),
			MarkupPercent: getDecimal("PRICING_MARKUP_PERCENT", decimal.NewFromInt(20)),
			RoundingStep:  getDecimal("PRICING_ROUNDING_STEP", decimal.NewFromInt(500)),
		},
		Reports: ReportConfig{
			LowStockFallback: int32(getInt("LOW_STOCK_FALLBACK", 10)),
			ExpiryWindowDays: getInt("EXPIRY_WINDOW_DAYS", 90),
			TopItems:         getInt("REPORT_TOP_ITEMS", 5),
			RecentSales:      getInt("REPORT_RECENT_SALES", 3),
		},
		Gateway: GatewayConfig{
			CafeURL:       getEnv("CAFE_URL", "http://localhost:8081"),
			FarmaURL:      getEnv("FARMA_URL", "http://localhost:8082"),
			CafeGRPCAddr:  getEnv("CAFE_GRPC_ADDR", "localhost:50061"),
			FarmaGRPCAddr: getEnv("FARMA_GRPC_ADDR", "localhost:50062"),
		},
		Seed: getBool("SEED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getList(key, defaultValue string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(key, defaultValue), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if v, err := decimal.NewFromString(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
