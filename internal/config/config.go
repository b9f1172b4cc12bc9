package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port              string
	RPCURL            string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	LogLevel          string
	SnapshotTTL       time.Duration
	DefaultSlippage   decimal.Decimal
	TokensFile        string
	RateLimitRPS      float64
	RateLimitBurst    int
	// TrustProxyHeaders keys rate limits on X-Forwarded-For / X-Real-IP.
	TrustProxyHeaders bool
}

// Load reads an optional .env file and then the process environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables, falling back to defaults.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		RPCURL:        getEnv("ETH_RPC_URL", "https://eth.llamarpc.com"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		TokensFile:    getEnv("TOKENS_FILE", "config/tokens.json"),
	}

	var err error
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.SnapshotTTL, err = durationEnv("SNAPSHOT_TTL", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = intEnv("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}

	trust := getEnv("TRUST_PROXY_HEADERS", "false")
	if cfg.TrustProxyHeaders, err = strconv.ParseBool(trust); err != nil {
		return nil, fmt.Errorf("%w: TRUST_PROXY_HEADERS=%q", ErrInvalidConfig, trust)
	}

	rps := getEnv("RATE_LIMIT_RPS", "10")
	if cfg.RateLimitRPS, err = strconv.ParseFloat(rps, 64); err != nil || cfg.RateLimitRPS <= 0 {
		return nil, fmt.Errorf("%w: RATE_LIMIT_RPS=%q", ErrInvalidConfig, rps)
	}

	slippage := getEnv("DEFAULT_SLIPPAGE", "0.5")
	cfg.DefaultSlippage, err = decimal.NewFromString(slippage)
	if err != nil || cfg.DefaultSlippage.IsNegative() || cfg.DefaultSlippage.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return nil, fmt.Errorf("%w: DEFAULT_SLIPPAGE=%q", ErrInvalidConfig, slippage)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	raw := getEnv(key, strconv.Itoa(defaultValue))
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, key, raw)
	}
	return v, nil
}

func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, defaultValue.String())
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, key, raw)
	}
	return v, nil
}
