package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// App
	Env string // dev / staging / prod
	// HTTP
	HTTPAddr string
	// Auth / Security
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Infrastructure
	DBAddr        string
	DBDebug       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RabbitURL     string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Verification link flows (account activation / password reset).
	// Base URLs must end with `token=`; the service appends the token.
	VerifyAccountBaseURL  string
	PasswordResetBaseURL  string
	PasswordResetTokenTTL time.Duration

	NotifyWorkers int
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:      getEnv("ENV", "dev"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
	}

	// required values
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required env var: JWT_SECRET")
	}

	ttl, err := getDuration("ACCESS_TOKEN_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.AccessTokenTTL = ttl

	rtl, err := getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.RefreshTokenTTL = rtl

	cfg.VerifyAccountBaseURL = os.Getenv("VERIFY_ACCOUNT_BASE_URL")
	if cfg.VerifyAccountBaseURL == "" {
		return nil, fmt.Errorf("missing required env var: VERIFY_ACCOUNT_BASE_URL")
	}
	if !strings.Contains(cfg.VerifyAccountBaseURL, "token=") {
		return nil, fmt.Errorf("VERIFY_ACCOUNT_BASE_URL must contain `token=`")
	}

	cfg.PasswordResetBaseURL = os.Getenv("PASSWORD_RESET_BASE_URL")
	if cfg.PasswordResetBaseURL == "" {
		return nil, fmt.Errorf("missing required env var: PASSWORD_RESET_BASE_URL")
	}
	if !strings.Contains(cfg.PasswordResetBaseURL, "token=") {
		return nil, fmt.Errorf("PASSWORD_RESET_BASE_URL must contain `token=`")
	}

	// Reset links stay valid for one day.
	prt, err := getDuration("PASSWORD_RESET_TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.PasswordResetTokenTTL = prt

	// Infrastructure. Addresses are required outside dev; in dev missing
	// backends degrade to in-memory stand-ins at wire time.
	cfg.DBAddr = os.Getenv("DB_ADDR")
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RabbitURL = os.Getenv("RABBIT_URL")
	cfg.DBDebug = os.Getenv("DB_DEBUG") == "1"

	if cfg.Env != "dev" {
		if cfg.DBAddr == "" {
			return nil, fmt.Errorf("missing required env var: DB_ADDR")
		}
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("missing required env var: REDIS_ADDR")
		}
		if cfg.RabbitURL == "" {
			return nil, fmt.Errorf("missing required env var: RABBIT_URL")
		}
	}

	rdb, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.RedisDB = rdb

	nw, err := getInt("NOTIFY_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	cfg.NotifyWorkers = nw

	rt, err := getDuration("HTTP_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPReadTimeout = rt

	wt, err := getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPWriteTimeout = wt

	it, err := getDuration("HTTP_IDLE_TIMEOUT", time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.HTTPIdleTimeout = it

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %q: %w", key, v, err)
	}
	return n, nil
}
