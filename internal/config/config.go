package config

import "os"

// Config holds environment-driven configuration.
type Config struct {
	Addr        string
	DatabaseURL string
	RedisAddr   string
	JWTSecret   string
}

// Load reads configuration from environment variables.
func Load() Config {
	addr := os.Getenv("MALL_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	return Config{
		Addr:        addr,
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisAddr:   redisAddr,
		JWTSecret:   os.Getenv("JWT_SECRET"),
	}
}
