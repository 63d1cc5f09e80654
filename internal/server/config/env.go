package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from environment variables. A .env file in
// the working directory is loaded first if present; real environment
// variables win over the file.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setIfSet := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setIfSet(&config.EndpointAddrHTTP, "HTTP_ADDR")
	setIfSet(&config.DatabaseDSN, "DATABASE_DSN")
	setIfSet(&config.AccessTokenSecret, "ACCESS_TOKEN_SECRET")
	setIfSet(&config.RefreshTokenSecret, "REFRESH_TOKEN_SECRET")
	setIfSet(&config.CookieDomain, "COOKIE_DOMAIN")
	setIfSet(&config.S3AccessKey, "S3_ACCESS_KEY")
	setIfSet(&config.S3SecretKey, "S3_SECRET_KEY")
	setIfSet(&config.S3Bucket, "S3_BUCKET")
	setIfSet(&config.S3Region, "S3_REGION")
	setIfSet(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")

	setDurationIfSet := func(dst *time.Duration, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}
	setDurationIfSet(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")
	setDurationIfSet(&config.RefreshTokenValidityDuration, "REFRESH_TOKEN_TTL")

	if v, ok := os.LookupEnv("COOKIE_SECURE"); ok {
		config.CookieSecure = v == "true" || v == "1"
	}
}
