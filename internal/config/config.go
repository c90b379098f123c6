package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the forum service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	JWTSecret           string
	BannerRoot          string
	BannerPublicBase    string
	BannerMaxBytes      int64
	MembershipTermYears int
	RankRefreshInterval time.Duration
	ListingCacheTTL     time.Duration
	EventSubjectBase    string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ZFORUM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "ZForum API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("banner.root", "data/banners")
	v.SetDefault("banner.public_base", "/static/banners")
	v.SetDefault("banner.max_bytes", 1500000)
	v.SetDefault("membership.term_years", 10)
	v.SetDefault("rank.refresh_interval", "15m")
	v.SetDefault("listing.cache_ttl", "1m")
	v.SetDefault("events.subject_base", "zforum")

	rankInterval, err := time.ParseDuration(v.GetString("rank.refresh_interval"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid rank refresh interval: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("listing.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid listing cache ttl: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		JWTSecret:           v.GetString("jwt.secret"),
		BannerRoot:          v.GetString("banner.root"),
		BannerPublicBase:    strings.TrimRight(v.GetString("banner.public_base"), "/"),
		BannerMaxBytes:      v.GetInt64("banner.max_bytes"),
		MembershipTermYears: v.GetInt("membership.term_years"),
		RankRefreshInterval: rankInterval,
		ListingCacheTTL:     cacheTTL,
		EventSubjectBase:    v.GetString("events.subject_base"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.BannerMaxBytes <= 0 {
		cfg.BannerMaxBytes = 1500000
	}

	if cfg.MembershipTermYears <= 0 {
		cfg.MembershipTermYears = 10
	}

	return cfg, nil
}
