package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	SessionSecret          string
	SessionTTL             time.Duration
	AdminEmail             string
	AdminFirstName         string
	AdminLastName          string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	VAPIDPublicKey         string
	VAPIDPrivateKey        string
	VAPIDSubject           string
	MaxUploadMB            int
	ChannelBase            string
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
	v.SetEnvPrefix("FAM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Common Room API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("session.ttl", "168h")
	v.SetDefault("admin.first_name", "Family")
	v.SetDefault("admin.last_name", "Admin")
	v.SetDefault("cloudinary.folder", "family-album")
	v.SetDefault("vapid.subject", "mailto:support@example.com")
	v.SetDefault("max_upload_mb", 25)
	v.SetDefault("channel_base", "commonroom")

	ttlString := v.GetString("session.ttl")
	if ttlString == "" {
		ttlString = "168h"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		SessionSecret:          v.GetString("session.secret"),
		SessionTTL:             ttl,
		AdminEmail:             strings.ToLower(v.GetString("admin.email")),
		AdminFirstName:         v.GetString("admin.first_name"),
		AdminLastName:          v.GetString("admin.last_name"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		VAPIDPublicKey:         v.GetString("vapid.public_key"),
		VAPIDPrivateKey:        v.GetString("vapid.private_key"),
		VAPIDSubject:           v.GetString("vapid.subject"),
		MaxUploadMB:            v.GetInt("max_upload_mb"),
		ChannelBase:            v.GetString("channel_base"),
	}

	if cfg.SessionSecret == "" {
		return Config{}, fmt.Errorf("session secret must be provided")
	}

	if cfg.AdminEmail == "" {
		return Config{}, fmt.Errorf("admin email must be provided")
	}

	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 25
	}

	return cfg, nil
}
