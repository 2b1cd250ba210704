package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/mailcast/")
	v.AddConfigPath("$HOME/.mailcast")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("MAILCAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Storage defaults
	v.SetDefault("storage.provider", "r2")
	v.SetDefault("storage.bucket", "my-podcasts")

	// R2 defaults
	v.SetDefault("r2.account_id", "")
	v.SetDefault("r2.access_key_id", "")
	v.SetDefault("r2.secret_access_key", "")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")

	// Cloudflare queue defaults
	v.SetDefault("cloudflare.account_id", "")
	v.SetDefault("cloudflare.queue_id", "")
	v.SetDefault("cloudflare.api_token", "")
	v.SetDefault("cloudflare.api_base", "")

	// Consumer defaults
	v.SetDefault("consumer.batch_size", 5)
	v.SetDefault("consumer.visibility_timeout", 120)
	v.SetDefault("consumer.poll_interval", "10s")

	// State store defaults
	v.SetDefault("store.type", "sqlite")
	v.SetDefault("store.sqlite_path", "/data/mailcast.db")
	v.SetDefault("store.mysql_dsn", "user:password@tcp(localhost:3306)/mailcast")

	// TTS defaults
	v.SetDefault("tts.provider", "openai")
	v.SetDefault("tts.api_key", "")
	v.SetDefault("tts.model", "")
	v.SetDefault("tts.voice", "")
	v.SetDefault("tts.max_chunk_chars", 4096)

	// Feed defaults
	v.SetDefault("feed.base_url", "https://podcast.example.com")
	v.SetDefault("feed.title", "My Podcasts")
	v.SetDefault("feed.description", "Automated audio versions of selected email newsletters.")
	v.SetDefault("feed.language", "en-us")
	v.SetDefault("feed.author", "")
	v.SetDefault("feed.image_url", "")
	v.SetDefault("feed.default_category", "News")
	v.SetDefault("feed.images", map[string]string{})

	// SMTP ingest defaults
	v.SetDefault("ingest.enabled", false)
	v.SetDefault("ingest.listen_address", "0.0.0.0:2525")
	v.SetDefault("ingest.domain", "localhost")
	v.SetDefault("ingest.max_message_bytes", 30*1024*1024)
	v.SetDefault("ingest.allowed_senders", []string{})

	// Routing defaults
	v.SetDefault("routing.sender_tags", map[string]string{})
	v.SetDefault("routing.list_patterns", []string{})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetInt64 gets an int64 value from the configuration
func (c *Config) GetInt64(key string) int64 {
	return c.v.GetInt64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetStringMapString gets a string map value from the configuration
func (c *Config) GetStringMapString(key string) map[string]string {
	return c.v.GetStringMapString(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
