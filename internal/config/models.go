package config

// StorageConfig selects the object storage provider
type StorageConfig struct {
	Provider string
	Bucket   string
}

// R2Config represents the configuration for Cloudflare R2
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Config represents the configuration for Amazon S3
type S3Config struct {
	Region string
}

// CloudflareConfig represents the Cloudflare queue API configuration
type CloudflareConfig struct {
	AccountID string
	QueueID   string
	APIToken  string
	APIBase   string
}

// ConsumerConfig tunes the queue consumer loop
type ConsumerConfig struct {
	BatchSize         int
	VisibilityTimeout int
}

// StoreConfig represents the configuration for the episode state store
type StoreConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// TTSConfig represents the configuration for speech synthesis. Model and
// Voice override the per-newsletter presets when set.
type TTSConfig struct {
	Provider      string
	APIKey        string
	Model         string
	Voice         string
	MaxChunkChars int
}

// FeedConfig represents the podcast feed metadata
type FeedConfig struct {
	BaseURL         string
	Title           string
	Description     string
	Language        string
	Author          string
	ImageURL        string
	Images          map[string]string
	DefaultCategory string
}

// IngestConfig represents the configuration for direct SMTP ingest
type IngestConfig struct {
	Enabled         bool
	ListenAddress   string
	Domain          string
	MaxMessageBytes int64
	AllowedSenders  []string
}

// RoutingConfig represents the routing rules. ListPatterns entries have the
// form "substring=tag" and are tried in order.
type RoutingConfig struct {
	SenderTags   map[string]string
	ListPatterns []string
}

// GetStorage returns the storage configuration
func (c *Config) GetStorage() StorageConfig {
	return StorageConfig{
		Provider: c.GetString("storage.provider"),
		Bucket:   c.GetString("storage.bucket"),
	}
}

// GetR2 returns the R2 configuration
func (c *Config) GetR2() R2Config {
	return R2Config{
		AccountID:       c.GetString("r2.account_id"),
		AccessKeyID:     c.GetString("r2.access_key_id"),
		SecretAccessKey: c.GetString("r2.secret_access_key"),
	}
}

// GetS3 returns the S3 configuration
func (c *Config) GetS3() S3Config {
	return S3Config{
		Region: c.GetString("s3.region"),
	}
}

// GetCloudflare returns the Cloudflare queue configuration
func (c *Config) GetCloudflare() CloudflareConfig {
	return CloudflareConfig{
		AccountID: c.GetString("cloudflare.account_id"),
		QueueID:   c.GetString("cloudflare.queue_id"),
		APIToken:  c.GetString("cloudflare.api_token"),
		APIBase:   c.GetString("cloudflare.api_base"),
	}
}

// GetConsumer returns the consumer loop configuration
func (c *Config) GetConsumer() ConsumerConfig {
	return ConsumerConfig{
		BatchSize:         c.GetInt("consumer.batch_size"),
		VisibilityTimeout: c.GetInt("consumer.visibility_timeout"),
	}
}

// GetStore returns the state store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:       c.GetString("store.type"),
		SQLitePath: c.GetString("store.sqlite_path"),
		MySQLDSN:   c.GetString("store.mysql_dsn"),
	}
}

// GetTTS returns the TTS configuration
func (c *Config) GetTTS() TTSConfig {
	return TTSConfig{
		Provider:      c.GetString("tts.provider"),
		APIKey:        c.GetString("tts.api_key"),
		Model:         c.GetString("tts.model"),
		Voice:         c.GetString("tts.voice"),
		MaxChunkChars: c.GetInt("tts.max_chunk_chars"),
	}
}

// GetFeed returns the feed configuration
func (c *Config) GetFeed() FeedConfig {
	return FeedConfig{
		BaseURL:         c.GetString("feed.base_url"),
		Title:           c.GetString("feed.title"),
		Description:     c.GetString("feed.description"),
		Language:        c.GetString("feed.language"),
		Author:          c.GetString("feed.author"),
		ImageURL:        c.GetString("feed.image_url"),
		Images:          c.GetStringMapString("feed.images"),
		DefaultCategory: c.GetString("feed.default_category"),
	}
}

// GetIngest returns the SMTP ingest configuration
func (c *Config) GetIngest() IngestConfig {
	return IngestConfig{
		Enabled:         c.GetBool("ingest.enabled"),
		ListenAddress:   c.GetString("ingest.listen_address"),
		Domain:          c.GetString("ingest.domain"),
		MaxMessageBytes: c.GetInt64("ingest.max_message_bytes"),
		AllowedSenders:  c.GetStringSlice("ingest.allowed_senders"),
	}
}

// GetRouting returns the routing configuration
func (c *Config) GetRouting() RoutingConfig {
	return RoutingConfig{
		SenderTags:   c.GetStringMapString("routing.sender_tags"),
		ListPatterns: c.GetStringSlice("routing.list_patterns"),
	}
}
