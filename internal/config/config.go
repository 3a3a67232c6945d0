package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	Affiliate  AffiliateConfig  `mapstructure:"affiliate"`
	Paths      PathsConfig      `mapstructure:"paths"`
	Trends     TrendsConfig     `mapstructure:"trends"`
	Generation GenerationConfig `mapstructure:"generation"`
	Avatar     AvatarConfig     `mapstructure:"avatar"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Tracker    TrackerConfig    `mapstructure:"tracker"`
}

// AnthropicConfig holds Claude API settings
type AnthropicConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// AffiliateConfig holds affiliate program identifiers and link cloaking
type AffiliateConfig struct {
	AmazonTag   string `mapstructure:"amazon_tag"`
	ClickBankID string `mapstructure:"clickbank_id"`
	CloakLinks  bool   `mapstructure:"cloak_links"`
}

// PathsConfig holds the on-disk locations the scripts read and write
type PathsConfig struct {
	ContentDir    string `mapstructure:"content_dir"`
	HistoryFile   string `mapstructure:"history_file"`
	RedirectsFile string `mapstructure:"redirects_file"`
	RulesFile     string `mapstructure:"rules_file"`
}

// TrendsConfig holds trend source settings and the static keyword tables
type TrendsConfig struct {
	Geo             string        `mapstructure:"geo"`
	FeedURL         string        `mapstructure:"feed_url"`
	SuggestURL      string        `mapstructure:"suggest_url"`
	MaxResults      int           `mapstructure:"max_results"`
	RelatedPerSeed  int           `mapstructure:"related_per_seed"`
	HistoryLimit    int           `mapstructure:"history_limit"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	NicheKeywords   []string      `mapstructure:"niche_keywords"`
	RelatedKeywords []string      `mapstructure:"related_keywords"`
	SeedTopics      []string      `mapstructure:"seed_topics"`
	FallbackTopic   string        `mapstructure:"fallback_topic"`
	BatchTopics     []string      `mapstructure:"batch_topics"`
}

// GenerationConfig holds image and 3D provider settings
type GenerationConfig struct {
	HFToken         string        `mapstructure:"hf_token"`
	SpaceHost       string        `mapstructure:"space_host"`
	PollinationsURL string        `mapstructure:"pollinations_url"`
	LocalTripoSRURL string        `mapstructure:"local_triposr_url"`
	ImageWidth      int           `mapstructure:"image_width"`
	ImageHeight     int           `mapstructure:"image_height"`
	MaxImageSide    int           `mapstructure:"max_image_side"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	TransferTimeout time.Duration `mapstructure:"transfer_timeout"`
}

// AvatarConfig holds Ready Player Me and image host settings
type AvatarConfig struct {
	APIURL          string        `mapstructure:"api_url"`
	APIKey          string        `mapstructure:"api_key"`
	ImgBBKey        string        `mapstructure:"imgbb_key"`
	ImgBBURL        string        `mapstructure:"imgbb_url"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	PollTimeout     time.Duration `mapstructure:"poll_timeout"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	BodyLimit      string   `mapstructure:"body_limit"`
}

// DatabaseConfig holds the post ledger connection settings
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// SchedulerConfig holds scheduler settings
type SchedulerConfig struct {
	PostCron   string `mapstructure:"post_cron"`
	HealthPort string `mapstructure:"health_port"`
}

// RateLimitConfig holds per-minute budgets for each upstream
type RateLimitConfig struct {
	AnthropicRequestsPerMinute   int `mapstructure:"anthropic_requests_per_minute"`
	TrendsRequestsPerMinute      int `mapstructure:"trends_requests_per_minute"`
	HuggingFaceRequestsPerMinute int `mapstructure:"huggingface_requests_per_minute"`
	ImageRequestsPerMinute       int `mapstructure:"image_requests_per_minute"`
	AvatarRequestsPerMinute      int `mapstructure:"avatar_requests_per_minute"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout, stderr or file path
}

// TrackerConfig holds Google Sheets tracker settings
type TrackerConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	SpreadsheetID      string `mapstructure:"spreadsheet_id"`
	SheetName          string `mapstructure:"sheet_name"`
	CredentialsFile    string `mapstructure:"credentials_file"`
	ServiceAccountJSON string `mapstructure:"service_account_json"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	// Load .env file if present (ignore errors if not found)
	_ = godotenv.Load()
	_ = godotenv.Load(".env.local")

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".trendfarm"))
		}
	}

	v.SetEnvPrefix("TRENDFARM")
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// bindEnv binds nested keys to both the prefixed names and the plain names
// used by the deployment environment
func bindEnv(v *viper.Viper) {
	v.BindEnv("anthropic.api_key", "TRENDFARM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	v.BindEnv("anthropic.base_url", "TRENDFARM_ANTHROPIC_BASE_URL", "ANTHROPIC_BASE_URL")
	v.BindEnv("anthropic.model", "TRENDFARM_ANTHROPIC_MODEL")
	v.BindEnv("affiliate.amazon_tag", "TRENDFARM_AFFILIATE_AMAZON_TAG", "AMAZON_AFFILIATE_TAG")
	v.BindEnv("affiliate.clickbank_id", "TRENDFARM_AFFILIATE_CLICKBANK_ID", "CLICKBANK_ID")
	v.BindEnv("affiliate.cloak_links", "TRENDFARM_AFFILIATE_CLOAK_LINKS", "CLOAK_LINKS")
	v.BindEnv("paths.content_dir", "TRENDFARM_PATHS_CONTENT_DIR")
	v.BindEnv("paths.history_file", "TRENDFARM_PATHS_HISTORY_FILE")
	v.BindEnv("paths.redirects_file", "TRENDFARM_PATHS_REDIRECTS_FILE")
	v.BindEnv("paths.rules_file", "TRENDFARM_PATHS_RULES_FILE")
	v.BindEnv("trends.geo", "TRENDFARM_TRENDS_GEO")
	v.BindEnv("generation.hf_token", "TRENDFARM_GENERATION_HF_TOKEN", "HF_TOKEN")
	v.BindEnv("generation.local_triposr_url", "TRENDFARM_GENERATION_LOCAL_TRIPOSR_URL", "LOCAL_TRIPOSR_URL")
	v.BindEnv("avatar.api_url", "TRENDFARM_AVATAR_API_URL", "READY_PLAYER_ME_API_URL")
	v.BindEnv("avatar.api_key", "TRENDFARM_AVATAR_API_KEY", "READY_PLAYER_ME_API_KEY")
	v.BindEnv("avatar.imgbb_key", "TRENDFARM_AVATAR_IMGBB_KEY", "IMGBB_API_KEY")
	v.BindEnv("server.port", "TRENDFARM_SERVER_PORT", "PORT")
	v.BindEnv("database.dsn", "TRENDFARM_DATABASE_DSN")
	v.BindEnv("scheduler.post_cron", "TRENDFARM_SCHEDULER_POST_CRON")
	v.BindEnv("tracker.enabled", "TRENDFARM_TRACKER_ENABLED")
	v.BindEnv("tracker.spreadsheet_id", "TRENDFARM_TRACKER_SPREADSHEET_ID")
	v.BindEnv("tracker.credentials_file", "TRENDFARM_TRACKER_CREDENTIALS_FILE")
	v.BindEnv("tracker.service_account_json", "TRENDFARM_TRACKER_SERVICE_ACCOUNT_JSON")
	v.BindEnv("logging.level", "TRENDFARM_LOGGING_LEVEL")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Anthropic defaults
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")
	v.SetDefault("anthropic.max_tokens", 3000)
	v.SetDefault("anthropic.temperature", 0.7)

	// Affiliate defaults
	v.SetDefault("affiliate.amazon_tag", "youraffiliate-20")
	v.SetDefault("affiliate.clickbank_id", "yourclickbank")
	v.SetDefault("affiliate.cloak_links", true)

	// Path defaults
	v.SetDefault("paths.content_dir", "src/content/posts")
	v.SetDefault("paths.history_file", "data/topic_history.json")
	v.SetDefault("paths.redirects_file", "data/redirects.json")
	v.SetDefault("paths.rules_file", "public/_redirects")

	// Trend defaults
	v.SetDefault("trends.geo", "US")
	v.SetDefault("trends.feed_url", "https://trends.google.com/trending/rss")
	v.SetDefault("trends.suggest_url", "https://suggestqueries.google.com/complete/search")
	v.SetDefault("trends.max_results", 10)
	v.SetDefault("trends.related_per_seed", 3)
	v.SetDefault("trends.history_limit", 100)
	v.SetDefault("trends.cache_ttl", 15*time.Minute)
	v.SetDefault("trends.niche_keywords", DefaultNicheKeywords)
	v.SetDefault("trends.related_keywords", DefaultRelatedKeywords)
	v.SetDefault("trends.seed_topics", DefaultSeedTopics)
	v.SetDefault("trends.fallback_topic", "Best Tech Gadgets 2025")
	v.SetDefault("trends.batch_topics", DefaultBatchTopics)

	// Generation defaults
	v.SetDefault("generation.space_host", "hf.space")
	v.SetDefault("generation.pollinations_url", "https://image.pollinations.ai")
	v.SetDefault("generation.image_width", 512)
	v.SetDefault("generation.image_height", 512)
	v.SetDefault("generation.max_image_side", 1024)
	v.SetDefault("generation.request_timeout", 30*time.Second)
	v.SetDefault("generation.transfer_timeout", 120*time.Second)

	// Avatar defaults
	v.SetDefault("avatar.imgbb_url", "https://api.imgbb.com/1/upload")
	v.SetDefault("avatar.poll_interval", 1500*time.Millisecond)
	v.SetDefault("avatar.poll_timeout", 120*time.Second)
	v.SetDefault("avatar.download_timeout", 120*time.Second)

	// Server defaults
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.body_limit", "20M")

	// Database defaults
	v.SetDefault("database.dsn", "./data/trendfarm.db")

	// Scheduler defaults
	v.SetDefault("scheduler.post_cron", "0 6 * * *") // 6am daily
	v.SetDefault("scheduler.health_port", "10000")

	// Rate limit defaults
	v.SetDefault("rate_limit.anthropic_requests_per_minute", 10)
	v.SetDefault("rate_limit.trends_requests_per_minute", 30)
	v.SetDefault("rate_limit.huggingface_requests_per_minute", 20)
	v.SetDefault("rate_limit.image_requests_per_minute", 20)
	v.SetDefault("rate_limit.avatar_requests_per_minute", 120)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	// Tracker defaults
	v.SetDefault("tracker.enabled", false)
	v.SetDefault("tracker.sheet_name", "Posts")
}

// Validate checks structural settings. Credentials are checked by the
// components that need them, at request time.
func (c *Config) Validate() error {
	if c.Trends.MaxResults <= 0 {
		return fmt.Errorf("trends.max_results must be positive")
	}
	if c.Trends.HistoryLimit <= 0 {
		return fmt.Errorf("trends.history_limit must be positive")
	}
	if c.Avatar.PollInterval <= 0 {
		return fmt.Errorf("avatar.poll_interval must be positive")
	}
	if c.Avatar.PollTimeout < c.Avatar.PollInterval {
		return fmt.Errorf("avatar.poll_timeout must not be shorter than avatar.poll_interval")
	}
	if c.Paths.ContentDir == "" {
		return fmt.Errorf("paths.content_dir is required")
	}
	if c.Tracker.Enabled && c.Tracker.SpreadsheetID == "" {
		return fmt.Errorf("tracker.spreadsheet_id is required when tracker is enabled")
	}
	return nil
}

// MissingError reports a credential or URL that a request needs but the
// environment does not provide
type MissingError struct {
	Key string
	Env string
}

func (e *MissingError) Error() string {
	if e.Env != "" {
		return fmt.Sprintf("%s is not configured (set %s)", e.Key, e.Env)
	}
	return fmt.Sprintf("%s is not configured", e.Key)
}

// Require returns a MissingError when value is empty
func Require(value, key, env string) error {
	if value == "" {
		return &MissingError{Key: key, Env: env}
	}
	return nil
}
