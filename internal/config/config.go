package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/cypherlabdev/arb-scanner-service/internal/models"
	"github.com/cypherlabdev/arb-scanner-service/internal/service"
)

// Config holds all configuration for arb-scanner-service
type Config struct {
	Scanner  ScannerConfig  `mapstructure:"scanner"`
	Dedup    DedupConfig    `mapstructure:"dedup"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	LogFile  LogFileConfig  `mapstructure:"log_file"`
	Server   ServerConfig   `mapstructure:"server"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ScannerConfig holds scan loop and evaluation settings
type ScannerConfig struct {
	Bookmakers         []string          `mapstructure:"bookmakers"`
	PriorityBookmakers []string          `mapstructure:"priority_bookmakers"`
	Sports             []SportEntry      `mapstructure:"sports"` // Scanned in declared order
	MinProfitPercent   float64           `mapstructure:"min_profit_percent"`
	Bankroll           float64           `mapstructure:"bankroll"`
	PollInterval       time.Duration     `mapstructure:"poll_interval"`
	CommandInterval    time.Duration     `mapstructure:"command_interval"`
	ReportInterval     time.Duration     `mapstructure:"report_interval"`
	AlertDelay         time.Duration     `mapstructure:"alert_delay"`
	ErrorBackoff       time.Duration     `mapstructure:"error_backoff"`
	PreMatchOnly       bool              `mapstructure:"pre_match_only"`
	EvaluationMode     string            `mapstructure:"evaluation_mode"` // pool, pairwise
	PaperTrading       bool              `mapstructure:"paper_trading"`
}

// SportEntry is a feed sport key with its display label
type SportEntry struct {
	Key   string `mapstructure:"key"`
	Label string `mapstructure:"label"`
}

// DedupConfig holds alert deduplication settings
type DedupConfig struct {
	Cooldown      time.Duration `mapstructure:"cooldown"` // Falls back to scanner.poll_interval
	IncludeProfit bool          `mapstructure:"include_profit"`
}

// FeedConfig holds odds feed configuration
type FeedConfig struct {
	BaseURL               string        `mapstructure:"base_url"`
	APIKey                string        `mapstructure:"api_key"`
	Regions               string        `mapstructure:"regions"`
	Markets               string        `mapstructure:"markets"`
	Timeout               time.Duration `mapstructure:"timeout"`
	QuotaWarningThreshold int           `mapstructure:"quota_warning_threshold"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	BotToken string        `mapstructure:"bot_token"`
	ChatID   string        `mapstructure:"chat_id"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LogFileConfig holds the opportunity log location
type LogFileConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"` // Topic to publish to (arb_opportunities)
	Source  string   `mapstructure:"source"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	TTL       time.Duration `mapstructure:"ttl"`
	MaxRecent int           `mapstructure:"max_recent"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig loads configuration from file and environment variables.
// A .env file in the working directory, when present, is loaded first.
func LoadConfig(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	v.SetDefault("scanner.bookmakers", []string{
		"betfair_ex_eu", "bet365", "unibet_eu", "william_hill", "bwin", "marathonbet",
	})
	v.SetDefault("scanner.priority_bookmakers", []string{"betfair_ex_eu", "bet365"})
	v.SetDefault("scanner.min_profit_percent", 1.0)
	v.SetDefault("scanner.bankroll", 100.0)
	v.SetDefault("scanner.poll_interval", 10*time.Minute)
	v.SetDefault("scanner.command_interval", 15*time.Second)
	v.SetDefault("scanner.report_interval", time.Hour)
	v.SetDefault("scanner.alert_delay", time.Second)
	v.SetDefault("scanner.error_backoff", 30*time.Second)
	v.SetDefault("scanner.pre_match_only", true)
	v.SetDefault("scanner.evaluation_mode", string(models.EvaluationModePool))
	v.SetDefault("scanner.paper_trading", true)

	v.SetDefault("dedup.cooldown", time.Duration(0))
	v.SetDefault("dedup.include_profit", false)

	v.SetDefault("feed.base_url", "https://api.the-odds-api.com")
	v.SetDefault("feed.api_key", "")
	v.SetDefault("feed.regions", "eu")
	v.SetDefault("feed.markets", "h2h")
	v.SetDefault("feed.timeout", 10*time.Second)
	v.SetDefault("feed.quota_warning_threshold", 500)

	v.SetDefault("telegram.base_url", "https://api.telegram.org")
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.timeout", 5*time.Second)

	v.SetDefault("log_file.path", "arb_opportunities.jsonl")

	v.SetDefault("server.port", 8081)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "arb_opportunities")
	v.SetDefault("kafka.source", "arb-scanner")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)
	v.SetDefault("redis.max_recent", 500)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	v.SetEnvPrefix("ARB_SCANNER")
	v.AutomaticEnv()
	// Replace . with _ for environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal to struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// Validate checks the settings the scanner cannot run without
func (c *Config) Validate() error {
	var errs []error

	if len(distinct(c.Scanner.Bookmakers)) < 2 {
		errs = append(errs, errors.New("scanner.bookmakers needs at least 2 bookmakers"))
	}
	if len(c.Scanner.SportConfigs()) == 0 {
		errs = append(errs, errors.New("scanner.sports is empty"))
	}
	if c.Scanner.Bankroll <= 0 {
		errs = append(errs, errors.New("scanner.bankroll must be positive"))
	}
	if c.Scanner.MinProfitPercent < 0 {
		errs = append(errs, errors.New("scanner.min_profit_percent must not be negative"))
	}
	if c.Scanner.PollInterval <= 0 {
		errs = append(errs, errors.New("scanner.poll_interval must be positive"))
	}
	if _, err := models.ParseEvaluationMode(c.Scanner.EvaluationMode); err != nil {
		errs = append(errs, fmt.Errorf("scanner.evaluation_mode: %w", err))
	}
	if c.Feed.APIKey == "" {
		errs = append(errs, errors.New("feed.api_key is required"))
	}
	if c.Telegram.BotToken == "" || c.Telegram.ChatID == "" {
		errs = append(errs, errors.New("telegram.bot_token and telegram.chat_id are required"))
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		errs = append(errs, errors.New("kafka.brokers and kafka.topic are required when kafka is enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// SportConfigs returns the configured sports in declared order, dropping
// entries without a key and repeats of a key already listed
func (c *ScannerConfig) SportConfigs() []service.SportConfig {
	seen := make(map[string]bool, len(c.Sports))
	sports := make([]service.SportConfig, 0, len(c.Sports))
	for _, entry := range c.Sports {
		key := strings.TrimSpace(entry.Key)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		label := entry.Label
		if label == "" {
			label = key
		}
		sports = append(sports, service.SportConfig{Key: key, Label: label})
	}
	return sports
}

// ToEvaluationParams converts config to evaluation parameters
func (c *ScannerConfig) ToEvaluationParams() (models.EvaluationParams, error) {
	mode, err := models.ParseEvaluationMode(c.EvaluationMode)
	if err != nil {
		return models.EvaluationParams{}, err
	}

	return models.EvaluationParams{
		Bookmakers:         distinct(c.Bookmakers),
		PriorityBookmakers: c.PriorityBookmakers,
		Bankroll:           decimal.NewFromFloat(c.Bankroll),
		MinProfitPercent:   decimal.NewFromFloat(c.MinProfitPercent),
		PreMatchOnly:       c.PreMatchOnly,
		Mode:               mode,
	}, nil
}

// ToScannerConfig converts config to scan loop settings
func (c *Config) ToScannerConfig() service.ScannerConfig {
	return service.ScannerConfig{
		Sports:                     c.Scanner.SportConfigs(),
		PollInterval:               c.Scanner.PollInterval,
		CommandInterval:            c.Scanner.CommandInterval,
		ReportInterval:             c.Scanner.ReportInterval,
		AlertDelay:                 c.Scanner.AlertDelay,
		ErrorBackoff:               c.Scanner.ErrorBackoff,
		QuotaWarningThreshold:      c.Feed.QuotaWarningThreshold,
		IncludeProfitInFingerprint: c.Dedup.IncludeProfit,
	}
}

// DedupCooldown returns the dedup cooldown, defaulting to the poll interval
func (c *Config) DedupCooldown() time.Duration {
	if c.Dedup.Cooldown > 0 {
		return c.Dedup.Cooldown
	}
	return c.Scanner.PollInterval
}

// distinct drops empty and repeated names, keeping first-seen order
func distinct(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
