package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/arb-scanner-service/internal/models"
	"github.com/cypherlabdev/arb-scanner-service/internal/service"
)

func writeConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// validConfig returns a config that passes validation
func validConfig() *Config {
	return &Config{
		Scanner: ScannerConfig{
			Bookmakers:       []string{"bet365", "unibet_eu"},
			Sports:           []SportEntry{{Key: "basketball_nba", Label: "NBA"}},
			MinProfitPercent: 1,
			Bankroll:         100,
			PollInterval:     10 * time.Minute,
			EvaluationMode:   "pool",
		},
		Feed:     FeedConfig{APIKey: "key"},
		Telegram: TelegramConfig{BotToken: "123:ABC", ChatID: "4242"},
	}
}

// TestLoadConfig_Defaults tests loading configuration with default values
func TestLoadConfig_Defaults(t *testing.T) {
	// Load config without a file (should use defaults)
	config, err := LoadConfig("")

	require.NoError(t, err)
	require.NotNil(t, config)

	// Verify scanner defaults
	assert.Equal(t, []string{"betfair_ex_eu", "bet365", "unibet_eu", "william_hill", "bwin", "marathonbet"}, config.Scanner.Bookmakers)
	assert.Equal(t, []string{"betfair_ex_eu", "bet365"}, config.Scanner.PriorityBookmakers)
	assert.Equal(t, 1.0, config.Scanner.MinProfitPercent)
	assert.Equal(t, 100.0, config.Scanner.Bankroll)
	assert.Equal(t, 10*time.Minute, config.Scanner.PollInterval)
	assert.Equal(t, 15*time.Second, config.Scanner.CommandInterval)
	assert.Equal(t, time.Hour, config.Scanner.ReportInterval)
	assert.Equal(t, time.Second, config.Scanner.AlertDelay)
	assert.Equal(t, 30*time.Second, config.Scanner.ErrorBackoff)
	assert.True(t, config.Scanner.PreMatchOnly)
	assert.Equal(t, "pool", config.Scanner.EvaluationMode)
	assert.True(t, config.Scanner.PaperTrading)

	// Verify dedup defaults
	assert.Equal(t, time.Duration(0), config.Dedup.Cooldown)
	assert.False(t, config.Dedup.IncludeProfit)
	assert.Equal(t, 10*time.Minute, config.DedupCooldown())

	// Verify feed defaults
	assert.Equal(t, "https://api.the-odds-api.com", config.Feed.BaseURL)
	assert.Equal(t, "eu", config.Feed.Regions)
	assert.Equal(t, "h2h", config.Feed.Markets)
	assert.Equal(t, 10*time.Second, config.Feed.Timeout)
	assert.Equal(t, 500, config.Feed.QuotaWarningThreshold)

	// Verify telegram defaults
	assert.Equal(t, "https://api.telegram.org", config.Telegram.BaseURL)
	assert.Equal(t, 5*time.Second, config.Telegram.Timeout)

	assert.Equal(t, "arb_opportunities.jsonl", config.LogFile.Path)

	// Verify server defaults
	assert.Equal(t, 8081, config.Server.Port)
	assert.Equal(t, 30*time.Second, config.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, config.Server.WriteTimeout)

	// Verify Kafka defaults
	assert.False(t, config.Kafka.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, config.Kafka.Brokers)
	assert.Equal(t, "arb_opportunities", config.Kafka.Topic)

	// Verify Redis defaults
	assert.False(t, config.Redis.Enabled)
	assert.Equal(t, "localhost:6379", config.Redis.Addr)
	assert.Equal(t, 24*time.Hour, config.Redis.TTL)
	assert.Equal(t, 500, config.Redis.MaxRecent)

	// Verify logging defaults
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
}

// TestLoadConfig_WithFile tests loading configuration from file
func TestLoadConfig_WithFile(t *testing.T) {
	path := writeConfigFile(t, `
scanner:
  bookmakers:
    - pinnacle
    - bet365
  priority_bookmakers:
    - pinnacle
  sports:
    - key: soccer_spain_la_liga
      label: "⚽ La Liga"
    - key: basketball_nba
      label: "🏀 NBA"
  min_profit_percent: 0.5
  bankroll: 250
  poll_interval: 5m
  evaluation_mode: pairwise
  paper_trading: false

dedup:
  cooldown: 20m
  include_profit: true

feed:
  api_key: file-key
  regions: uk,eu

telegram:
  bot_token: "123:ABC"
  chat_id: "4242"

kafka:
  enabled: true
  brokers:
    - broker1:9092
    - broker2:9092
  topic: test_topic

redis:
  enabled: true
  addr: redis:6379
  ttl: 30m

logging:
  level: debug
  format: console
`)

	config, err := LoadConfig(path)

	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, []string{"pinnacle", "bet365"}, config.Scanner.Bookmakers)
	assert.Equal(t, []string{"pinnacle"}, config.Scanner.PriorityBookmakers)
	assert.Equal(t, []service.SportConfig{
		{Key: "soccer_spain_la_liga", Label: "⚽ La Liga"},
		{Key: "basketball_nba", Label: "🏀 NBA"},
	}, config.Scanner.SportConfigs())
	assert.Equal(t, 0.5, config.Scanner.MinProfitPercent)
	assert.Equal(t, 250.0, config.Scanner.Bankroll)
	assert.Equal(t, 5*time.Minute, config.Scanner.PollInterval)
	assert.Equal(t, "pairwise", config.Scanner.EvaluationMode)
	assert.False(t, config.Scanner.PaperTrading)
	assert.Equal(t, 20*time.Minute, config.DedupCooldown())
	assert.True(t, config.Dedup.IncludeProfit)
	assert.Equal(t, "file-key", config.Feed.APIKey)
	assert.Equal(t, "uk,eu", config.Feed.Regions)
	assert.Equal(t, "4242", config.Telegram.ChatID)
	assert.True(t, config.Kafka.Enabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, config.Kafka.Brokers)
	assert.Equal(t, "test_topic", config.Kafka.Topic)
	assert.True(t, config.Redis.Enabled)
	assert.Equal(t, "redis:6379", config.Redis.Addr)
	assert.Equal(t, 30*time.Minute, config.Redis.TTL)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "console", config.Logging.Format)

	// Unspecified values keep their defaults
	assert.Equal(t, 15*time.Second, config.Scanner.CommandInterval)
	assert.Equal(t, "h2h", config.Feed.Markets)
	assert.Equal(t, 8081, config.Server.Port)
}

// TestLoadConfig_InvalidFile tests loading with non-existent file
func TestLoadConfig_InvalidFile(t *testing.T) {
	config, err := LoadConfig("/nonexistent/config.yaml")

	assert.Error(t, err)
	assert.Nil(t, config)
}

// TestLoadConfig_MalformedFile tests loading with malformed YAML
func TestLoadConfig_MalformedFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: invalid_port
  read_timeout: not_a_duration
`)

	config, err := LoadConfig(path)

	// Should error on unmarshal
	assert.Error(t, err)
	assert.Nil(t, config)
}

// TestLoadConfig_EnvironmentVariables tests environment variable overrides
func TestLoadConfig_EnvironmentVariables(t *testing.T) {
	t.Setenv("ARB_SCANNER_FEED_API_KEY", "env-key")
	t.Setenv("ARB_SCANNER_TELEGRAM_BOT_TOKEN", "999:XYZ")
	t.Setenv("ARB_SCANNER_SERVER_PORT", "7777")
	t.Setenv("ARB_SCANNER_SCANNER_POLL_INTERVAL", "2m")
	t.Setenv("ARB_SCANNER_REDIS_ADDR", "env-redis:6379")

	config, err := LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, "env-key", config.Feed.APIKey)
	assert.Equal(t, "999:XYZ", config.Telegram.BotToken)
	assert.Equal(t, 7777, config.Server.Port)
	assert.Equal(t, 2*time.Minute, config.Scanner.PollInterval)
	assert.Equal(t, "env-redis:6379", config.Redis.Addr)
}

// TestValidate tests configuration validation
func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		expectErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:      "single bookmaker",
			mutate:    func(c *Config) { c.Scanner.Bookmakers = []string{"bet365"} },
			expectErr: "at least 2 bookmakers",
		},
		{
			name:      "duplicate bookmakers",
			mutate:    func(c *Config) { c.Scanner.Bookmakers = []string{"bet365", "bet365", ""} },
			expectErr: "at least 2 bookmakers",
		},
		{
			name:      "no sports",
			mutate:    func(c *Config) { c.Scanner.Sports = nil },
			expectErr: "scanner.sports",
		},
		{
			name:      "sports without keys",
			mutate:    func(c *Config) { c.Scanner.Sports = []SportEntry{{Label: "NBA"}, {Key: "  "}} },
			expectErr: "scanner.sports",
		},
		{
			name:      "zero bankroll",
			mutate:    func(c *Config) { c.Scanner.Bankroll = 0 },
			expectErr: "bankroll",
		},
		{
			name:      "negative min profit",
			mutate:    func(c *Config) { c.Scanner.MinProfitPercent = -1 },
			expectErr: "min_profit_percent",
		},
		{
			name:      "zero poll interval",
			mutate:    func(c *Config) { c.Scanner.PollInterval = 0 },
			expectErr: "poll_interval",
		},
		{
			name:      "unknown mode",
			mutate:    func(c *Config) { c.Scanner.EvaluationMode = "greedy" },
			expectErr: "evaluation_mode",
		},
		{
			name:      "missing api key",
			mutate:    func(c *Config) { c.Feed.APIKey = "" },
			expectErr: "feed.api_key",
		},
		{
			name:      "missing chat id",
			mutate:    func(c *Config) { c.Telegram.ChatID = "" },
			expectErr: "telegram.bot_token",
		},
		{
			name: "kafka enabled without topic",
			mutate: func(c *Config) {
				c.Kafka.Enabled = true
				c.Kafka.Brokers = []string{"localhost:9092"}
			},
			expectErr: "kafka",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(config)

			err := config.Validate()

			if tt.expectErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectErr)
			}
		})
	}
}

// TestToEvaluationParams tests conversion to evaluation parameters
func TestToEvaluationParams(t *testing.T) {
	scannerConfig := ScannerConfig{
		Bookmakers:         []string{"bet365", " unibet_eu ", "bet365"},
		PriorityBookmakers: []string{"bet365"},
		MinProfitPercent:   1.5,
		Bankroll:           250,
		PreMatchOnly:       true,
		EvaluationMode:     "Pairwise",
	}

	params, err := scannerConfig.ToEvaluationParams()

	require.NoError(t, err)
	assert.Equal(t, []string{"bet365", "unibet_eu"}, params.Bookmakers)
	assert.Equal(t, []string{"bet365"}, params.PriorityBookmakers)
	assert.True(t, decimal.NewFromFloat(1.5).Equal(params.MinProfitPercent))
	assert.True(t, decimal.NewFromInt(250).Equal(params.Bankroll))
	assert.True(t, params.PreMatchOnly)
	assert.Equal(t, models.EvaluationModePairwise, params.Mode)
}

// TestToEvaluationParams_InvalidMode tests rejection of unknown modes
func TestToEvaluationParams_InvalidMode(t *testing.T) {
	scannerConfig := ScannerConfig{EvaluationMode: "greedy"}

	_, err := scannerConfig.ToEvaluationParams()

	assert.Error(t, err)
}

// TestSportConfigs tests that sports keep their declared order
func TestSportConfigs(t *testing.T) {
	scanner := ScannerConfig{
		Sports: []SportEntry{
			{Key: "tennis_atp", Label: "ATP"},
			{Key: "basketball_nba", Label: "NBA"},
			{Key: "", Label: "orphan"},
			{Key: "tennis_atp", Label: "ATP again"},
			{Key: "icehockey_nhl"},
		},
	}

	assert.Equal(t, []service.SportConfig{
		{Key: "tennis_atp", Label: "ATP"},
		{Key: "basketball_nba", Label: "NBA"},
		{Key: "icehockey_nhl", Label: "icehockey_nhl"},
	}, scanner.SportConfigs())
}

// TestToScannerConfig tests conversion to scan loop settings
func TestToScannerConfig(t *testing.T) {
	config := validConfig()
	config.Scanner.Sports = []SportEntry{
		{Key: "soccer_spain_la_liga", Label: "La Liga"},
		{Key: "basketball_nba", Label: "NBA"},
	}
	config.Scanner.CommandInterval = 15 * time.Second
	config.Scanner.ReportInterval = time.Hour
	config.Scanner.AlertDelay = time.Second
	config.Scanner.ErrorBackoff = 30 * time.Second
	config.Feed.QuotaWarningThreshold = 500
	config.Dedup.IncludeProfit = true

	scannerConfig := config.ToScannerConfig()

	assert.Equal(t, []service.SportConfig{
		{Key: "soccer_spain_la_liga", Label: "La Liga"},
		{Key: "basketball_nba", Label: "NBA"},
	}, scannerConfig.Sports)
	assert.Equal(t, 10*time.Minute, scannerConfig.PollInterval)
	assert.Equal(t, 15*time.Second, scannerConfig.CommandInterval)
	assert.Equal(t, time.Hour, scannerConfig.ReportInterval)
	assert.Equal(t, time.Second, scannerConfig.AlertDelay)
	assert.Equal(t, 30*time.Second, scannerConfig.ErrorBackoff)
	assert.Equal(t, 500, scannerConfig.QuotaWarningThreshold)
	assert.True(t, scannerConfig.IncludeProfitInFingerprint)
}
