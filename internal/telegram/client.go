package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the Telegram Bot API endpoint
const DefaultBaseURL = "https://api.telegram.org"

// ClientConfig holds Telegram bot configuration
type ClientConfig struct {
	BaseURL  string // e.g., "https://api.telegram.org"
	BotToken string
	ChatID   string        // The only chat alerts go to and commands are accepted from
	Timeout  time.Duration // Per-request timeout
}

// Client sends operator messages and polls operator commands over the
// Telegram Bot API
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     zerolog.Logger

	mu           sync.Mutex
	lastUpdateID int64
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableNotification   bool   `json:"disable_notification"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

type update struct {
	UpdateID int64    `json:"update_id"`
	Message  *message `json:"message"`
}

type message struct {
	Text string `json:"text"`
	Chat struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

// NewClient creates a new Telegram client
func NewClient(config ClientConfig, logger zerolog.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger.With().Str("component", "telegram_client").Logger(),
	}
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", strings.TrimRight(c.config.BaseURL, "/"), c.config.BotToken, method)
}

// Send posts an HTML message to the configured chat. A silent message is
// delivered without a notification sound.
func (c *Client) Send(ctx context.Context, text string, silent bool) error {
	payload := sendMessageRequest{
		ChatID:                c.config.ChatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableNotification:   silent,
		DisableWebPagePreview: true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendMessage"), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := c.do(req); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	c.logger.Debug().Bool("silent", silent).Int("length", len(text)).Msg("message sent")
	return nil
}

// PollCommands fetches the updates received since the last poll and returns
// the message texts of the configured chat. Updates from any other chat are
// acknowledged and dropped.
func (c *Client) PollCommands(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	offset := c.lastUpdateID + 1
	c.mu.Unlock()

	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", "1")
	params.Set("allowed_updates", `["message"]`)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.methodURL("getUpdates")+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	result, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get updates: %w", err)
	}

	var updates []update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("failed to decode updates: %w", err)
	}

	var commands []string
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, u := range updates {
		if u.UpdateID > c.lastUpdateID {
			c.lastUpdateID = u.UpdateID
		}
		if u.Message == nil {
			continue
		}
		if strconv.FormatInt(u.Message.Chat.ID, 10) != c.config.ChatID {
			c.logger.Warn().
				Int64("chat_id", u.Message.Chat.ID).
				Msg("ignoring message from unauthorised chat")
			continue
		}
		if text := strings.TrimSpace(u.Message.Text); text != "" {
			commands = append(commands, text)
		}
	}

	return commands, nil
}

// do executes a Bot API request and returns the result payload
func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unexpected response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !parsed.OK {
		return nil, fmt.Errorf("telegram returned %d: %s", resp.StatusCode, parsed.Description)
	}

	return parsed.Result, nil
}
