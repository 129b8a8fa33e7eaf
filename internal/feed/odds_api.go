package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/arb-scanner-service/internal/models"
)

const (
	// DefaultBaseURL is The Odds API endpoint
	DefaultBaseURL = "https://api.the-odds-api.com"

	headerRequestsRemaining = "x-requests-remaining"
	headerRequestsUsed      = "x-requests-used"

	placeholderHome = "Home"
	placeholderAway = "Away"
)

// OddsAPIConfig holds The Odds API client configuration
type OddsAPIConfig struct {
	BaseURL    string        // e.g., "https://api.the-odds-api.com"
	APIKey     string
	Regions    string        // e.g., "eu"
	Markets    string        // e.g., "h2h"
	Bookmakers []string      // Requested bookmaker keys
	Timeout    time.Duration // Per-request timeout
}

// OddsAPIClient fetches quote snapshots from The Odds API v4
type OddsAPIClient struct {
	config     OddsAPIConfig
	httpClient *http.Client
	logger     zerolog.Logger
}

// apiEvent is one event of the /v4/sports/{sport}/odds response
type apiEvent struct {
	ID           string         `json:"id"`
	SportKey     string         `json:"sport_key"`
	CommenceTime string         `json:"commence_time"`
	HomeTeam     string         `json:"home_team"`
	AwayTeam     string         `json:"away_team"`
	Bookmakers   []apiBookmaker `json:"bookmakers"`
}

type apiBookmaker struct {
	Key     string      `json:"key"`
	Title   string      `json:"title"`
	Markets []apiMarket `json:"markets"`
}

type apiMarket struct {
	Key      string       `json:"key"`
	Outcomes []apiOutcome `json:"outcomes"`
}

type apiOutcome struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// NewOddsAPIClient creates a new Odds API client
func NewOddsAPIClient(config OddsAPIConfig, logger zerolog.Logger) *OddsAPIClient {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Regions == "" {
		config.Regions = "eu"
	}
	if config.Markets == "" {
		config.Markets = "h2h"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &OddsAPIClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger.With().Str("component", "odds_api_client").Logger(),
	}
}

// FetchQuotes fetches and normalises the current odds of every event of a sport
func (c *OddsAPIClient) FetchQuotes(ctx context.Context, sport string) (*models.FeedResult, error) {
	endpoint := fmt.Sprintf("%s/v4/sports/%s/odds", strings.TrimRight(c.config.BaseURL, "/"), url.PathEscape(sport))

	params := url.Values{}
	params.Set("apiKey", c.config.APIKey)
	params.Set("regions", c.config.Regions)
	params.Set("markets", c.config.Markets)
	params.Set("oddsFormat", "decimal")
	if len(c.config.Bookmakers) > 0 {
		params.Set("bookmakers", strings.Join(c.config.Bookmakers, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch odds: %w", err)
	}
	defer resp.Body.Close()

	result := &models.FeedResult{
		Sport:             sport,
		RequestsRemaining: parseQuotaHeader(resp.Header.Get(headerRequestsRemaining)),
		RequestsUsed:      parseQuotaHeader(resp.Header.Get(headerRequestsUsed)),
	}

	logEvent := c.logger.Info().Str("sport", sport).Int("status", resp.StatusCode)
	if result.RequestsUsed != nil {
		logEvent = logEvent.Int("requests_used", *result.RequestsUsed)
	}
	if result.RequestsRemaining != nil {
		logEvent = logEvent.Int("requests_remaining", *result.RequestsRemaining)
	}
	logEvent.Msg("odds feed request complete")

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("odds API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode odds response: %w", err)
	}

	result.Events = make([]models.QuoteSet, 0, len(raw))
	for i, data := range raw {
		var event apiEvent
		if err := json.Unmarshal(data, &event); err != nil {
			c.logger.Warn().Err(err).Str("sport", sport).Int("index", i).Msg("skipping malformed event")
			continue
		}

		qs := c.normalize(sport, event)
		if len(qs.Quotes) == 0 {
			continue
		}
		result.Events = append(result.Events, qs)
	}

	return result, nil
}

// normalize converts one feed event into a QuoteSet. Missing team names fall
// back to placeholders; an unparseable start time is kept raw and marked
// unknown.
func (c *OddsAPIClient) normalize(sport string, event apiEvent) models.QuoteSet {
	home := strings.TrimSpace(event.HomeTeam)
	if home == "" {
		home = placeholderHome
	}
	away := strings.TrimSpace(event.AwayTeam)
	if away == "" {
		away = placeholderAway
	}

	qs := models.QuoteSet{
		EventID:      models.EventIDFor(home, away, event.CommenceTime),
		Sport:        sport,
		HomeTeam:     home,
		AwayTeam:     away,
		StartTimeRaw: event.CommenceTime,
		Quotes:       make(map[string]map[string]decimal.Decimal),
	}

	if start, err := time.Parse(time.RFC3339, event.CommenceTime); err == nil {
		qs.StartTime = start.UTC()
		qs.StartTimeKnown = true
	} else {
		c.logger.Debug().
			Str("event", event.ID).
			Str("commence_time", event.CommenceTime).
			Msg("unparseable start time, pre-match filter disabled for event")
	}

	for _, book := range event.Bookmakers {
		if book.Key == "" {
			continue
		}
		for _, market := range book.Markets {
			if market.Key != c.config.Markets {
				continue
			}
			odds := make(map[string]decimal.Decimal, len(market.Outcomes))
			for _, outcome := range market.Outcomes {
				if outcome.Name == "" {
					continue
				}
				odds[outcome.Name] = outcome.Price
			}
			if len(odds) > 0 {
				qs.Quotes[book.Key] = odds
			}
		}
	}

	return qs
}

// parseQuotaHeader returns nil when the header is missing or not a number
func parseQuotaHeader(value string) *int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	// The API reports fractional usage for some plans
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	n := int(f)
	return &n
}
