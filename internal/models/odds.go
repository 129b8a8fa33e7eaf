package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteSet represents one poll's view of bookmaker prices for a single event
type QuoteSet struct {
	EventID        string                                `json:"event_id"`
	Sport          string                                `json:"sport"`
	HomeTeam       string                                `json:"home_team"`
	AwayTeam       string                                `json:"away_team"`
	StartTime      time.Time                             `json:"start_time"`
	StartTimeRaw   string                                `json:"start_time_raw"`
	StartTimeKnown bool                                  `json:"start_time_known"` // false disables the pre-match filter
	Quotes         map[string]map[string]decimal.Decimal `json:"quotes"`           // bookmaker -> outcome -> decimal odd
}

// EventIDFor derives a stable event identifier from the teams and start time
func EventIDFor(home, away, start string) string {
	return fmt.Sprintf("%s|%s|%s", home, away, start)
}

// Bookmakers returns the bookmakers with at least one quote, sorted by key
func (q *QuoteSet) Bookmakers() []string {
	books := make([]string, 0, len(q.Quotes))
	for book, outcomes := range q.Quotes {
		if len(outcomes) > 0 {
			books = append(books, book)
		}
	}
	sort.Strings(books)
	return books
}

// EventName returns the "away @ home" display name
func (q *QuoteSet) EventName() string {
	return q.AwayTeam + " @ " + q.HomeTeam
}

// BestPrice holds the highest odd for an outcome across the queried bookmakers
type BestPrice struct {
	Outcome   string                     `json:"outcome"`
	Odd       decimal.Decimal            `json:"odd"`
	Bookmaker string                     `json:"bookmaker"`
	AllOdds   map[string]decimal.Decimal `json:"all_odds"` // bookmaker -> odd, kept for display
}

// EvaluationMode selects how bookmaker prices are combined
type EvaluationMode string

const (
	// EvaluationModePool takes the best price per outcome across the whole bookmaker pool
	EvaluationModePool EvaluationMode = "pool"
	// EvaluationModePairwise tests every unordered bookmaker pair on two-outcome markets
	EvaluationModePairwise EvaluationMode = "pairwise"
)

// ParseEvaluationMode validates a configured mode string
func ParseEvaluationMode(s string) (EvaluationMode, error) {
	switch EvaluationMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", EvaluationModePool:
		return EvaluationModePool, nil
	case EvaluationModePairwise:
		return EvaluationModePairwise, nil
	default:
		return "", fmt.Errorf("unknown evaluation mode %q", s)
	}
}

// EvaluationParams holds parameters for arbitrage evaluation
type EvaluationParams struct {
	Bookmakers         []string        // Active bookmaker set, in iteration order
	PriorityBookmakers []string        // Bookmakers flagged for preferential ranking
	Bankroll           decimal.Decimal // Notional bankroll used for stake sizing
	MinProfitPercent   decimal.Decimal // Minimum profit (1.0 = 1%)
	PreMatchOnly       bool            // Skip events that already started
	Mode               EvaluationMode
}

// FeedResult is one sport's response from the odds feed
type FeedResult struct {
	Sport             string     `json:"sport"`
	Events            []QuoteSet `json:"events"`
	RequestsRemaining *int       `json:"requests_remaining,omitempty"`
	RequestsUsed      *int       `json:"requests_used,omitempty"`
}
