package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Side is one leg of an arbitrage: the stake placed on an outcome at a bookmaker
type Side struct {
	Outcome   string          `json:"outcome"`
	Odd       decimal.Decimal `json:"odd"`
	Bookmaker string          `json:"bookmaker"`
	Stake     decimal.Decimal `json:"stake"`
}

// Payout returns the amount returned by this side if its outcome occurs
func (s Side) Payout() decimal.Decimal {
	return s.Stake.Mul(s.Odd)
}

// Opportunity represents a detected risk-free arbitrage for one event
type Opportunity struct {
	ID                    uuid.UUID       `json:"id"`
	EventID               string          `json:"event_id"`
	Sport                 string          `json:"sport"`
	SportLabel            string          `json:"sport_label"`
	HomeTeam              string          `json:"home_team"`
	AwayTeam              string          `json:"away_team"`
	StartTime             time.Time       `json:"start_time"`
	StartTimeRaw          string          `json:"start_time_raw,omitempty"`
	Sides                 []Side          `json:"sides"`
	ImpliedProbabilitySum decimal.Decimal `json:"implied_probability_sum"`
	ProfitPercent         decimal.Decimal `json:"profit_percent"` // Rounded to 2 places
	ProfitAmount          decimal.Decimal `json:"profit_amount"`  // Absolute profit on Bankroll
	Bankroll              decimal.Decimal `json:"bankroll"`
	HasPriorityBookmaker  bool            `json:"has_priority_bookmaker"`
	Mode                  EvaluationMode  `json:"mode"`
	DetectedAt            time.Time       `json:"detected_at"`
}

// Bookmakers returns the bookmaker of every side, in side order
func (o *Opportunity) Bookmakers() []string {
	books := make([]string, len(o.Sides))
	for i, side := range o.Sides {
		books[i] = side.Bookmaker
	}
	return books
}

// TotalStake sums the stakes of every side
func (o *Opportunity) TotalStake() decimal.Decimal {
	total := decimal.Zero
	for _, side := range o.Sides {
		total = total.Add(side.Stake)
	}
	return total
}

// SessionStats holds process-wide scan counters
type SessionStats struct {
	Scans              int             `json:"scans"`
	FeedCalls          int             `json:"feed_calls"`
	OpportunitiesFound int             `json:"opportunities_found"`
	AlertsFailed       int             `json:"alerts_failed"`
	BestProfitPercent  decimal.Decimal `json:"best_profit_percent"`
	StartedAt          time.Time       `json:"started_at"`
	Paused             bool            `json:"paused"`
}

// KafkaOpportunityMessage represents the Kafka message published for every emitted opportunity
type KafkaOpportunityMessage struct {
	Opportunity Opportunity `json:"opportunity"`
	Timestamp   time.Time   `json:"timestamp"`
	Source      string      `json:"source"`
}
