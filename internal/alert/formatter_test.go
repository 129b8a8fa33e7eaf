package alert

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cypherlabdev/arb-scanner-service/internal/models"
)

func testOpportunity() *models.Opportunity {
	return &models.Opportunity{
		Sport:      "basketball_nba",
		SportLabel: "NBA",
		HomeTeam:   "Lakers",
		AwayTeam:   "Celtics",
		StartTime:  time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC),
		Sides: []models.Side{
			{Outcome: "Lakers", Odd: decimal.NewFromFloat(2.10), Bookmaker: "bet365", Stake: decimal.NewFromFloat(50.59)},
			{Outcome: "Celtics", Odd: decimal.NewFromFloat(2.15), Bookmaker: "unibet_eu", Stake: decimal.NewFromFloat(49.41)},
		},
		ProfitPercent: decimal.NewFromFloat(6.24),
		ProfitAmount:  decimal.NewFromFloat(6.24),
		Bankroll:      decimal.NewFromInt(100),
		DetectedAt:    time.Date(2026, 3, 14, 12, 0, 5, 0, time.UTC),
	}
}

// TestFormatter_Opportunity tests alert rendering
func TestFormatter_Opportunity(t *testing.T) {
	f := NewFormatter(FormatterConfig{PaperTrading: true, PriorityBookmakers: []string{"bet365"}})

	msg := f.Opportunity(testOpportunity())

	assert.Contains(t, msg, "🤑 <b>ARB DETECTED [📄 PAPER] - NBA</b>")
	assert.Contains(t, msg, "<b>Celtics @ Lakers</b>")
	assert.Contains(t, msg, "🕐 14/03 19:30 UTC")
	assert.Contains(t, msg, "📗 <b>BET365</b> ⭐")
	assert.Contains(t, msg, "📘 <b>UNIBET_EU</b>\n")
	assert.Contains(t, msg, "Lakers @ <b>2.1</b>")
	assert.Contains(t, msg, "Stake: <b>$50.59</b>")
	assert.Contains(t, msg, "Stake: <b>$49.41</b>")
	assert.Contains(t, msg, "Guaranteed profit: <b>$6.24</b> (<b>6.24%</b>)")
	assert.Contains(t, msg, "On a bankroll of $100.00")
	assert.Contains(t, msg, "Detected: 2026-03-14 12:00:05")
	assert.Contains(t, msg, "Paper trade")
}

// TestFormatter_OpportunityLive tests the live trading footer
func TestFormatter_OpportunityLive(t *testing.T) {
	f := NewFormatter(FormatterConfig{PaperTrading: false})

	msg := f.Opportunity(testOpportunity())

	assert.Contains(t, msg, "[💰 LIVE]")
	assert.Contains(t, msg, "ACT FAST!")
	assert.NotContains(t, msg, "⭐")
}

// TestFormatter_OpportunityEscapesHTML tests escaping of feed-supplied names
func TestFormatter_OpportunityEscapesHTML(t *testing.T) {
	f := NewFormatter(FormatterConfig{})
	opp := testOpportunity()
	opp.HomeTeam = "Brighton & Hove <Albion>"

	msg := f.Opportunity(opp)

	assert.Contains(t, msg, "Brighton &amp; Hove &lt;Albion&gt;")
}

// TestFormatter_OpportunityRawStartTime tests the raw start time fallback
func TestFormatter_OpportunityRawStartTime(t *testing.T) {
	f := NewFormatter(FormatterConfig{})
	opp := testOpportunity()
	opp.StartTime = time.Time{}
	opp.StartTimeRaw = "TBD"

	assert.Contains(t, f.Opportunity(opp), "🕐 TBD\n")
}

// TestProfitEmoji tests profit grading
func TestProfitEmoji(t *testing.T) {
	tests := []struct {
		profit   float64
		expected string
	}{
		{profit: 1.2, expected: "⚡"},
		{profit: 2.0, expected: "✅"},
		{profit: 3.5, expected: "💰"},
		{profit: 5.0, expected: "🤑"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, profitEmoji(decimal.NewFromFloat(tt.profit)), "profit %.1f", tt.profit)
	}
}

// TestFormatter_Stats tests the session report
func TestFormatter_Stats(t *testing.T) {
	f := NewFormatter(FormatterConfig{})
	started := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

	msg := f.Stats(models.SessionStats{
		Scans:              12,
		FeedCalls:          24,
		OpportunitiesFound: 3,
		BestProfitPercent:  decimal.NewFromFloat(4.5),
		StartedAt:          started,
		Paused:             true,
	}, started.Add(2*time.Hour+35*time.Minute))

	assert.Contains(t, msg, "Status: <b>⏸ PAUSED</b>")
	assert.Contains(t, msg, "Uptime: 2h 35m")
	assert.Contains(t, msg, "Scans: 12")
	assert.Contains(t, msg, "API calls: 24")
	assert.Contains(t, msg, "Opportunities: 3")
	assert.Contains(t, msg, "Best profit: <b>4.50%</b>")
	assert.NotContains(t, msg, "Failed alerts")
}

// TestFormatter_Startup tests the startup announcement
func TestFormatter_Startup(t *testing.T) {
	f := NewFormatter(FormatterConfig{PaperTrading: true})

	msg := f.Startup(StartupInfo{
		Sports:           []string{"NBA", "La Liga"},
		Bookmakers:       []string{"betfair_ex_eu", "bet365"},
		MinProfitPercent: decimal.NewFromFloat(1.0),
		Bankroll:         decimal.NewFromInt(100),
		PollInterval:     10 * time.Minute,
		Mode:             models.EvaluationModePool,
	})

	assert.Contains(t, msg, "Mode: <b>📄 PAPER TRADING</b>")
	assert.Contains(t, msg, "Sports: NBA, La Liga")
	assert.Contains(t, msg, "Bookmakers: betfair_ex_eu, bet365")
	assert.Contains(t, msg, "Min profit: <b>1%</b>")
	assert.Contains(t, msg, "Bankroll: <b>$100</b>")
	assert.Contains(t, msg, "Interval: <b>10 min</b>")
	assert.Contains(t, msg, "/pause /resume /stats /help")
}

// TestFormatter_CommandReplies tests command acknowledgements
func TestFormatter_CommandReplies(t *testing.T) {
	f := NewFormatter(FormatterConfig{})

	assert.Contains(t, f.Help(), "/pause")
	assert.Contains(t, f.Help(), "/help")
	assert.Contains(t, f.Paused(), "Scanner paused")
	assert.Contains(t, f.Resumed(10*time.Minute), "Next scan in ~10 min")
	assert.Contains(t, f.AlreadyPaused(), "already paused")
	assert.Contains(t, f.AlreadyActive(), "already active")
	assert.Contains(t, f.QuotaWarning(42), "<b>42</b> requests remaining")
	assert.Contains(t, f.Shutdown(), "Scanner stopped")
}

// TestInterval tests interval rendering
func TestInterval(t *testing.T) {
	assert.Equal(t, "10 min", Interval(10*time.Minute))
	assert.Equal(t, "30 s", Interval(30*time.Second))
}
