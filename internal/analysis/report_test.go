package analysis

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/arb-scanner-service/internal/models"
)

func opportunity(label string, profit, amount float64, books ...string) *models.Opportunity {
	sides := make([]models.Side, len(books))
	for i, book := range books {
		sides[i] = models.Side{Outcome: "o", Odd: decimal.NewFromInt(2), Bookmaker: book}
	}
	return &models.Opportunity{
		Sport:         "sport_key",
		SportLabel:    label,
		Sides:         sides,
		ProfitPercent: decimal.NewFromFloat(profit),
		ProfitAmount:  decimal.NewFromFloat(amount),
	}
}

// TestSummarize tests aggregate figures
func TestSummarize(t *testing.T) {
	opps := []*models.Opportunity{
		opportunity("NBA", 2.5, 2.5, "bet365", "unibet_eu"),
		opportunity("NBA", 6.24, 6.24, "bet365", "unibet_eu"),
		opportunity("EPL", 1.1, 1.1, "pinnacle", "bet365", "unibet_eu"),
	}

	report := Summarize(opps)

	assert.Equal(t, 3, report.Count)
	assert.Equal(t, "3.28", report.MeanProfitPercent.StringFixed(2))
	assert.Equal(t, "6.24", report.MaxProfitPercent.StringFixed(2))
	assert.Equal(t, "1.10", report.MinProfitPercent.StringFixed(2))
	assert.Equal(t, "9.84", report.TotalProfitAmount.StringFixed(2))
	assert.Equal(t, []Count{{Label: "NBA", Count: 2}, {Label: "EPL", Count: 1}}, report.PerSport)
	assert.Equal(t, []Count{
		{Label: "bet365 vs unibet_eu", Count: 2},
		{Label: "bet365 vs pinnacle vs unibet_eu", Count: 1},
	}, report.TopBookmakerPairs)
}

// TestSummarize_Empty tests a report without opportunities
func TestSummarize_Empty(t *testing.T) {
	report := Summarize(nil)

	assert.Equal(t, 0, report.Count)
	assert.True(t, report.MeanProfitPercent.IsZero())
	assert.Empty(t, report.PerSport)

	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf))
	assert.Equal(t, "No opportunities logged.\n", buf.String())
}

// TestSummarize_TopPairsLimited tests the pairing cut-off and tie ordering
func TestSummarize_TopPairsLimited(t *testing.T) {
	var opps []*models.Opportunity
	for _, book := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		opps = append(opps, opportunity("NBA", 1, 1, book, "z"))
	}
	opps = append(opps, opportunity("NBA", 1, 1, "g", "z"))

	report := Summarize(opps)

	require.Len(t, report.TopBookmakerPairs, TopPairs)
	assert.Equal(t, Count{Label: "g vs z", Count: 2}, report.TopBookmakerPairs[0])
	assert.Equal(t, "a vs z", report.TopBookmakerPairs[1].Label)
	assert.Equal(t, "d vs z", report.TopBookmakerPairs[4].Label)
}

// TestSummarize_PairIgnoresSideOrder tests that the same bookmakers on swapped sides count as one pairing
func TestSummarize_PairIgnoresSideOrder(t *testing.T) {
	report := Summarize([]*models.Opportunity{
		opportunity("NBA", 2, 2, "unibet_eu", "bet365"),
		opportunity("NBA", 3, 3, "bet365", "unibet_eu"),
		opportunity("EPL", 1, 1, "bet365", "bet365", "unibet_eu"),
	})

	assert.Equal(t, []Count{{Label: "bet365 vs unibet_eu", Count: 3}}, report.TopBookmakerPairs)
}

// TestSummarize_SportKeyFallback tests opportunities logged without a label
func TestSummarize_SportKeyFallback(t *testing.T) {
	report := Summarize([]*models.Opportunity{opportunity("", 1, 1, "a", "b")})

	assert.Equal(t, []Count{{Label: "sport_key", Count: 1}}, report.PerSport)
}

// TestRender tests the text report
func TestRender(t *testing.T) {
	report := Summarize([]*models.Opportunity{
		opportunity("NBA", 2.5, 2.5, "bet365", "unibet_eu"),
		opportunity("EPL", 1.5, 1.5, "bet365", "unibet_eu"),
	})

	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, "ARB ANALYSIS - 2 opportunities")
	assert.Contains(t, out, "Mean profit:   2.00%")
	assert.Contains(t, out, "Best profit:   2.50%")
	assert.Contains(t, out, "Lowest profit: 1.50%")
	assert.Contains(t, out, "   EPL: 1 opps\n")
	assert.Contains(t, out, "   bet365 vs unibet_eu: 2 opps\n")
	assert.Contains(t, out, "Total simulated profit: $4.00")
}
