package analysis

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/arb-scanner-service/internal/models"
)

// TopPairs is the number of bookmaker pairings listed in a report
const TopPairs = 5

// Count is a label with the number of opportunities attributed to it
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Report aggregates a set of logged opportunities
type Report struct {
	Count             int             `json:"count"`
	MeanProfitPercent decimal.Decimal `json:"mean_profit_percent"`
	MaxProfitPercent  decimal.Decimal `json:"max_profit_percent"`
	MinProfitPercent  decimal.Decimal `json:"min_profit_percent"`
	PerSport          []Count         `json:"per_sport"`
	TopBookmakerPairs []Count         `json:"top_bookmaker_pairs"`
	TotalProfitAmount decimal.Decimal `json:"total_profit_amount"`
}

// Summarize builds a report over opps. An empty input yields a zero report.
func Summarize(opps []*models.Opportunity) Report {
	report := Report{
		MeanProfitPercent: decimal.Zero,
		MaxProfitPercent:  decimal.Zero,
		MinProfitPercent:  decimal.Zero,
		TotalProfitAmount: decimal.Zero,
	}
	if len(opps) == 0 {
		return report
	}

	sports := make(map[string]int)
	pairs := make(map[string]int)
	sum := decimal.Zero

	for i, opp := range opps {
		profit := opp.ProfitPercent
		sum = sum.Add(profit)
		if i == 0 || profit.GreaterThan(report.MaxProfitPercent) {
			report.MaxProfitPercent = profit
		}
		if i == 0 || profit.LessThan(report.MinProfitPercent) {
			report.MinProfitPercent = profit
		}
		report.TotalProfitAmount = report.TotalProfitAmount.Add(opp.ProfitAmount)

		sports[sportLabel(opp)]++
		pairs[pairLabel(opp)]++
	}

	report.Count = len(opps)
	report.MeanProfitPercent = sum.Div(decimal.NewFromInt(int64(len(opps)))).Round(2)
	report.PerSport = sortedCounts(sports)
	report.TopBookmakerPairs = sortedCounts(pairs)
	if len(report.TopBookmakerPairs) > TopPairs {
		report.TopBookmakerPairs = report.TopBookmakerPairs[:TopPairs]
	}

	return report
}

func sportLabel(opp *models.Opportunity) string {
	if opp.SportLabel != "" {
		return opp.SportLabel
	}
	return opp.Sport
}

// pairLabel names the set of bookmakers on an opportunity, independent of side order
func pairLabel(opp *models.Opportunity) string {
	books := opp.Bookmakers()
	sort.Strings(books)

	uniq := books[:0]
	for i, book := range books {
		if i > 0 && book == books[i-1] {
			continue
		}
		uniq = append(uniq, book)
	}
	return strings.Join(uniq, " vs ")
}

// sortedCounts orders by count descending, then label
func sortedCounts(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for label, n := range counts {
		out = append(out, Count{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Render writes the report as plain text
func (r Report) Render(w io.Writer) error {
	rule := strings.Repeat("═", 50)

	var b strings.Builder
	if r.Count == 0 {
		b.WriteString("No opportunities logged.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintf(&b, "  ARB ANALYSIS - %d opportunities\n", r.Count)
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "\n📊 Mean profit:   %s%%\n", r.MeanProfitPercent.StringFixed(2))
	fmt.Fprintf(&b, "🏆 Best profit:   %s%%\n", r.MaxProfitPercent.StringFixed(2))
	fmt.Fprintf(&b, "📉 Lowest profit: %s%%\n", r.MinProfitPercent.StringFixed(2))

	b.WriteString("\n📋 By sport:\n")
	for _, c := range r.PerSport {
		fmt.Fprintf(&b, "   %s: %d opps\n", c.Label, c.Count)
	}

	b.WriteString("\n🔀 Top bookmaker pairs:\n")
	for _, c := range r.TopBookmakerPairs {
		fmt.Fprintf(&b, "   %s: %d opps\n", c.Label, c.Count)
	}

	fmt.Fprintf(&b, "\n💰 Total simulated profit: $%s\n", r.TotalProfitAmount.StringFixed(2))
	fmt.Fprintf(&b, "%s\n", rule)

	_, err := io.WriteString(w, b.String())
	return err
}
