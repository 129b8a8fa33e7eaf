package arbitrage

import (
	"sort"

	"github.com/cypherlabdev/arb-scanner-service/internal/models"
)

// Rank orders the opportunities of one scan cycle: priority-bookmaker
// opportunities first, then by profit percent, both descending. Exact ties keep
// their input order. The input slice is not modified.
func Rank(opportunities []*models.Opportunity) []*models.Opportunity {
	ranked := make([]*models.Opportunity, len(opportunities))
	copy(ranked, opportunities)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.HasPriorityBookmaker != b.HasPriorityBookmaker {
			return a.HasPriorityBookmaker
		}
		return a.ProfitPercent.GreaterThan(b.ProfitPercent)
	})

	return ranked
}
