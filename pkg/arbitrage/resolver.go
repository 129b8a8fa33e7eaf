package arbitrage

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/arb-scanner-service/internal/models"
)

var one = decimal.NewFromInt(1)

// validOdd reports whether a quoted decimal odd can contribute a price.
// Zero, negative and 1.0 odds carry no payout and are dropped.
func validOdd(odd decimal.Decimal) bool {
	return odd.GreaterThan(one)
}

// ResolveBestPrices selects the highest odd for every outcome across the given
// bookmakers. When bookmakers is empty every bookmaker in the snapshot is used,
// in lexical order. Ties keep the first bookmaker visited.
//
// It returns nil when fewer than two outcomes are priced or fewer than two
// bookmakers supplied a usable quote.
func ResolveBestPrices(quotes *models.QuoteSet, bookmakers []string) []models.BestPrice {
	if quotes == nil {
		return nil
	}
	if len(bookmakers) == 0 {
		bookmakers = quotes.Bookmakers()
	}

	best := make(map[string]*models.BestPrice)
	visited := make(map[string]bool, len(bookmakers))
	contributing := 0

	for _, book := range bookmakers {
		if visited[book] {
			continue
		}
		visited[book] = true

		outcomes, ok := quotes.Quotes[book]
		if !ok {
			continue
		}

		supplied := false
		for outcome, odd := range outcomes {
			if !validOdd(odd) {
				continue
			}
			supplied = true

			bp, ok := best[outcome]
			if !ok {
				bp = &models.BestPrice{
					Outcome:   outcome,
					Odd:       odd,
					Bookmaker: book,
					AllOdds:   make(map[string]decimal.Decimal),
				}
				best[outcome] = bp
			} else if odd.GreaterThan(bp.Odd) {
				bp.Odd = odd
				bp.Bookmaker = book
			}
			bp.AllOdds[book] = odd
		}
		if supplied {
			contributing++
		}
	}

	if len(best) < 2 || contributing < 2 {
		return nil
	}

	names := make([]string, 0, len(best))
	for name := range best {
		names = append(names, name)
	}
	orderOutcomes(names, quotes.HomeTeam, quotes.AwayTeam)

	prices := make([]models.BestPrice, 0, len(names))
	for _, name := range names {
		prices = append(prices, *best[name])
	}
	return prices
}

// orderOutcomes sorts outcome names home team first, away team second, then
// everything else (e.g. "Draw") alphabetically.
func orderOutcomes(names []string, home, away string) {
	rank := func(name string) int {
		switch name {
		case home:
			return 0
		case away:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		ri, rj := rank(names[i]), rank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})
}
