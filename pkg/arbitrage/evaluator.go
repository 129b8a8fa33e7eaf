package arbitrage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/arb-scanner-service/internal/models"
)

var hundred = decimal.NewFromInt(100)

// currencyPlaces is the rounding precision for stakes and profit amounts
const currencyPlaces = 2

// sumPlaces absorbs the division error of 1/odd so a fair book sums to exactly one
const sumPlaces = 12

// Evaluator detects arbitrage opportunities in quote snapshots
type Evaluator struct {
	params   models.EvaluationParams
	priority map[string]bool
	logger   zerolog.Logger
}

// leg is an outcome priced at a single bookmaker, before stakes are solved
type leg struct {
	outcome   string
	odd       decimal.Decimal
	bookmaker string
}

// NewEvaluator creates a new arbitrage evaluator
func NewEvaluator(params models.EvaluationParams, logger zerolog.Logger) *Evaluator {
	if params.Mode == "" {
		params.Mode = models.EvaluationModePool
	}

	priority := make(map[string]bool, len(params.PriorityBookmakers))
	for _, book := range params.PriorityBookmakers {
		priority[book] = true
	}

	return &Evaluator{
		params:   params,
		priority: priority,
		logger:   logger.With().Str("component", "evaluator").Logger(),
	}
}

// Params returns the evaluation parameters
func (e *Evaluator) Params() models.EvaluationParams {
	return e.params
}

// Evaluate returns the arbitrage opportunity for an event, or nil when none
// qualifies at evaluation time now.
func (e *Evaluator) Evaluate(quotes *models.QuoteSet, now time.Time) (*models.Opportunity, error) {
	if quotes == nil {
		return nil, fmt.Errorf("nil quote set")
	}
	if !e.params.Bankroll.IsPositive() {
		return nil, fmt.Errorf("invalid bankroll: %s", e.params.Bankroll.String())
	}

	// Pre-match filter; an unparseable start time disables it for the event
	if e.params.PreMatchOnly && quotes.StartTimeKnown && !quotes.StartTime.After(now.UTC()) {
		return nil, nil
	}

	prices := ResolveBestPrices(quotes, e.params.Bookmakers)
	if prices == nil {
		return nil, nil
	}

	if e.params.Mode == models.EvaluationModePairwise && len(prices) == 2 {
		return e.evaluatePairwise(quotes, prices, now), nil
	}

	legs := make([]leg, len(prices))
	for i, bp := range prices {
		legs[i] = leg{outcome: bp.Outcome, odd: bp.Odd, bookmaker: bp.Bookmaker}
	}
	return e.build(quotes, legs, models.EvaluationModePool, now), nil
}

// evaluatePairwise tests every unordered bookmaker pair against both
// assignments of a two-outcome market and returns the first that qualifies.
func (e *Evaluator) evaluatePairwise(quotes *models.QuoteSet, prices []models.BestPrice, now time.Time) *models.Opportunity {
	books := e.params.Bookmakers
	if len(books) == 0 {
		books = quotes.Bookmakers()
	}
	books = dedupe(books)

	a, b := prices[0].Outcome, prices[1].Outcome
	for i := 0; i < len(books); i++ {
		for j := i + 1; j < len(books); j++ {
			bk1, bk2 := books[i], books[j]
			odds1, odds2 := quotes.Quotes[bk1], quotes.Quotes[bk2]

			for _, pair := range [][2]string{{a, b}, {b, a}} {
				odd1, odd2 := odds1[pair[0]], odds2[pair[1]]
				if !validOdd(odd1) || !validOdd(odd2) {
					continue
				}
				legs := []leg{
					{outcome: pair[0], odd: odd1, bookmaker: bk1},
					{outcome: pair[1], odd: odd2, bookmaker: bk2},
				}
				if opp := e.build(quotes, legs, models.EvaluationModePairwise, now); opp != nil {
					return opp
				}
			}
		}
	}
	return nil
}

// build applies the implied-probability test to a set of legs and solves the
// stakes. It returns nil when the legs do not form a qualifying arbitrage.
func (e *Evaluator) build(quotes *models.QuoteSet, legs []leg, mode models.EvaluationMode, now time.Time) *models.Opportunity {
	probs := make([]decimal.Decimal, len(legs))
	impliedSum := decimal.Zero
	for i, l := range legs {
		probs[i] = one.Div(l.odd)
		impliedSum = impliedSum.Add(probs[i])
	}

	if impliedSum.Round(sumPlaces).GreaterThanOrEqual(one) {
		return nil
	}

	returnFactor := one.Div(impliedSum).Sub(one)
	profitPercent := returnFactor.Mul(hundred)
	if !profitPercent.Round(2).IsPositive() || profitPercent.LessThan(e.params.MinProfitPercent) {
		return nil
	}

	sides := make([]models.Side, len(legs))
	hasPriority := false
	for i, l := range legs {
		// stake_i = bankroll * (1/odd_i) / sum, equal payout on every side
		stake := e.params.Bankroll.Mul(probs[i]).Div(impliedSum).Round(currencyPlaces)
		sides[i] = models.Side{
			Outcome:   l.outcome,
			Odd:       l.odd,
			Bookmaker: l.bookmaker,
			Stake:     stake,
		}
		if e.priority[l.bookmaker] {
			hasPriority = true
		}
	}

	opp := &models.Opportunity{
		ID:                    uuid.New(),
		EventID:               quotes.EventID,
		Sport:                 quotes.Sport,
		HomeTeam:              quotes.HomeTeam,
		AwayTeam:              quotes.AwayTeam,
		StartTime:             quotes.StartTime,
		StartTimeRaw:          quotes.StartTimeRaw,
		Sides:                 sides,
		ImpliedProbabilitySum: impliedSum,
		ProfitPercent:         profitPercent.Round(2),
		ProfitAmount:          e.params.Bankroll.Mul(returnFactor).Round(currencyPlaces),
		Bankroll:              e.params.Bankroll,
		HasPriorityBookmaker:  hasPriority,
		Mode:                  mode,
		DetectedAt:            now,
	}

	e.logger.Debug().
		Str("event_id", opp.EventID).
		Str("profit_percent", opp.ProfitPercent.String()).
		Strs("bookmakers", opp.Bookmakers()).
		Msg("arbitrage detected")

	return opp
}

// BatchEvaluate evaluates a batch of quote snapshots. A failing event is
// logged and skipped so the rest of the batch is still evaluated.
func (e *Evaluator) BatchEvaluate(quoteSets []models.QuoteSet, now time.Time) []*models.Opportunity {
	var opportunities []*models.Opportunity

	for i := range quoteSets {
		opp, err := e.Evaluate(&quoteSets[i], now)
		if err != nil {
			e.logger.Warn().
				Err(err).
				Str("event_id", quoteSets[i].EventID).
				Msg("failed to evaluate event")
			continue
		}
		if opp != nil {
			opportunities = append(opportunities, opp)
		}
	}

	e.logger.Debug().
		Int("input_count", len(quoteSets)).
		Int("output_count", len(opportunities)).
		Msg("batch evaluation complete")

	return opportunities
}

func dedupe(books []string) []string {
	seen := make(map[string]bool, len(books))
	out := make([]string, 0, len(books))
	for _, book := range books {
		if !seen[book] {
			seen[book] = true
			out = append(out, book)
		}
	}
	return out
}
