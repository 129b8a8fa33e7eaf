package service

import (
	"time"

	"github.com/cypherlabdev/arb-scanner-service/internal/models"
)

// Evaluator is an interface that abstracts arbitrage detection
// This allows for easier testing and mocking
type Evaluator interface {
	Evaluate(quotes *models.QuoteSet, now time.Time) (*models.Opportunity, error)
	BatchEvaluate(quoteSets []models.QuoteSet, now time.Time) []*models.Opportunity
	Params() models.EvaluationParams
}
