package service

import (
	"context"

	"github.com/cypherlabdev/arb-scanner-service/internal/models"
)

// OpportunityLog is an interface that abstracts the durable append-only
// record of emitted opportunities
type OpportunityLog interface {
	Append(ctx context.Context, opp *models.Opportunity) error
}
