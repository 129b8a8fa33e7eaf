package service

import (
	"context"

	"github.com/cypherlabdev/arb-scanner-service/internal/models"
)

// OpportunityQuery is an interface that abstracts read access to alerted opportunities
// This allows for easier testing and mocking
type OpportunityQuery interface {
	RecentOpportunities(ctx context.Context, limit int) ([]*models.Opportunity, error)
	OpportunitiesByEvent(ctx context.Context, eventID string) ([]*models.Opportunity, error)
	Stats() models.SessionStats
}
