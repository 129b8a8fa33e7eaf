package service

import (
	"context"

	"github.com/cypherlabdev/arb-scanner-service/internal/models"
)

// Cache is an interface that abstracts the recent-opportunity cache
// This allows for easier testing and mocking
type Cache interface {
	Set(ctx context.Context, opp *models.Opportunity) error
	GetByEvent(ctx context.Context, eventID string) ([]*models.Opportunity, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Opportunity, error)
	Ping(ctx context.Context) error
	Close() error
}
