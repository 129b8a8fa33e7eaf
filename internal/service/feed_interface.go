package service

import (
	"context"

	"github.com/cypherlabdev/arb-scanner-service/internal/models"
)

// Feed is an interface that abstracts the odds feed
// This allows for easier testing and mocking
type Feed interface {
	// FetchQuotes returns the current quote snapshots of every event of a sport
	FetchQuotes(ctx context.Context, sport string) (*models.FeedResult, error)
}
