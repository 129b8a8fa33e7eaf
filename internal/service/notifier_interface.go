package service

import (
	"context"
)

// Notifier is an interface that abstracts delivery of operator messages
// This allows for easier testing and mocking
type Notifier interface {
	// Send delivers text to the configured recipient; silent suppresses the
	// attention-grabbing notification
	Send(ctx context.Context, text string, silent bool) error
}

// CommandSource is an interface that abstracts the inbound operator command channel
type CommandSource interface {
	// PollCommands returns the commands received from the authorised
	// recipient since the last poll
	PollCommands(ctx context.Context) ([]string, error)
}
