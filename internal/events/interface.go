package events

import (
	"context"
)

// Source is anything that can serve the events collection. The REST
// Client is the production implementation.
type Source interface {
	// List returns every event, grouped by date
	List(ctx context.Context) (Store, error)
	// Create adds an event to the given YYYY-MM-DD date
	Create(ctx context.Context, date, author, content string) error
	// Delete removes the event with the given ID
	Delete(ctx context.Context, id string) error
}
