package ports

import (
	"context"

	"github.com/vncsmyrnk/votefeed/internal/core/domain"
)

// EventStore is the append-only vote log. EventsAfter returns events strictly after
// cursor ordered by (CreatedAt, ID); MostRecent returns nil, nil on an empty store.
type EventStore interface {
	InsertVote(ctx context.Context, organizationKey string) (*domain.VoteEvent, error)
	EventsAfter(ctx context.Context, cursor domain.Cursor) ([]domain.VoteEvent, error)
	MostRecent(ctx context.Context) (*domain.VoteEvent, error)
}
