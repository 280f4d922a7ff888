package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vncsmyrnk/votefeed/internal/core/domain"
	"github.com/vncsmyrnk/votefeed/internal/core/ports"
)

type cursorInitializer struct {
	store  ports.EventStore
	logger *slog.Logger
}

func NewCursorInitializer(store ports.EventStore, logger *slog.Logger) ports.CursorInitializer {
	return &cursorInitializer{
		store:  store,
		logger: logger.With("module", "cursor_initializer"),
	}
}

// Initialize positions the cursor on the most recent stored event so history is not
// replayed. An empty store yields the epoch sentinel.
func (i *cursorInitializer) Initialize(ctx context.Context) (domain.Cursor, error) {
	latest, err := i.store.MostRecent(ctx)
	if err != nil {
		return domain.Cursor{}, fmt.Errorf("%w: %w", domain.ErrCursorInit, err)
	}

	if latest == nil {
		i.logger.Info("event store is empty, starting from epoch")
		return domain.EpochCursor(), nil
	}

	cursor := latest.Cursor()
	i.logger.Info("cursor seeded from most recent event", "cursor", cursor.String(), "organization", latest.OrganizationKey)
	return cursor, nil
}
