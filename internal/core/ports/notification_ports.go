package ports

import (
	"context"

	"github.com/vncsmyrnk/votefeed/internal/core/domain"
)

type Notifier interface {
	Toast(toast domain.Toast)
	Burst(burst domain.Burst)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, event domain.VoteEvent)
}

type CursorInitializer interface {
	Initialize(ctx context.Context) (domain.Cursor, error)
}
