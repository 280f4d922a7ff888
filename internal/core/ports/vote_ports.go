package ports

import (
	"context"

	"github.com/vncsmyrnk/votefeed/internal/core/domain"
)

type VoteService interface {
	Cast(ctx context.Context, organizationKey string) (*domain.VoteEvent, error)
	Since(ctx context.Context, cursor domain.Cursor) ([]domain.VoteEvent, error)
	Latest(ctx context.Context) (*domain.VoteEvent, error)
}
